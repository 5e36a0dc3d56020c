package revalidate

import (
	"context"
	"log/slog"

	"github.com/shubhamchoudhary-2003/fullstack/internal/event"
	pkgkafka "github.com/shubhamchoudhary-2003/fullstack/pkg/kafka"
)

// Storefront cache tags.
const (
	TagMaterials    = "materials"
	TagColors       = "colors"
	TagCollections  = "collections"
	TagProductTypes = "product-types"
)

// Revalidator drops storefront cache entries by tag.
type Revalidator interface {
	Revalidate(ctx context.Context, tags []string) error
}

// Handler turns catalog events into storefront revalidation requests.
type Handler struct {
	revalidator Revalidator
	logger      *slog.Logger
}

// NewHandler creates a new revalidation event handler.
func NewHandler(revalidator Revalidator, logger *slog.Logger) *Handler {
	return &Handler{
		revalidator: revalidator,
		logger:      logger,
	}
}

// Handle revalidates the tags affected by the event. Unknown event types are
// logged and acknowledged.
func (h *Handler) Handle(ctx context.Context, e *pkgkafka.Event) error {
	tags := TagsFor(e.Type)
	if len(tags) == 0 {
		h.logger.WarnContext(ctx, "unknown event type received",
			slog.String("event_type", e.Type),
			slog.String("event_id", e.ID),
		)
		return nil
	}

	if err := h.revalidator.Revalidate(ctx, tags); err != nil {
		return err
	}

	h.logger.InfoContext(ctx, "revalidated storefront",
		slog.String("event_type", e.Type),
		slog.String("aggregate_id", e.AggregateID),
		slog.Any("tags", tags),
	)
	return nil
}

// TagsFor returns the cache tags invalidated by an event type. Color changes
// also invalidate materials because material listings embed their colors.
func TagsFor(eventType string) []string {
	switch eventType {
	case event.TopicMaterialCreated, event.TopicMaterialDeleted, event.TopicMaterialRestored:
		return []string{TagMaterials, TagColors}
	case event.TopicColorCreated, event.TopicColorDeleted:
		return []string{TagColors, TagMaterials}
	case event.TopicCollectionMetadataUpdated:
		return []string{TagCollections}
	case event.TopicProductTypeMetadataUpdated:
		return []string{TagProductTypes}
	default:
		return nil
	}
}
