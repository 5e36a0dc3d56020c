package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shubhamchoudhary-2003/fullstack/internal/domain"
	pkgkafka "github.com/shubhamchoudhary-2003/fullstack/pkg/kafka"
	"github.com/shubhamchoudhary-2003/fullstack/pkg/logger"
)

// Kafka topics for fashion and catalog events.
var (
	TopicMaterialCreated            = pkgkafka.Topic("material", "created")
	TopicMaterialDeleted            = pkgkafka.Topic("material", "deleted")
	TopicMaterialRestored           = pkgkafka.Topic("material", "restored")
	TopicColorCreated               = pkgkafka.Topic("color", "created")
	TopicColorDeleted               = pkgkafka.Topic("color", "deleted")
	TopicCollectionMetadataUpdated  = pkgkafka.Topic("collection", "metadata_updated")
	TopicProductTypeMetadataUpdated = pkgkafka.Topic("product_type", "metadata_updated")
)

// Topics lists every topic this service publishes to.
func Topics() []string {
	return []string{
		TopicMaterialCreated,
		TopicMaterialDeleted,
		TopicMaterialRestored,
		TopicColorCreated,
		TopicColorDeleted,
		TopicCollectionMetadataUpdated,
		TopicProductTypeMetadataUpdated,
	}
}

// Aggregate types.
const (
	AggregateTypeMaterial    = "material"
	AggregateTypeColor       = "color"
	AggregateTypeCollection  = "collection"
	AggregateTypeProductType = "product_type"
)

// SourceFashionBackend identifies events published by this service.
const SourceFashionBackend = "fashion-backend"

// MaterialData is the payload of material events.
type MaterialData struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// ColorData is the payload of color events.
type ColorData struct {
	ID         string `json:"id"`
	MaterialID string `json:"material_id"`
	Name       string `json:"name,omitempty"`
	HexCode    string `json:"hex_code,omitempty"`
}

// MetadataUpdatedData is the payload of collection and product type metadata
// events. Keys lists the metadata keys that were written.
type MetadataUpdatedData struct {
	ID   string   `json:"id"`
	Keys []string `json:"keys"`
}

// Publisher sends an event envelope to a topic.
type Publisher interface {
	Publish(ctx context.Context, topic string, event *pkgkafka.Event) error
}

// Producer publishes domain events to Kafka.
type Producer struct {
	kafka  Publisher
	logger *slog.Logger
}

// NewProducer creates a new event producer.
func NewProducer(kafka Publisher, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishMaterialCreated publishes a material.created event.
func (p *Producer) PublishMaterialCreated(ctx context.Context, m *domain.Material) error {
	return p.publish(ctx, TopicMaterialCreated, m.ID, AggregateTypeMaterial, MaterialData{ID: m.ID, Name: m.Name})
}

// PublishMaterialDeleted publishes a material.deleted event.
func (p *Producer) PublishMaterialDeleted(ctx context.Context, id string) error {
	return p.publish(ctx, TopicMaterialDeleted, id, AggregateTypeMaterial, MaterialData{ID: id})
}

// PublishMaterialRestored publishes a material.restored event.
func (p *Producer) PublishMaterialRestored(ctx context.Context, m *domain.Material) error {
	return p.publish(ctx, TopicMaterialRestored, m.ID, AggregateTypeMaterial, MaterialData{ID: m.ID, Name: m.Name})
}

// PublishColorCreated publishes a color.created event.
func (p *Producer) PublishColorCreated(ctx context.Context, c *domain.Color) error {
	return p.publish(ctx, TopicColorCreated, c.ID, AggregateTypeColor, ColorData{
		ID:         c.ID,
		MaterialID: c.MaterialID,
		Name:       c.Name,
		HexCode:    c.HexCode,
	})
}

// PublishColorDeleted publishes a color.deleted event.
func (p *Producer) PublishColorDeleted(ctx context.Context, materialID, colorID string) error {
	return p.publish(ctx, TopicColorDeleted, colorID, AggregateTypeColor, ColorData{ID: colorID, MaterialID: materialID})
}

// PublishCollectionMetadataUpdated publishes a collection.metadata_updated event.
func (p *Producer) PublishCollectionMetadataUpdated(ctx context.Context, id string, keys []string) error {
	return p.publish(ctx, TopicCollectionMetadataUpdated, id, AggregateTypeCollection, MetadataUpdatedData{ID: id, Keys: keys})
}

// PublishProductTypeMetadataUpdated publishes a product_type.metadata_updated event.
func (p *Producer) PublishProductTypeMetadataUpdated(ctx context.Context, id string, keys []string) error {
	return p.publish(ctx, TopicProductTypeMetadataUpdated, id, AggregateTypeProductType, MetadataUpdatedData{ID: id, Keys: keys})
}

func (p *Producer) publish(ctx context.Context, topic, aggregateID, aggregateType string, data any) error {
	event, err := pkgkafka.NewEvent(topic, aggregateID, aggregateType, SourceFashionBackend, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}
	if id := logger.CorrelationIDFromContext(ctx); id != "" {
		event.WithCorrelationID(id)
	}

	if err := p.kafka.Publish(ctx, topic, event); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}

	p.logger.DebugContext(ctx, "published event",
		slog.String("topic", topic),
		slog.String("aggregate_id", aggregateID),
	)
	return nil
}
