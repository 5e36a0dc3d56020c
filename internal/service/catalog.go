package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/shubhamchoudhary-2003/fullstack/internal/domain"
	"github.com/shubhamchoudhary-2003/fullstack/internal/repository"
)

// CatalogEvents publishes collection and product type metadata events.
type CatalogEvents interface {
	PublishCollectionMetadataUpdated(ctx context.Context, id string, keys []string) error
	PublishProductTypeMetadataUpdated(ctx context.Context, id string, keys []string) error
}

// CatalogService reads and writes the storefront page content kept in the
// metadata of collections and product types.
type CatalogService struct {
	collections  repository.CollectionRepository
	productTypes repository.ProductTypeRepository
	events       CatalogEvents
	logger       *slog.Logger
}

// NewCatalogService creates a new catalog service.
func NewCatalogService(collections repository.CollectionRepository, productTypes repository.ProductTypeRepository, events CatalogEvents, logger *slog.Logger) *CatalogService {
	return &CatalogService{
		collections:  collections,
		productTypes: productTypes,
		events:       events,
		logger:       logger,
	}
}

// GetCollectionDetails returns the typed page content of a collection. Stored
// metadata that does not fit the expected shape yields all defaults.
func (s *CatalogService) GetCollectionDetails(ctx context.Context, id string) (domain.CollectionDetails, error) {
	collection, err := s.collections.GetByID(ctx, id)
	if err != nil {
		return domain.CollectionDetails{}, fmt.Errorf("get collection: %w", err)
	}

	fields, err := domain.ParseCollectionFields(collection.Metadata)
	if err != nil {
		s.logger.WarnContext(ctx, "collection metadata does not match schema, using defaults",
			slog.String("collection_id", id),
			slog.String("error", err.Error()),
		)
		return domain.CollectionFields{}.Details(), nil
	}
	return fields.Details(), nil
}

// UpdateCollectionMetadata merges the set fields over the stored metadata.
// The merge happens in the store, so concurrent updates of different keys
// do not overwrite each other.
func (s *CatalogService) UpdateCollectionMetadata(ctx context.Context, id string, fields domain.CollectionFields) (*domain.ProductCollection, error) {
	patch, err := domain.AsMetadata(fields)
	if err != nil {
		return nil, err
	}

	updated, err := s.collections.MergeMetadata(ctx, id, patch)
	if err != nil {
		return nil, fmt.Errorf("update collection metadata: %w", err)
	}

	keys := patchKeys(patch)
	if err := s.events.PublishCollectionMetadataUpdated(ctx, id, keys); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish collection.metadata_updated event",
			slog.String("collection_id", id),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "collection metadata updated",
		slog.String("collection_id", id),
		slog.Any("keys", keys),
	)
	return updated, nil
}

// GetProductTypeDetails returns the image of a product type. Stored metadata
// that does not fit the expected shape yields a null image.
func (s *CatalogService) GetProductTypeDetails(ctx context.Context, id string) (domain.ProductTypeDetails, error) {
	productType, err := s.productTypes.GetByID(ctx, id)
	if err != nil {
		return domain.ProductTypeDetails{}, fmt.Errorf("get product type: %w", err)
	}

	fields, err := domain.ParseProductTypeFields(productType.Metadata)
	if err != nil {
		s.logger.WarnContext(ctx, "product type metadata does not match schema, using defaults",
			slog.String("product_type_id", id),
			slog.String("error", err.Error()),
		)
		return domain.ProductTypeDetails{Success: true}, nil
	}
	return domain.ProductTypeDetails{Image: fields.Image, Success: true}, nil
}

// UpdateProductTypeMetadata merges the set fields over the stored metadata.
func (s *CatalogService) UpdateProductTypeMetadata(ctx context.Context, id string, fields domain.ProductTypeFields) (*domain.ProductType, error) {
	patch, err := domain.AsMetadata(fields)
	if err != nil {
		return nil, err
	}

	updated, err := s.productTypes.MergeMetadata(ctx, id, patch)
	if err != nil {
		return nil, fmt.Errorf("update product type metadata: %w", err)
	}

	keys := patchKeys(patch)
	if err := s.events.PublishProductTypeMetadataUpdated(ctx, id, keys); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish product_type.metadata_updated event",
			slog.String("product_type_id", id),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "product type metadata updated",
		slog.String("product_type_id", id),
		slog.Any("keys", keys),
	)
	return updated, nil
}

func patchKeys(patch map[string]any) []string {
	keys := make([]string, 0, len(patch))
	for k := range patch {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
