package repository

import (
	"context"

	"github.com/shubhamchoudhary-2003/fullstack/internal/domain"
)

// ListFilter selects one page of live or soft-deleted rows.
type ListFilter struct {
	// Deleted selects only rows soft-deleted at or before now. When false only
	// live rows are returned.
	Deleted bool
	Limit   int
	Offset  int
}

// MaterialRepository defines the persistence operations for materials.
type MaterialRepository interface {
	// Create inserts a new material.
	Create(ctx context.Context, material *domain.Material) error

	// GetByID retrieves a live material with its live colors.
	GetByID(ctx context.Context, id string) (*domain.Material, error)

	// List returns one page of materials, each with its colors, and the total
	// number of matching materials.
	List(ctx context.Context, filter ListFilter) ([]domain.Material, int, error)

	// SoftDelete marks a live material and its live colors as deleted.
	SoftDelete(ctx context.Context, id string) error

	// Restore clears the deletion mark of a material and of the colors that
	// were deleted together with it.
	Restore(ctx context.Context, id string) (*domain.Material, error)
}

// ColorRepository defines the persistence operations for colors.
type ColorRepository interface {
	// Create inserts a color. It fails with a material not-found error when
	// the owning material does not exist or is deleted.
	Create(ctx context.Context, color *domain.Color) error

	// ListByMaterial returns one page of the colors of a material and the
	// total number of matching colors.
	ListByMaterial(ctx context.Context, materialID string, filter ListFilter) ([]domain.Color, int, error)

	// SoftDelete marks a live color of the given material as deleted.
	SoftDelete(ctx context.Context, materialID, colorID string) error
}

// CollectionRepository defines the persistence operations for product collections.
type CollectionRepository interface {
	Create(ctx context.Context, collection *domain.ProductCollection) error
	GetByID(ctx context.Context, id string) (*domain.ProductCollection, error)

	// MergeMetadata atomically sets the top level keys of patch on the
	// metadata of a live collection and returns the updated row.
	MergeMetadata(ctx context.Context, id string, patch map[string]any) (*domain.ProductCollection, error)
}

// ProductTypeRepository defines the persistence operations for product types.
type ProductTypeRepository interface {
	Create(ctx context.Context, productType *domain.ProductType) error
	GetByID(ctx context.Context, id string) (*domain.ProductType, error)
	MergeMetadata(ctx context.Context, id string, patch map[string]any) (*domain.ProductType, error)
}

// RegionRepository defines the persistence operations for regions.
type RegionRepository interface {
	// Create inserts a region together with its countries.
	Create(ctx context.Context, region *domain.Region) error

	// List returns every region with its countries, ordered by name.
	List(ctx context.Context) ([]domain.Region, error)
}

// RegionCache is a read-through cache in front of RegionRepository.List.
type RegionCache interface {
	// Get returns the cached regions; ok is false on a cache miss.
	Get(ctx context.Context) (regions []domain.Region, ok bool, err error)
	Set(ctx context.Context, regions []domain.Region) error
	Invalidate(ctx context.Context) error
}
