package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/shubhamchoudhary-2003/fullstack/internal/domain"
	"github.com/shubhamchoudhary-2003/fullstack/pkg/database"
	apperrors "github.com/shubhamchoudhary-2003/fullstack/pkg/errors"
)

const (
	collectionColumns  = `id, title, handle, metadata, created_at, updated_at, deleted_at`
	productTypeColumns = `id, value, metadata, created_at, updated_at, deleted_at`
)

// CollectionRepository implements repository.CollectionRepository using PostgreSQL.
type CollectionRepository struct {
	pool database.DBTX
}

// NewCollectionRepository creates a new PostgreSQL-backed collection repository.
func NewCollectionRepository(pool database.DBTX) *CollectionRepository {
	return &CollectionRepository{pool: pool}
}

// Create inserts a new product collection.
func (r *CollectionRepository) Create(ctx context.Context, c *domain.ProductCollection) (err error) {
	query := `
		INSERT INTO product_collections (id, title, handle, metadata, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	ctx, end := database.TraceQuery(ctx, "CreateCollection", query)
	defer func() { end(err) }()

	metadataJSON, err := marshalMetadata(c.Metadata)
	if err != nil {
		return err
	}

	if _, err = r.pool.Exec(ctx, query, c.ID, c.Title, c.Handle, metadataJSON, c.CreatedAt, c.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("collection", "handle", c.Handle)
		}
		return fmt.Errorf("insert collection: %w", err)
	}
	return nil
}

// GetByID retrieves a live product collection.
func (r *CollectionRepository) GetByID(ctx context.Context, id string) (_ *domain.ProductCollection, err error) {
	query := fmt.Sprintf(`SELECT %s FROM product_collections WHERE id = $1 AND deleted_at IS NULL`, collectionColumns)

	ctx, end := database.TraceQuery(ctx, "GetCollection", query)
	defer func() { end(err) }()

	return scanCollection(r.pool.QueryRow(ctx, query, id), id)
}

// MergeMetadata applies patch over the top level keys of a live collection's
// metadata in one statement and returns the updated row.
func (r *CollectionRepository) MergeMetadata(ctx context.Context, id string, patch map[string]any) (_ *domain.ProductCollection, err error) {
	query := fmt.Sprintf(`
		UPDATE product_collections SET metadata = metadata || $2::jsonb, updated_at = $3
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING %s`, collectionColumns)

	ctx, end := database.TraceQuery(ctx, "MergeCollectionMetadata", query)
	defer func() { end(err) }()

	metadataJSON, err := marshalMetadata(patch)
	if err != nil {
		return nil, err
	}

	return scanCollection(r.pool.QueryRow(ctx, query, id, metadataJSON, time.Now().UTC()), id)
}

func scanCollection(row pgx.Row, id string) (*domain.ProductCollection, error) {
	var (
		c            domain.ProductCollection
		metadataJSON []byte
	)
	err := row.Scan(&c.ID, &c.Title, &c.Handle, &metadataJSON, &c.CreatedAt, &c.UpdatedAt, &c.DeletedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("collection", id)
		}
		return nil, fmt.Errorf("scan collection: %w", err)
	}
	if c.Metadata, err = unmarshalMetadata(metadataJSON); err != nil {
		return nil, err
	}
	return &c, nil
}

// ProductTypeRepository implements repository.ProductTypeRepository using PostgreSQL.
type ProductTypeRepository struct {
	pool database.DBTX
}

// NewProductTypeRepository creates a new PostgreSQL-backed product type repository.
func NewProductTypeRepository(pool database.DBTX) *ProductTypeRepository {
	return &ProductTypeRepository{pool: pool}
}

// Create inserts a new product type.
func (r *ProductTypeRepository) Create(ctx context.Context, pt *domain.ProductType) (err error) {
	query := `
		INSERT INTO product_types (id, value, metadata, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)`

	ctx, end := database.TraceQuery(ctx, "CreateProductType", query)
	defer func() { end(err) }()

	metadataJSON, err := marshalMetadata(pt.Metadata)
	if err != nil {
		return err
	}

	if _, err = r.pool.Exec(ctx, query, pt.ID, pt.Value, metadataJSON, pt.CreatedAt, pt.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("product type", "value", pt.Value)
		}
		return fmt.Errorf("insert product type: %w", err)
	}
	return nil
}

// GetByID retrieves a live product type.
func (r *ProductTypeRepository) GetByID(ctx context.Context, id string) (_ *domain.ProductType, err error) {
	query := fmt.Sprintf(`SELECT %s FROM product_types WHERE id = $1 AND deleted_at IS NULL`, productTypeColumns)

	ctx, end := database.TraceQuery(ctx, "GetProductType", query)
	defer func() { end(err) }()

	return scanProductType(r.pool.QueryRow(ctx, query, id), id)
}

// MergeMetadata applies patch over the top level keys of a live product
// type's metadata in one statement and returns the updated row.
func (r *ProductTypeRepository) MergeMetadata(ctx context.Context, id string, patch map[string]any) (_ *domain.ProductType, err error) {
	query := fmt.Sprintf(`
		UPDATE product_types SET metadata = metadata || $2::jsonb, updated_at = $3
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING %s`, productTypeColumns)

	ctx, end := database.TraceQuery(ctx, "MergeProductTypeMetadata", query)
	defer func() { end(err) }()

	metadataJSON, err := marshalMetadata(patch)
	if err != nil {
		return nil, err
	}

	return scanProductType(r.pool.QueryRow(ctx, query, id, metadataJSON, time.Now().UTC()), id)
}

func scanProductType(row pgx.Row, id string) (*domain.ProductType, error) {
	var (
		pt           domain.ProductType
		metadataJSON []byte
	)
	err := row.Scan(&pt.ID, &pt.Value, &metadataJSON, &pt.CreatedAt, &pt.UpdatedAt, &pt.DeletedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("product type", id)
		}
		return nil, fmt.Errorf("scan product type: %w", err)
	}
	if pt.Metadata, err = unmarshalMetadata(metadataJSON); err != nil {
		return nil, err
	}
	return &pt, nil
}

func marshalMetadata(metadata map[string]any) ([]byte, error) {
	if metadata == nil {
		metadata = map[string]any{}
	}
	b, err := json.Marshal(metadata)
	if err != nil {
		return nil, fmt.Errorf("marshal metadata: %w", err)
	}
	return b, nil
}

func unmarshalMetadata(raw []byte) (map[string]any, error) {
	metadata := map[string]any{}
	if len(raw) == 0 {
		return metadata, nil
	}
	if err := json.Unmarshal(raw, &metadata); err != nil {
		return nil, fmt.Errorf("unmarshal metadata: %w", err)
	}
	return metadata, nil
}
