package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/shubhamchoudhary-2003/fullstack/internal/domain"
	"github.com/shubhamchoudhary-2003/fullstack/internal/repository"
	"github.com/shubhamchoudhary-2003/fullstack/pkg/database"
	apperrors "github.com/shubhamchoudhary-2003/fullstack/pkg/errors"
)

const materialColumns = `id, name, created_at, updated_at, deleted_at`

// MaterialRepository implements repository.MaterialRepository using PostgreSQL.
type MaterialRepository struct {
	pool database.DBTX
}

// NewMaterialRepository creates a new PostgreSQL-backed material repository.
func NewMaterialRepository(pool database.DBTX) *MaterialRepository {
	return &MaterialRepository{pool: pool}
}

// Create inserts a new material into the database.
func (r *MaterialRepository) Create(ctx context.Context, m *domain.Material) (err error) {
	query := `INSERT INTO materials (id, name, created_at, updated_at) VALUES ($1, $2, $3, $4)`

	ctx, end := database.TraceQuery(ctx, "CreateMaterial", query)
	defer func() { end(err) }()

	if _, err = r.pool.Exec(ctx, query, m.ID, m.Name, m.CreatedAt, m.UpdatedAt); err != nil {
		return fmt.Errorf("insert material: %w", err)
	}
	return nil
}

// GetByID retrieves a live material together with its live colors.
func (r *MaterialRepository) GetByID(ctx context.Context, id string) (_ *domain.Material, err error) {
	query := fmt.Sprintf(`SELECT %s FROM materials WHERE id = $1 AND deleted_at IS NULL`, materialColumns)

	ctx, end := database.TraceQuery(ctx, "GetMaterial", query)
	defer func() { end(err) }()

	var m domain.Material
	err = r.pool.QueryRow(ctx, query, id).Scan(&m.ID, &m.Name, &m.CreatedAt, &m.UpdatedAt, &m.DeletedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("material", id)
		}
		return nil, fmt.Errorf("get material: %w", err)
	}

	colors, err := r.colorsFor(ctx, []string{m.ID}, false)
	if err != nil {
		return nil, err
	}
	m.Colors = colors[m.ID]
	if m.Colors == nil {
		m.Colors = []domain.Color{}
	}
	return &m, nil
}

// List returns one page of materials with their colors and the total count.
// Deleted listings include every color of each material; live listings only
// include live colors.
func (r *MaterialRepository) List(ctx context.Context, filter repository.ListFilter) (_ []domain.Material, _ int, err error) {
	where := deletedClause(filter.Deleted)

	countQuery := `SELECT count(*) FROM materials WHERE ` + where
	listQuery := fmt.Sprintf(`
		SELECT %s
		FROM materials
		WHERE %s
		ORDER BY created_at DESC, id
		LIMIT $1 OFFSET $2`, materialColumns, where)

	ctx, end := database.TraceQuery(ctx, "ListMaterials", listQuery)
	defer func() { end(err) }()

	var total int
	if err = r.pool.QueryRow(ctx, countQuery).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count materials: %w", err)
	}

	rows, err := r.pool.Query(ctx, listQuery, limitOrDefault(filter.Limit), filter.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list materials: %w", err)
	}
	defer rows.Close()

	materials := []domain.Material{}
	ids := make([]string, 0, filter.Limit)
	for rows.Next() {
		var m domain.Material
		if err = rows.Scan(&m.ID, &m.Name, &m.CreatedAt, &m.UpdatedAt, &m.DeletedAt); err != nil {
			return nil, 0, fmt.Errorf("scan material row: %w", err)
		}
		materials = append(materials, m)
		ids = append(ids, m.ID)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate material rows: %w", err)
	}

	if len(ids) == 0 {
		return materials, total, nil
	}

	colors, err := r.colorsFor(ctx, ids, filter.Deleted)
	if err != nil {
		return nil, 0, err
	}
	for i := range materials {
		materials[i].Colors = colors[materials[i].ID]
		if materials[i].Colors == nil {
			materials[i].Colors = []domain.Color{}
		}
	}
	return materials, total, nil
}

// SoftDelete marks a live material and its live colors as deleted with the
// same timestamp, so Restore can tell which colors went with it.
func (r *MaterialRepository) SoftDelete(ctx context.Context, id string) (err error) {
	ctx, end := database.TraceQuery(ctx, "SoftDeleteMaterial", "UPDATE materials SET deleted_at")
	defer func() { end(err) }()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	deletedAt := time.Now().UTC().Truncate(time.Microsecond)

	ct, err := tx.Exec(ctx,
		`UPDATE materials SET deleted_at = $2, updated_at = $2 WHERE id = $1 AND deleted_at IS NULL`,
		id, deletedAt)
	if err != nil {
		return fmt.Errorf("soft delete material: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("material", id)
	}

	if _, err = tx.Exec(ctx,
		`UPDATE colors SET deleted_at = $2, updated_at = $2 WHERE material_id = $1 AND deleted_at IS NULL`,
		id, deletedAt); err != nil {
		return fmt.Errorf("soft delete material colors: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Restore clears the deletion mark of a deleted material and of the colors
// deleted in the same operation.
func (r *MaterialRepository) Restore(ctx context.Context, id string) (_ *domain.Material, err error) {
	ctx, end := database.TraceQuery(ctx, "RestoreMaterial", "UPDATE materials SET deleted_at = NULL")
	defer func() { end(err) }()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var deletedAt time.Time
	err = tx.QueryRow(ctx,
		`SELECT deleted_at FROM materials WHERE id = $1 AND deleted_at IS NOT NULL FOR UPDATE`,
		id).Scan(&deletedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("material", id)
		}
		return nil, fmt.Errorf("lock material: %w", err)
	}

	now := time.Now().UTC()
	if _, err = tx.Exec(ctx,
		`UPDATE colors SET deleted_at = NULL, updated_at = $3 WHERE material_id = $1 AND deleted_at = $2`,
		id, deletedAt, now); err != nil {
		return nil, fmt.Errorf("restore material colors: %w", err)
	}
	if _, err = tx.Exec(ctx,
		`UPDATE materials SET deleted_at = NULL, updated_at = $2 WHERE id = $1`,
		id, now); err != nil {
		return nil, fmt.Errorf("restore material: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	return r.GetByID(ctx, id)
}

// colorsFor loads the colors of the given materials keyed by material id.
func (r *MaterialRepository) colorsFor(ctx context.Context, materialIDs []string, withDeleted bool) (map[string][]domain.Color, error) {
	query := fmt.Sprintf(`SELECT %s FROM colors WHERE material_id = ANY($1)`, colorColumns)
	if !withDeleted {
		query += ` AND deleted_at IS NULL`
	}
	query += ` ORDER BY created_at, id`

	rows, err := r.pool.Query(ctx, query, materialIDs)
	if err != nil {
		return nil, fmt.Errorf("list material colors: %w", err)
	}
	defer rows.Close()

	byMaterial := make(map[string][]domain.Color, len(materialIDs))
	for rows.Next() {
		c, err := scanColor(rows)
		if err != nil {
			return nil, err
		}
		byMaterial[c.MaterialID] = append(byMaterial[c.MaterialID], *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate color rows: %w", err)
	}
	return byMaterial, nil
}

// deletedClause selects live rows, or rows soft-deleted at or before now.
func deletedClause(deleted bool) string {
	if deleted {
		return `deleted_at IS NOT NULL AND deleted_at <= NOW()`
	}
	return `deleted_at IS NULL`
}

func limitOrDefault(limit int) int {
	if limit <= 0 {
		return 20
	}
	return limit
}
