package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/shubhamchoudhary-2003/fullstack/internal/domain"
	"github.com/shubhamchoudhary-2003/fullstack/internal/repository"
	"github.com/shubhamchoudhary-2003/fullstack/pkg/database"
	apperrors "github.com/shubhamchoudhary-2003/fullstack/pkg/errors"
)

const colorColumns = `id, name, hex_code, material_id, created_at, updated_at, deleted_at`

// ColorRepository implements repository.ColorRepository using PostgreSQL.
type ColorRepository struct {
	pool database.DBTX
}

// NewColorRepository creates a new PostgreSQL-backed color repository.
func NewColorRepository(pool database.DBTX) *ColorRepository {
	return &ColorRepository{pool: pool}
}

// Create inserts a color for a live material. The material check and the
// insert run as one statement.
func (r *ColorRepository) Create(ctx context.Context, c *domain.Color) (err error) {
	query := `
		INSERT INTO colors (id, name, hex_code, material_id, created_at, updated_at)
		SELECT $1, $2, $3, m.id, $5, $6
		FROM materials m
		WHERE m.id = $4 AND m.deleted_at IS NULL`

	ctx, end := database.TraceQuery(ctx, "CreateColor", query)
	defer func() { end(err) }()

	ct, err := r.pool.Exec(ctx, query, c.ID, c.Name, c.HexCode, c.MaterialID, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return apperrors.NotFound("material", c.MaterialID)
		}
		return fmt.Errorf("insert color: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("material", c.MaterialID)
	}
	return nil
}

// ListByMaterial returns one page of a material's colors and the total count.
func (r *ColorRepository) ListByMaterial(ctx context.Context, materialID string, filter repository.ListFilter) (_ []domain.Color, _ int, err error) {
	where := `material_id = $1 AND ` + deletedClause(filter.Deleted)

	countQuery := `SELECT count(*) FROM colors WHERE ` + where
	listQuery := fmt.Sprintf(`
		SELECT %s
		FROM colors
		WHERE %s
		ORDER BY created_at DESC, id
		LIMIT $2 OFFSET $3`, colorColumns, where)

	ctx, end := database.TraceQuery(ctx, "ListColors", listQuery)
	defer func() { end(err) }()

	var total int
	if err = r.pool.QueryRow(ctx, countQuery, materialID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count colors: %w", err)
	}

	rows, err := r.pool.Query(ctx, listQuery, materialID, limitOrDefault(filter.Limit), filter.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list colors: %w", err)
	}
	defer rows.Close()

	colors := []domain.Color{}
	for rows.Next() {
		c, scanErr := scanColor(rows)
		if scanErr != nil {
			err = scanErr
			return nil, 0, err
		}
		colors = append(colors, *c)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate color rows: %w", err)
	}
	return colors, total, nil
}

// SoftDelete marks a live color of the given material as deleted.
func (r *ColorRepository) SoftDelete(ctx context.Context, materialID, colorID string) (err error) {
	query := `
		UPDATE colors SET deleted_at = $3, updated_at = $3
		WHERE id = $1 AND material_id = $2 AND deleted_at IS NULL`

	ctx, end := database.TraceQuery(ctx, "SoftDeleteColor", query)
	defer func() { end(err) }()

	ct, err := r.pool.Exec(ctx, query, colorID, materialID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("soft delete color: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("color", colorID)
	}
	return nil
}

func scanColor(row pgx.Row) (*domain.Color, error) {
	var c domain.Color
	if err := row.Scan(&c.ID, &c.Name, &c.HexCode, &c.MaterialID, &c.CreatedAt, &c.UpdatedAt, &c.DeletedAt); err != nil {
		return nil, fmt.Errorf("scan color row: %w", err)
	}
	return &c, nil
}

// isUniqueViolation checks if the error is a PostgreSQL unique constraint violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "23505")
}

// isForeignKeyViolation checks if the error is a PostgreSQL foreign key violation (SQLSTATE 23503).
func isForeignKeyViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "23503")
}
