package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/shubhamchoudhary-2003/fullstack/internal/domain"
	"github.com/shubhamchoudhary-2003/fullstack/pkg/database"
	apperrors "github.com/shubhamchoudhary-2003/fullstack/pkg/errors"
)

// RegionRepository implements repository.RegionRepository using PostgreSQL.
type RegionRepository struct {
	pool database.DBTX
}

// NewRegionRepository creates a new PostgreSQL-backed region repository.
func NewRegionRepository(pool database.DBTX) *RegionRepository {
	return &RegionRepository{pool: pool}
}

// Create inserts a region and its countries in a single transaction.
func (r *RegionRepository) Create(ctx context.Context, region *domain.Region) (err error) {
	ctx, end := database.TraceQuery(ctx, "CreateRegion", "INSERT INTO regions")
	defer func() { end(err) }()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err = tx.Exec(ctx,
		`INSERT INTO regions (id, name, currency_code, created_at, updated_at) VALUES ($1, $2, $3, $4, $5)`,
		region.ID, region.Name, strings.ToLower(region.CurrencyCode), region.CreatedAt, region.UpdatedAt); err != nil {
		return fmt.Errorf("insert region: %w", err)
	}

	for i := range region.Countries {
		c := &region.Countries[i]
		c.ISO2 = strings.ToLower(c.ISO2)
		c.RegionID = region.ID
		if _, err = tx.Exec(ctx,
			`INSERT INTO region_countries (iso_2, display_name, region_id) VALUES ($1, $2, $3)`,
			c.ISO2, c.DisplayName, c.RegionID); err != nil {
			if isUniqueViolation(err) {
				return apperrors.AlreadyExists("country", "iso_2", c.ISO2)
			}
			return fmt.Errorf("insert region country: %w", err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// List returns every region with its countries, ordered by region name.
func (r *RegionRepository) List(ctx context.Context) (_ []domain.Region, err error) {
	query := `
		SELECT r.id, r.name, r.currency_code, r.created_at, r.updated_at,
		       c.iso_2, c.display_name
		FROM regions r
		LEFT JOIN region_countries c ON c.region_id = r.id
		ORDER BY r.name, r.id, c.iso_2`

	ctx, end := database.TraceQuery(ctx, "ListRegions", query)
	defer func() { end(err) }()

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list regions: %w", err)
	}
	defer rows.Close()

	regions := []domain.Region{}
	for rows.Next() {
		var (
			reg         domain.Region
			iso2        *string
			displayName *string
		)
		if err = rows.Scan(&reg.ID, &reg.Name, &reg.CurrencyCode, &reg.CreatedAt, &reg.UpdatedAt, &iso2, &displayName); err != nil {
			return nil, fmt.Errorf("scan region row: %w", err)
		}

		if n := len(regions); n == 0 || regions[n-1].ID != reg.ID {
			reg.CurrencyCode = strings.TrimSpace(reg.CurrencyCode)
			reg.Countries = []domain.Country{}
			regions = append(regions, reg)
		}
		if iso2 != nil {
			last := &regions[len(regions)-1]
			country := domain.Country{ISO2: strings.TrimSpace(*iso2), RegionID: last.ID}
			if displayName != nil {
				country.DisplayName = *displayName
			}
			last.Countries = append(last.Countries, country)
		}
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate region rows: %w", err)
	}
	return regions, nil
}
