package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shubhamchoudhary-2003/fullstack/internal/domain"
	"github.com/shubhamchoudhary-2003/fullstack/internal/repository"
	apperrors "github.com/shubhamchoudhary-2003/fullstack/pkg/errors"
)

// RegionSelection is the outcome of picking a country in the storefront.
type RegionSelection struct {
	RegionID    string `json:"region_id"`
	CountryCode string `json:"country_code"`
	RedirectTo  string `json:"redirect_to"`
}

// StorefrontService serves the region data behind the storefront header.
type StorefrontService struct {
	regions repository.RegionRepository
	cache   repository.RegionCache
	logger  *slog.Logger
}

// NewStorefrontService creates a new storefront service.
func NewStorefrontService(regions repository.RegionRepository, cache repository.RegionCache, logger *slog.Logger) *StorefrontService {
	return &StorefrontService{
		regions: regions,
		cache:   cache,
		logger:  logger,
	}
}

// ListRegions returns every region, served from the cache when possible.
// Cache failures are logged and fall back to the database.
func (s *StorefrontService) ListRegions(ctx context.Context) ([]domain.Region, error) {
	regions, ok, err := s.cache.Get(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "region cache read failed", slog.String("error", err.Error()))
	}
	if ok {
		return regions, nil
	}

	regions, err = s.regions.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list regions: %w", err)
	}

	if err := s.cache.Set(ctx, regions); err != nil {
		s.logger.WarnContext(ctx, "region cache write failed", slog.String("error", err.Error()))
	}
	return regions, nil
}

// CreateRegion stores a region with its countries and drops the cached list.
func (s *StorefrontService) CreateRegion(ctx context.Context, name, currencyCode string, countries []domain.Country) (*domain.Region, error) {
	if strings.TrimSpace(name) == "" {
		return nil, apperrors.InvalidInput("region name is required")
	}
	if len(currencyCode) != 3 {
		return nil, apperrors.InvalidInput("currency must be a 3-letter ISO code")
	}

	region := domain.NewRegion(name, currencyCode, countries, time.Now().UTC())
	if err := s.regions.Create(ctx, region); err != nil {
		return nil, fmt.Errorf("create region: %w", err)
	}

	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.WarnContext(ctx, "region cache invalidation failed", slog.String("error", err.Error()))
	}

	s.logger.InfoContext(ctx, "region created",
		slog.String("region_id", region.ID),
		slog.Int("countries", len(region.Countries)),
	)
	return region, nil
}

// Header builds the header view model for a storefront path.
func (s *StorefrontService) Header(ctx context.Context, path string) (domain.HeaderView, error) {
	regions, err := s.ListRegions(ctx)
	if err != nil {
		return domain.HeaderView{}, err
	}
	return domain.BuildHeader(path, regions), nil
}

// SelectRegion resolves the region of a country and the localized path the
// storefront should navigate to, keeping the current sub-path.
func (s *StorefrontService) SelectRegion(ctx context.Context, countryCode, currentPath string) (*RegionSelection, error) {
	regions, err := s.ListRegions(ctx)
	if err != nil {
		return nil, err
	}

	option, ok := domain.FindCountry(domain.CountryOptions(regions), countryCode)
	if !ok {
		return nil, apperrors.NotFound("country", countryCode)
	}

	if currentPath != "" && !strings.HasPrefix(currentPath, "/") {
		currentPath = "/" + currentPath
	}

	return &RegionSelection{
		RegionID:    option.Region,
		CountryCode: option.Country,
		RedirectTo:  domain.LocalizedPath(option.Country, currentPath),
	}, nil
}
