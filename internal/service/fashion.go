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
	"github.com/shubhamchoudhary-2003/fullstack/pkg/pagination"
)

// FashionEvents publishes material and color events.
type FashionEvents interface {
	PublishMaterialCreated(ctx context.Context, m *domain.Material) error
	PublishMaterialDeleted(ctx context.Context, id string) error
	PublishMaterialRestored(ctx context.Context, m *domain.Material) error
	PublishColorCreated(ctx context.Context, c *domain.Color) error
	PublishColorDeleted(ctx context.Context, materialID, colorID string) error
}

// FashionService implements the business logic for materials and colors.
type FashionService struct {
	materials repository.MaterialRepository
	colors    repository.ColorRepository
	events    FashionEvents
	logger    *slog.Logger
}

// NewFashionService creates a new fashion service.
func NewFashionService(materials repository.MaterialRepository, colors repository.ColorRepository, events FashionEvents, logger *slog.Logger) *FashionService {
	return &FashionService{
		materials: materials,
		colors:    colors,
		events:    events,
		logger:    logger,
	}
}

// ListMaterials returns one page of live or soft-deleted materials and the
// total number of matches.
func (s *FashionService) ListMaterials(ctx context.Context, page pagination.Params, deleted bool) ([]domain.Material, int, error) {
	materials, total, err := s.materials.List(ctx, listFilter(page, deleted))
	if err != nil {
		return nil, 0, fmt.Errorf("list materials: %w", err)
	}
	return materials, total, nil
}

// CreateMaterial creates a material with the given name.
func (s *FashionService) CreateMaterial(ctx context.Context, name string) (*domain.Material, error) {
	if strings.TrimSpace(name) == "" {
		return nil, apperrors.InvalidInput("material name is required")
	}

	material := domain.NewMaterial(name, time.Now().UTC())
	if err := s.materials.Create(ctx, material); err != nil {
		return nil, fmt.Errorf("create material: %w", err)
	}

	if err := s.events.PublishMaterialCreated(ctx, material); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish material.created event",
			slog.String("material_id", material.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "material created",
		slog.String("material_id", material.ID),
		slog.String("name", material.Name),
	)
	return material, nil
}

// GetMaterial retrieves a live material with its live colors.
func (s *FashionService) GetMaterial(ctx context.Context, id string) (*domain.Material, error) {
	material, err := s.materials.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get material: %w", err)
	}
	return material, nil
}

// DeleteMaterial soft-deletes a material together with its live colors.
func (s *FashionService) DeleteMaterial(ctx context.Context, id string) error {
	if err := s.materials.SoftDelete(ctx, id); err != nil {
		return fmt.Errorf("delete material: %w", err)
	}

	if err := s.events.PublishMaterialDeleted(ctx, id); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish material.deleted event",
			slog.String("material_id", id),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "material deleted", slog.String("material_id", id))
	return nil
}

// RestoreMaterial brings back a soft-deleted material and the colors that
// were deleted with it.
func (s *FashionService) RestoreMaterial(ctx context.Context, id string) (*domain.Material, error) {
	material, err := s.materials.Restore(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("restore material: %w", err)
	}

	if err := s.events.PublishMaterialRestored(ctx, material); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish material.restored event",
			slog.String("material_id", id),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "material restored",
		slog.String("material_id", id),
		slog.Int("colors", len(material.Colors)),
	)
	return material, nil
}

// ListColors returns one page of a material's colors and the total number of
// matches. An unknown material yields an empty page.
func (s *FashionService) ListColors(ctx context.Context, materialID string, page pagination.Params, deleted bool) ([]domain.Color, int, error) {
	colors, total, err := s.colors.ListByMaterial(ctx, materialID, listFilter(page, deleted))
	if err != nil {
		return nil, 0, fmt.Errorf("list colors: %w", err)
	}
	return colors, total, nil
}

// CreateColor adds a color to a live material.
func (s *FashionService) CreateColor(ctx context.Context, materialID, name, hexCode string) (*domain.Color, error) {
	if strings.TrimSpace(name) == "" {
		return nil, apperrors.InvalidInput("color name is required")
	}

	color := domain.NewColor(materialID, name, hexCode, time.Now().UTC())
	if err := s.colors.Create(ctx, color); err != nil {
		return nil, fmt.Errorf("create color: %w", err)
	}

	if err := s.events.PublishColorCreated(ctx, color); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish color.created event",
			slog.String("color_id", color.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "color created",
		slog.String("color_id", color.ID),
		slog.String("material_id", materialID),
		slog.String("hex_code", color.HexCode),
	)
	return color, nil
}

// DeleteColor soft-deletes one color of a material.
func (s *FashionService) DeleteColor(ctx context.Context, materialID, colorID string) error {
	if err := s.colors.SoftDelete(ctx, materialID, colorID); err != nil {
		return fmt.Errorf("delete color: %w", err)
	}

	if err := s.events.PublishColorDeleted(ctx, materialID, colorID); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish color.deleted event",
			slog.String("color_id", colorID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "color deleted",
		slog.String("color_id", colorID),
		slog.String("material_id", materialID),
	)
	return nil
}

func listFilter(page pagination.Params, deleted bool) repository.ListFilter {
	return repository.ListFilter{
		Deleted: deleted,
		Limit:   page.PerPage,
		Offset:  page.Offset,
	}
}
