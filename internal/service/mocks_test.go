package service

import (
	"context"
	"io"
	"log/slog"

	"github.com/stretchr/testify/mock"

	"github.com/shubhamchoudhary-2003/fullstack/internal/domain"
	"github.com/shubhamchoudhary-2003/fullstack/internal/repository"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// --- Repositories ---

type mockMaterialRepository struct {
	mock.Mock
}

func (m *mockMaterialRepository) Create(ctx context.Context, material *domain.Material) error {
	return m.Called(ctx, material).Error(0)
}

func (m *mockMaterialRepository) GetByID(ctx context.Context, id string) (*domain.Material, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Material), args.Error(1)
}

func (m *mockMaterialRepository) List(ctx context.Context, filter repository.ListFilter) ([]domain.Material, int, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Material), args.Int(1), args.Error(2)
}

func (m *mockMaterialRepository) SoftDelete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockMaterialRepository) Restore(ctx context.Context, id string) (*domain.Material, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Material), args.Error(1)
}

type mockColorRepository struct {
	mock.Mock
}

func (m *mockColorRepository) Create(ctx context.Context, color *domain.Color) error {
	return m.Called(ctx, color).Error(0)
}

func (m *mockColorRepository) ListByMaterial(ctx context.Context, materialID string, filter repository.ListFilter) ([]domain.Color, int, error) {
	args := m.Called(ctx, materialID, filter)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Color), args.Int(1), args.Error(2)
}

func (m *mockColorRepository) SoftDelete(ctx context.Context, materialID, colorID string) error {
	return m.Called(ctx, materialID, colorID).Error(0)
}

type mockCollectionRepository struct {
	mock.Mock
}

func (m *mockCollectionRepository) Create(ctx context.Context, c *domain.ProductCollection) error {
	return m.Called(ctx, c).Error(0)
}

func (m *mockCollectionRepository) GetByID(ctx context.Context, id string) (*domain.ProductCollection, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ProductCollection), args.Error(1)
}

func (m *mockCollectionRepository) MergeMetadata(ctx context.Context, id string, patch map[string]any) (*domain.ProductCollection, error) {
	args := m.Called(ctx, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ProductCollection), args.Error(1)
}

type mockProductTypeRepository struct {
	mock.Mock
}

func (m *mockProductTypeRepository) Create(ctx context.Context, pt *domain.ProductType) error {
	return m.Called(ctx, pt).Error(0)
}

func (m *mockProductTypeRepository) GetByID(ctx context.Context, id string) (*domain.ProductType, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ProductType), args.Error(1)
}

func (m *mockProductTypeRepository) MergeMetadata(ctx context.Context, id string, patch map[string]any) (*domain.ProductType, error) {
	args := m.Called(ctx, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ProductType), args.Error(1)
}

type mockRegionRepository struct {
	mock.Mock
}

func (m *mockRegionRepository) Create(ctx context.Context, region *domain.Region) error {
	return m.Called(ctx, region).Error(0)
}

func (m *mockRegionRepository) List(ctx context.Context) ([]domain.Region, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Region), args.Error(1)
}

type mockRegionCache struct {
	mock.Mock
}

func (m *mockRegionCache) Get(ctx context.Context) ([]domain.Region, bool, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).([]domain.Region), args.Bool(1), args.Error(2)
}

func (m *mockRegionCache) Set(ctx context.Context, regions []domain.Region) error {
	return m.Called(ctx, regions).Error(0)
}

func (m *mockRegionCache) Invalidate(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

// --- Events ---

type mockEvents struct {
	mock.Mock
}

func (m *mockEvents) PublishMaterialCreated(ctx context.Context, material *domain.Material) error {
	return m.Called(ctx, material).Error(0)
}

func (m *mockEvents) PublishMaterialDeleted(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockEvents) PublishMaterialRestored(ctx context.Context, material *domain.Material) error {
	return m.Called(ctx, material).Error(0)
}

func (m *mockEvents) PublishColorCreated(ctx context.Context, color *domain.Color) error {
	return m.Called(ctx, color).Error(0)
}

func (m *mockEvents) PublishColorDeleted(ctx context.Context, materialID, colorID string) error {
	return m.Called(ctx, materialID, colorID).Error(0)
}

func (m *mockEvents) PublishCollectionMetadataUpdated(ctx context.Context, id string, keys []string) error {
	return m.Called(ctx, id, keys).Error(0)
}

func (m *mockEvents) PublishProductTypeMetadataUpdated(ctx context.Context, id string, keys []string) error {
	return m.Called(ctx, id, keys).Error(0)
}
