package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/shubhamchoudhary-2003/fullstack/internal/domain"
	"github.com/shubhamchoudhary-2003/fullstack/internal/service"
	"github.com/shubhamchoudhary-2003/fullstack/pkg/pagination"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

var testNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

// =============================================================================
// Mock services
// =============================================================================

type mockFashionService struct {
	mock.Mock
}

func (m *mockFashionService) ListMaterials(ctx context.Context, page pagination.Params, deleted bool) ([]domain.Material, int, error) {
	args := m.Called(ctx, page, deleted)
	return args.Get(0).([]domain.Material), args.Int(1), args.Error(2)
}

func (m *mockFashionService) CreateMaterial(ctx context.Context, name string) (*domain.Material, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Material), args.Error(1)
}

func (m *mockFashionService) GetMaterial(ctx context.Context, id string) (*domain.Material, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Material), args.Error(1)
}

func (m *mockFashionService) DeleteMaterial(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockFashionService) RestoreMaterial(ctx context.Context, id string) (*domain.Material, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Material), args.Error(1)
}

func (m *mockFashionService) ListColors(ctx context.Context, materialID string, page pagination.Params, deleted bool) ([]domain.Color, int, error) {
	args := m.Called(ctx, materialID, page, deleted)
	return args.Get(0).([]domain.Color), args.Int(1), args.Error(2)
}

func (m *mockFashionService) CreateColor(ctx context.Context, materialID, name, hexCode string) (*domain.Color, error) {
	args := m.Called(ctx, materialID, name, hexCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Color), args.Error(1)
}

func (m *mockFashionService) DeleteColor(ctx context.Context, materialID, colorID string) error {
	return m.Called(ctx, materialID, colorID).Error(0)
}

type mockCatalogService struct {
	mock.Mock
}

func (m *mockCatalogService) GetCollectionDetails(ctx context.Context, id string) (domain.CollectionDetails, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.CollectionDetails), args.Error(1)
}

func (m *mockCatalogService) UpdateCollectionMetadata(ctx context.Context, id string, fields domain.CollectionFields) (*domain.ProductCollection, error) {
	args := m.Called(ctx, id, fields)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ProductCollection), args.Error(1)
}

func (m *mockCatalogService) GetProductTypeDetails(ctx context.Context, id string) (domain.ProductTypeDetails, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.ProductTypeDetails), args.Error(1)
}

func (m *mockCatalogService) UpdateProductTypeMetadata(ctx context.Context, id string, fields domain.ProductTypeFields) (*domain.ProductType, error) {
	args := m.Called(ctx, id, fields)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ProductType), args.Error(1)
}

type mockStorefrontService struct {
	mock.Mock
}

func (m *mockStorefrontService) ListRegions(ctx context.Context) ([]domain.Region, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Region), args.Error(1)
}

func (m *mockStorefrontService) Header(ctx context.Context, path string) (domain.HeaderView, error) {
	args := m.Called(ctx, path)
	return args.Get(0).(domain.HeaderView), args.Error(1)
}

func (m *mockStorefrontService) SelectRegion(ctx context.Context, countryCode, currentPath string) (*service.RegionSelection, error) {
	args := m.Called(ctx, countryCode, currentPath)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.RegionSelection), args.Error(1)
}

// =============================================================================
// Request helpers
// =============================================================================

func do(t *testing.T, h http.Handler, method, target string, body string, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeMap(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	return out
}

func errorFields(t *testing.T, body map[string]any) []string {
	t.Helper()
	raw, ok := body["errors"].([]any)
	require.True(t, ok, "expected errors array in %v", body)
	fields := make([]string, 0, len(raw))
	for _, e := range raw {
		fields = append(fields, e.(map[string]any)["field"].(string))
	}
	return fields
}
