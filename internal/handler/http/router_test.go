package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/shubhamchoudhary-2003/fullstack/internal/auth"
	"github.com/shubhamchoudhary-2003/fullstack/internal/domain"
	"github.com/shubhamchoudhary-2003/fullstack/pkg/health"
	"github.com/shubhamchoudhary-2003/fullstack/pkg/httputil"
)

type routerFixture struct {
	handler    http.Handler
	fashion    *mockFashionService
	storefront *mockStorefrontService
	jwt        *auth.JWTManager
}

func newRouterFixture(t *testing.T, checks map[string]health.Checker) *routerFixture {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	fashion := new(mockFashionService)
	storefront := new(mockStorefrontService)
	hc := health.NewHandler()
	for name, check := range checks {
		hc.Register(name, check)
	}
	jwt := auth.NewJWTManager("router-test-secret", time.Hour)

	h := NewRouter(ctx, RouterConfig{
		Environment:       "test",
		StoreCORS:         []string{"http://localhost:8000"},
		AdminCORS:         []string{"http://localhost:9000"},
		StoreRateLimitRPS: 100,
		StoreRateBurst:    100,
	}, Handlers{
		Fashion:    NewFashionHandler(fashion, testLogger()),
		Catalog:    NewCatalogHandler(new(mockCatalogService), testLogger()),
		Storefront: NewStorefrontHandler(storefront, testLogger()),
		Health:     hc,
	}, jwt.Validator(), testLogger())

	return &routerFixture{handler: h, fashion: fashion, storefront: storefront, jwt: jwt}
}

func (f *routerFixture) request(t *testing.T, method, target, role string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	if role != "" {
		token, err := f.jwt.Issue("user_1", "ops@example.com", role)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func TestRouter_AdminRequiresToken(t *testing.T) {
	f := newRouterFixture(t, nil)

	rec := f.request(t, http.MethodGet, "/admin/fashion", "")

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "UNAUTHORIZED", decodeMap(t, rec)["code"])
}

func TestRouter_AdminRejectsForeignToken(t *testing.T) {
	f := newRouterFixture(t, nil)
	other := auth.NewJWTManager("another-secret", time.Hour)
	token, err := other.Issue("user_1", "ops@example.com", auth.RoleAdmin)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/admin/fashion", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_AdminRequiresAdminRole(t *testing.T) {
	f := newRouterFixture(t, nil)

	rec := f.request(t, http.MethodGet, "/admin/fashion", "customer")

	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "FORBIDDEN", decodeMap(t, rec)["code"])
	f.fashion.AssertNotCalled(t, "ListMaterials", mock.Anything, mock.Anything, mock.Anything)
}

func TestRouter_AdminWithAdminRole(t *testing.T) {
	f := newRouterFixture(t, nil)
	f.fashion.On("ListMaterials", mock.Anything, mock.Anything, false).Return([]domain.Material{}, 0, nil)

	rec := f.request(t, http.MethodGet, "/admin/fashion", auth.RoleAdmin)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeMap(t, rec)
	assert.Equal(t, float64(0), body["count"])
	assert.Equal(t, float64(0), body["last_page"])
}

func TestRouter_AdminRejectsOversizedBody(t *testing.T) {
	f := newRouterFixture(t, nil)
	token, err := f.jwt.Issue("user_1", "ops@example.com", auth.RoleAdmin)
	require.NoError(t, err)

	body := `{"name":"` + strings.Repeat("x", httputil.MaxBodyBytes) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/admin/fashion", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Equal(t, "PAYLOAD_TOO_LARGE", decodeMap(t, rec)["code"])
	f.fashion.AssertNotCalled(t, "CreateMaterial", mock.Anything, mock.Anything)
}

func TestRouter_StoreIsPublic(t *testing.T) {
	f := newRouterFixture(t, nil)
	f.storefront.On("ListRegions", mock.Anything).Return([]domain.Region{}, nil)

	rec := f.request(t, http.MethodGet, "/store/regions", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "public, max-age=60, stale-while-revalidate=60", rec.Header().Get("Cache-Control"))
}

func TestRouter_Liveness(t *testing.T) {
	f := newRouterFixture(t, nil)

	rec := f.request(t, http.MethodGet, "/health/live", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "up", decodeMap(t, rec)["status"])
}

func TestRouter_ReadinessReportsFailingDependency(t *testing.T) {
	f := newRouterFixture(t, map[string]health.Checker{
		"postgres": func(context.Context) error { return nil },
		"redis":    func(context.Context) error { return errors.New("dial tcp: connection refused") },
	})

	rec := f.request(t, http.MethodGet, "/health/ready", "")

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	checks := decodeMap(t, rec)["checks"].(map[string]any)
	assert.Equal(t, "up", checks["postgres"].(map[string]any)["status"])
	assert.Equal(t, "down", checks["redis"].(map[string]any)["status"])
}
