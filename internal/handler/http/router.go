package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shubhamchoudhary-2003/fullstack/internal/auth"
	"github.com/shubhamchoudhary-2003/fullstack/pkg/health"
	"github.com/shubhamchoudhary-2003/fullstack/pkg/httputil"
	"github.com/shubhamchoudhary-2003/fullstack/pkg/middleware"
)

// ServiceName labels metrics and traces.
const ServiceName = "fashion-backend"

// RouterConfig holds the HTTP-facing settings of the router.
type RouterConfig struct {
	Environment       string
	StoreCORS         []string
	AdminCORS         []string
	StoreRateLimitRPS float64
	StoreRateBurst    int
	PprofAllowedCIDRs []string
}

// Handlers groups the route handlers mounted by NewRouter.
type Handlers struct {
	Fashion    *FashionHandler
	Catalog    *CatalogHandler
	Storefront *StorefrontHandler
	Health     *health.Handler
}

// NewRouter creates a chi router with the admin and store route groups. The
// store rate limiter evicts stale clients until ctx is cancelled.
func NewRouter(ctx context.Context, cfg RouterConfig, h Handlers, tokens middleware.TokenValidator, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(logger))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics(ServiceName))
	r.Use(middleware.Tracing(ServiceName))
	r.Use(middleware.RequestLogger(logger))

	r.Get("/health/live", h.Health.LivenessHandler())
	r.Get("/health/ready", h.Health.ReadinessHandler())
	r.With(middleware.IPAllowlist(cfg.PprofAllowedCIDRs, logger)).Handle("/metrics", promhttp.Handler())
	middleware.RegisterPprof(r, cfg.PprofAllowedCIDRs, logger)

	r.Route("/admin", func(r chi.Router) {
		r.Use(middleware.CORS(corsConfig(cfg.AdminCORS, cfg.Environment)))
		r.Use(middleware.BodyLimit(httputil.MaxBodyBytes))
		r.Use(middleware.Auth(tokens))
		r.Use(middleware.RequireRole(auth.RoleAdmin))

		r.Route("/fashion", func(r chi.Router) {
			r.Get("/", h.Fashion.ListMaterials)
			r.Post("/", h.Fashion.CreateMaterial)
			r.Get("/{id}", h.Fashion.GetMaterial)
			r.Delete("/{id}", h.Fashion.DeleteMaterial)
			r.Post("/{id}/restore", h.Fashion.RestoreMaterial)
			r.Get("/{id}/colors", h.Fashion.ListColors)
			r.Post("/{id}/colors", h.Fashion.CreateColor)
			r.Delete("/{id}/colors/{colorId}", h.Fashion.DeleteColor)
		})

		r.Route("/custom", func(r chi.Router) {
			r.Get("/collections/{collectionId}/details", h.Catalog.GetCollectionDetails)
			r.Post("/collections/{collectionId}/details", h.Catalog.UpdateCollectionDetails)
			r.Get("/product-types/{productTypeId}/details", h.Catalog.GetProductTypeDetails)
			r.Post("/product-types/{productTypeId}/details", h.Catalog.UpdateProductTypeDetails)
		})
	})

	r.Route("/store", func(r chi.Router) {
		r.Use(middleware.CORS(corsConfig(cfg.StoreCORS, cfg.Environment)))
		r.Use(middleware.RateLimit(ctx, cfg.StoreRateLimitRPS, cfg.StoreRateBurst, logger))
		r.Use(middleware.BodyLimit(httputil.MaxBodyBytes))

		r.With(middleware.CacheControl(time.Minute)).Get("/regions", h.Storefront.ListRegions)
		r.Get("/header", h.Storefront.Header)
		r.Post("/region", h.Storefront.SelectRegion)
	})

	return r
}

func corsConfig(origins []string, environment string) middleware.CORSConfig {
	return middleware.CORSConfig{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		ExposedHeaders:   []string{"X-Correlation-ID"},
		MaxAge:           3600,
		AllowCredentials: true,
		Environment:      environment,
	}
}
