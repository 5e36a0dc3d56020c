package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"

	"github.com/shubhamchoudhary-2003/fullstack/internal/auth"
	"github.com/shubhamchoudhary-2003/fullstack/internal/config"
	"github.com/shubhamchoudhary-2003/fullstack/internal/event"
	handler "github.com/shubhamchoudhary-2003/fullstack/internal/handler/http"
	"github.com/shubhamchoudhary-2003/fullstack/internal/repository/postgres"
	"github.com/shubhamchoudhary-2003/fullstack/internal/repository/redis"
	"github.com/shubhamchoudhary-2003/fullstack/internal/revalidate"
	"github.com/shubhamchoudhary-2003/fullstack/internal/service"
	"github.com/shubhamchoudhary-2003/fullstack/pkg/database"
	"github.com/shubhamchoudhary-2003/fullstack/pkg/health"
	"github.com/shubhamchoudhary-2003/fullstack/pkg/httpclient"
	pkgkafka "github.com/shubhamchoudhary-2003/fullstack/pkg/kafka"
	"github.com/shubhamchoudhary-2003/fullstack/pkg/tracing"
)

const (
	adminTokenTTL   = 24 * time.Hour
	startupTimeout  = 15 * time.Second
	kafkaPingBudget = 3 * time.Second
	shutdownBudget  = 10 * time.Second
)

// App owns every long-lived resource of the fashion backend.
type App struct {
	cfg    *config.Config
	logger *slog.Logger

	pool     *pgxpool.Pool
	redis    *goredis.Client
	producer *pkgkafka.Producer
	dlq      *pkgkafka.DLQProducer

	revalidation   *revalidate.Runner
	httpServer     *http.Server
	stopBackground context.CancelFunc
	tracerShutdown func(context.Context) error
}

// NewApp connects to the stores, applies migrations and wires the HTTP
// surface. A failure releases whatever was already opened.
func NewApp(cfg *config.Config, logger *slog.Logger) (_ *App, err error) {
	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	a := &App{cfg: cfg, logger: logger, stopBackground: func() {}}
	defer func() {
		if err != nil {
			a.release()
		}
	}()

	a.tracerShutdown, err = tracing.InitTracer(ctx, tracing.Config{
		ServiceName:    handler.ServiceName,
		ServiceVersion: "0.1.0",
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTELEndpoint,
		SampleRate:     cfg.OTELSampleRate,
		Enabled:        cfg.OTELEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}
	if err = a.openStores(ctx); err != nil {
		return nil, err
	}

	a.producer = pkgkafka.NewProducer(pkgkafka.ProducerConfig{Brokers: cfg.KafkaBrokers}, logger)
	pingCtx, pingCancel := context.WithTimeout(ctx, kafkaPingBudget)
	if perr := a.producer.Ping(pingCtx); perr != nil {
		logger.Warn("kafka unreachable, events will be retried by the writer", slog.String("error", perr.Error()))
	}
	pingCancel()

	if cfg.RevalidationEnabled() {
		a.dlq = pkgkafka.NewDLQProducer(cfg.KafkaBrokers, logger)
		a.revalidation = a.revalidationRunner()
		logger.Info("storefront revalidation enabled", slog.String("storefront_url", cfg.StorefrontURL))
	}

	a.httpServer = a.newHTTPServer()
	return a, nil
}

func (a *App) openStores(ctx context.Context) error {
	pool, err := database.Connect(ctx, a.cfg.Postgres(), a.logger)
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	a.pool = pool
	if err := database.RegisterPoolMetrics(prometheus.DefaultRegisterer, pool, handler.ServiceName); err != nil {
		a.logger.Warn("pool metrics not registered", slog.String("error", err.Error()))
	}
	if err := database.RunMigrations(ctx, pool, postgres.Migrations(), a.logger); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	if ms := a.cfg.SlowQueryThresholdMs; ms > 0 {
		database.SetSlowQueryLogging(time.Duration(ms)*time.Millisecond, a.logger)
	}

	a.redis, err = database.NewRedisClient(ctx, a.cfg.Redis(), a.logger)
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	return nil
}

func (a *App) newHTTPServer() *http.Server {
	events := event.NewProducer(a.producer, a.logger)
	fashion := service.NewFashionService(
		postgres.NewMaterialRepository(a.pool),
		postgres.NewColorRepository(a.pool),
		events, a.logger,
	)
	catalog := service.NewCatalogService(
		postgres.NewCollectionRepository(a.pool),
		postgres.NewProductTypeRepository(a.pool),
		events, a.logger,
	)
	storefront := service.NewStorefrontService(
		postgres.NewRegionRepository(a.pool),
		redis.NewRegionCache(a.redis, a.cfg.RegionCacheTTL),
		a.logger,
	)

	checks := health.NewHandler()
	checks.RegisterCritical("postgres", a.pool.Ping)
	checks.RegisterNonCritical("redis", func(ctx context.Context) error { return a.redis.Ping(ctx).Err() })
	checks.RegisterNonCritical("kafka", a.producer.Ping)

	bg, stop := context.WithCancel(context.Background())
	a.stopBackground = stop

	cfg := a.cfg
	router := handler.NewRouter(bg, handler.RouterConfig{
		Environment:       cfg.Environment,
		StoreCORS:         cfg.StoreCORS,
		AdminCORS:         cfg.AdminCORS,
		StoreRateLimitRPS: cfg.StoreRateLimitRPS,
		StoreRateBurst:    cfg.StoreRateLimitBurst,
		PprofAllowedCIDRs: cfg.PprofAllowedCIDRs,
	}, handler.Handlers{
		Fashion:    handler.NewFashionHandler(fashion, a.logger),
		Catalog:    handler.NewCatalogHandler(catalog, a.logger),
		Storefront: handler.NewStorefrontHandler(storefront, a.logger),
		Health:     checks,
	}, auth.NewJWTManager(cfg.JWTSecret, adminTokenTTL).Validator(), a.logger)

	return &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      35 * time.Second,
		IdleTimeout:       time.Minute,
	}
}

// revalidationRunner starts one consumer per catalog topic. They share a
// consumer group, the Redis dedup store and the dead letter producer.
func (a *App) revalidationRunner() *revalidate.Runner {
	cfg := a.cfg
	storefront := httpclient.NewBreaker(
		httpclient.New(httpclient.DefaultConfig()),
		httpclient.DefaultBreakerConfig("storefront"),
		a.logger,
	)
	client := revalidate.NewClient(storefront, cfg.StorefrontURL, cfg.RevalidateSecret, a.logger)
	seen := pkgkafka.NewRedisIdempotencyStore(a.redis, "revalidate:seen:", time.Hour)

	consumer := func(topic string, h pkgkafka.Handler) revalidate.Consumer {
		return pkgkafka.NewConsumer(pkgkafka.ConsumerConfig{
			Brokers:  cfg.KafkaBrokers,
			GroupID:  cfg.KafkaConsumerGroup,
			Topic:    topic,
			MinBytes: 1,
			MaxBytes: 10e6,
			DLQ:      a.dlq,
		}, h, a.logger)
	}
	return revalidate.NewRunner(event.Topics(), revalidate.NewHandler(client, a.logger), seen, consumer, a.logger)
}

// Run serves HTTP and consumes revalidation events until ctx is cancelled
// or the listener fails.
func (a *App) Run(ctx context.Context) error {
	serveErr := make(chan error, 1)
	go func() {
		a.logger.Info("http server listening", slog.String("addr", a.httpServer.Addr))
		if err := a.httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			serveErr <- fmt.Errorf("http server: %w", err)
		}
	}()

	if a.revalidation != nil {
		a.revalidation.Start(ctx)
	}

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
		return a.Shutdown()
	case err := <-serveErr:
		return errors.Join(err, a.Shutdown())
	}
}

// Shutdown drains HTTP first, then stops consumers before closing the
// producers they dead-letter through, then the stores.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down")

	var errs []error
	step := func(name string, err error) {
		if err != nil {
			a.logger.Error(name+" shutdown failed", slog.String("error", err.Error()))
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownBudget)
	defer cancel()

	step("http server", a.httpServer.Shutdown(ctx))
	if a.revalidation != nil {
		step("revalidation", a.revalidation.Close())
		a.revalidation.Wait()
	}
	if a.tracerShutdown != nil {
		step("tracer", a.tracerShutdown(ctx))
	}
	errs = append(errs, a.release()...)

	a.logger.Info("shutdown complete")
	return errors.Join(errs...)
}

// release closes whatever NewApp managed to open, in reverse order.
func (a *App) release() []error {
	var errs []error
	a.stopBackground()
	if a.dlq != nil {
		if err := a.dlq.Close(); err != nil {
			errs = append(errs, fmt.Errorf("dlq producer: %w", err))
		}
	}
	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("kafka producer: %w", err))
		}
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("redis: %w", err))
		}
	}
	if a.pool != nil {
		a.pool.Close()
	}
	return errs
}
