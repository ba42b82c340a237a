package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/castrogabe/antiquepox/pkg/database"
	"github.com/castrogabe/antiquepox/pkg/health"
	"github.com/castrogabe/antiquepox/pkg/httpclient"
	pkgkafka "github.com/castrogabe/antiquepox/pkg/kafka"
	"github.com/castrogabe/antiquepox/pkg/tracing"

	"github.com/castrogabe/antiquepox/internal/auth"
	"github.com/castrogabe/antiquepox/internal/config"
	"github.com/castrogabe/antiquepox/internal/domain"
	"github.com/castrogabe/antiquepox/internal/event"
	handler "github.com/castrogabe/antiquepox/internal/handler/http"
	"github.com/castrogabe/antiquepox/internal/notify"
	notifymock "github.com/castrogabe/antiquepox/internal/notify/mock"
	"github.com/castrogabe/antiquepox/internal/payment"
	paymentmock "github.com/castrogabe/antiquepox/internal/payment/mock"
	"github.com/castrogabe/antiquepox/internal/payment/paypal"
	"github.com/castrogabe/antiquepox/internal/payment/stripe"
	postgresrepo "github.com/castrogabe/antiquepox/internal/repository/postgres"
	redisrepo "github.com/castrogabe/antiquepox/internal/repository/redis"
	"github.com/castrogabe/antiquepox/internal/service"
	"github.com/castrogabe/antiquepox/internal/storage/local"
	"github.com/castrogabe/antiquepox/migrations"
)

// App wires together all dependencies and runs the storefront server.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	pool           *pgxpool.Pool
	redis          *redis.Client
	producer       *pkgkafka.Producer
	httpServer     *http.Server
	tracerShutdown func(context.Context) error
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize OpenTelemetry tracing.
	tracerShutdown, err := tracing.InitTracer(ctx, tracing.Config{
		ServiceName:    "antiquepox",
		ServiceVersion: "0.1.0",
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		SampleRate:     1.0,
		Enabled:        cfg.TracingEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	// Initialize PostgreSQL connection pool.
	pgCfg := cfg.Postgres()
	pool, err := database.NewPostgresPool(ctx, &pgCfg)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	logger.Info("connected to PostgreSQL",
		slog.String("host", cfg.PostgresHost),
		slog.Int("port", cfg.PostgresPort),
		slog.String("database", cfg.PostgresDB),
	)
	database.RegisterPoolMetrics(pool, "antiquepox")

	// Run database migrations.
	if err := database.RunMigrations(ctx, pool, migrations.FS, logger); err != nil {
		pool.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	logger.Info("database migrations completed")

	// Initialize Redis for cart storage.
	redisClient, err := database.NewRedisClient(ctx, cfg.Redis())
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	logger.Info("connected to Redis",
		slog.String("host", cfg.RedisHost),
		slog.Int("port", cfg.RedisPort),
	)

	// Initialize Kafka producer.
	kafkaCfg := pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers)
	producer := pkgkafka.NewProducer(kafkaCfg, logger)
	logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))

	// Build the dependency graph.
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTSessionExpiry, cfg.JWTResetExpiry)
	userRepo := postgresrepo.NewUserRepository(pool)
	productRepo := postgresrepo.NewProductRepository(pool)
	orderRepo := postgresrepo.NewOrderRepository(pool)
	messageRepo := postgresrepo.NewMessageRepository(pool)
	reportRepo := postgresrepo.NewReportRepository(pool)
	cartRepo := redisrepo.NewCartRepository(redisClient, cfg.CartTTL)
	eventProducer := event.NewProducer(producer, logger)

	mailer := newMailer(cfg, logger)
	providers := newPaymentProviders(cfg, logger)

	pricing := domain.PricingPolicy{
		TaxRateBps:            cfg.TaxRateBps,
		ShippingFlatFee:       cfg.ShippingFlatFee,
		FreeShippingThreshold: cfg.FreeShippingThreshold,
	}

	uploadStore, err := local.New(cfg.UploadDir, cfg.UploadBaseURL)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("init upload storage: %w", err)
	}

	userService := service.NewUserService(userRepo, tokens, eventProducer, mailer, cfg.AdminEmail, cfg.FrontendBaseURL, logger)
	catalogService := service.NewCatalogService(productRepo, logger)
	cartService := service.NewCartService(cartRepo, productRepo, logger)
	orderService := service.NewOrderService(orderRepo, productRepo, userRepo, cartRepo, providers, pricing, eventProducer, mailer, logger)
	messageService := service.NewMessageService(messageRepo, logger)
	reportService := service.NewReportService(reportRepo, logger)

	// Health checks.
	healthHandler := health.NewHandler()
	healthHandler.RegisterCritical("postgres", func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	healthHandler.RegisterCritical("redis", func(ctx context.Context) error {
		return redisClient.Ping(ctx).Err()
	})
	// Event publishing is best-effort; a broker outage degrades rather than
	// takes the storefront out of rotation.
	healthHandler.RegisterNonCritical("kafka", func(ctx context.Context) error {
		return producer.Ping(ctx)
	})

	router := handler.NewRouter(handler.RouterDeps{
		Config:         cfg,
		Users:          userService,
		Catalog:        catalogService,
		Cart:           cartService,
		Orders:         orderService,
		Messages:       messageService,
		Reports:        reportService,
		Storage:        uploadStore,
		Tokens:         tokens,
		HealthHandler:  healthHandler,
		Logger:         logger,
		TracingEnabled: cfg.TracingEnabled,
	})

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return &App{
		cfg:            cfg,
		logger:         logger,
		pool:           pool,
		redis:          redisClient,
		producer:       producer,
		httpServer:     httpServer,
		tracerShutdown: tracerShutdown,
	}, nil
}

// newMailer picks the outbound email transport. Development installs without
// SMTP credentials get a mock mailer that only logs.
func newMailer(cfg *config.Config, logger *slog.Logger) notify.Mailer {
	if cfg.Environment == "development" && cfg.SMTPUser == "" {
		logger.Info("SMTP credentials not set, using mock mailer")
		return notifymock.NewMailer(logger)
	}
	return notify.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.SMTPFrom, logger)
}

// newPaymentProviders builds the payment adapters, one circuit-breaker HTTP
// client per provider. A provider without credentials falls back to its mock
// in development so checkout remains testable locally.
func newPaymentProviders(cfg *config.Config, logger *slog.Logger) map[string]payment.Provider {
	providers := make(map[string]payment.Provider, 2)

	if cfg.PayPalSecret == "" && cfg.Environment == "development" {
		logger.Info("PayPal credentials not set, using mock provider")
		providers[domain.PaymentMethodPayPal] = paymentmock.NewProvider(domain.PaymentMethodPayPal)
	} else {
		client := httpclient.New(httpclient.DefaultConfig())
		cbClient := httpclient.NewCircuitBreakerClient(client, httpclient.DefaultCircuitBreakerConfig("paypal"), logger)
		providers[domain.PaymentMethodPayPal] = paypal.NewClient(cbClient, cfg.PayPalAPIBase, cfg.PayPalClientID, cfg.PayPalSecret, logger)
	}

	if cfg.StripeSecretKey == "" && cfg.Environment == "development" {
		logger.Info("Stripe credentials not set, using mock provider")
		providers[domain.PaymentMethodStripe] = paymentmock.NewProvider(domain.PaymentMethodStripe)
	} else {
		client := httpclient.New(httpclient.DefaultConfig())
		cbClient := httpclient.NewCircuitBreakerClient(client, httpclient.DefaultCircuitBreakerConfig("stripe"), logger)
		providers[domain.PaymentMethodStripe] = stripe.NewClient(cbClient, cfg.StripeAPIBase, cfg.StripeSecretKey, logger)
	}

	return providers
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components in the correct order:
// 1. HTTP server (drain in-flight requests)
// 2. Tracer (flush pending spans from drained requests)
// 3. Kafka producer
// 4. Redis client
// 5. PostgreSQL pool
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error

	// 1. Drain in-flight HTTP requests (5s budget).
	httpCtx, httpCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer httpCancel()
	if err := a.httpServer.Shutdown(httpCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	// 2. Flush pending spans after HTTP drain so in-flight request spans are captured.
	if a.tracerShutdown != nil {
		tracerCtx, tracerCancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer tracerCancel()
		if err := a.tracerShutdown(tracerCtx); err != nil {
			a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	// 3. Close Kafka producer.
	if err := a.producer.Close(); err != nil {
		a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	// 4. Close Redis client.
	if err := a.redis.Close(); err != nil {
		a.logger.Error("redis close error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	// 5. Close PostgreSQL pool.
	a.pool.Close()

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}
