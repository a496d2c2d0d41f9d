// Package app wires together all dependencies and runs the storefront server.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/Dheeraj-pilakkat/BrewHaven/internal/auth"
	"github.com/Dheeraj-pilakkat/BrewHaven/internal/config"
	"github.com/Dheeraj-pilakkat/BrewHaven/internal/event"
	handler "github.com/Dheeraj-pilakkat/BrewHaven/internal/handler/http"
	postgresrepo "github.com/Dheeraj-pilakkat/BrewHaven/internal/repository/postgres"
	redisrepo "github.com/Dheeraj-pilakkat/BrewHaven/internal/repository/redis"
	"github.com/Dheeraj-pilakkat/BrewHaven/internal/service"
	"github.com/Dheeraj-pilakkat/BrewHaven/internal/settlement"
	"github.com/Dheeraj-pilakkat/BrewHaven/pkg/database"
	"github.com/Dheeraj-pilakkat/BrewHaven/pkg/health"
	"github.com/Dheeraj-pilakkat/BrewHaven/pkg/httpclient"
	pkgkafka "github.com/Dheeraj-pilakkat/BrewHaven/pkg/kafka"
	"github.com/Dheeraj-pilakkat/BrewHaven/pkg/tracing"
)

// App holds the assembled dependency graph and the HTTP server.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	pool           *pgxpool.Pool
	rdb            *redis.Client
	producer       *pkgkafka.Producer
	httpServer     *http.Server
	shutdownTracer func(context.Context) error
}

// NewApp initializes every dependency, runs pending database migrations, and
// builds the HTTP server. It does not start listening; call Run for that.
func NewApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	initCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	shutdownTracer, err := tracing.Init(initCtx, tracing.Config{
		ServiceName:  "brewhaven-storefront",
		Environment:  cfg.Environment,
		OTLPEndpoint: cfg.OTELEndpoint,
		SampleRate:   cfg.OTELSampleRate,
		Enabled:      cfg.OTELEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}

	pgCfg := database.PostgresConfig{
		Host:            cfg.PostgresHost,
		Port:            cfg.PostgresPort,
		User:            cfg.PostgresUser,
		Password:        cfg.PostgresPass,
		DBName:          cfg.PostgresDB,
		SSLMode:         cfg.PostgresSSL,
		MaxConns:        cfg.DBMaxConns,
		MinConns:        cfg.DBMinConns,
		MaxConnLifetime: time.Duration(cfg.DBMaxConnLifetimeMins) * time.Minute,
		MaxConnIdleTime: time.Duration(cfg.DBMaxConnIdleTimeMins) * time.Minute,
	}
	pool, err := database.NewPostgresPool(initCtx, &pgCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	logger.Info("connected to PostgreSQL",
		slog.String("host", cfg.PostgresHost),
		slog.String("database", cfg.PostgresDB),
	)

	if err := database.RunMigrations(initCtx, pool, postgresrepo.Migrations, postgresrepo.MigrationsDir, logger); err != nil {
		pool.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	rdb, err := database.NewRedisClient(initCtx, database.RedisConfig{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	logger.Info("connected to Redis", slog.String("addr", cfg.RedisAddr))

	producer := pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
	logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))

	// Repositories.
	cartRepo := redisrepo.NewCartRepository(rdb, cfg.CartTTL())
	checkoutRepo := redisrepo.NewCheckoutRepository(rdb)
	catalogRepo := postgresrepo.NewCatalogRepository(pool)
	orderRepo := postgresrepo.NewOrderRepository(pool)
	userRepo := postgresrepo.NewUserRepository(pool)

	// Services.
	eventProducer := event.NewProducer(producer, logger)
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL())
	gateway := newSettlementGateway(cfg, logger)

	cartService := service.NewCartService(cartRepo, catalogRepo, eventProducer, logger, cfg.CartTTL(), cfg.DefaultCurrency)
	checkoutService := service.NewCheckoutService(
		checkoutRepo, cartRepo, orderRepo, gateway, eventProducer, logger,
		cfg.CheckoutTTL(), cfg.ShippingCents, cfg.DefaultCurrency,
	)
	catalogService := service.NewCatalogService(catalogRepo, logger)
	orderService := service.NewOrderService(orderRepo, logger)
	authService := service.NewAuthService(userRepo, jwtManager, logger, cfg.LoginDelay(), cfg.BcryptCost)

	// Health checks.
	healthHandler := health.NewHandler()
	healthHandler.Register("postgres", func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	healthHandler.Register("redis", func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	})
	healthHandler.Register("kafka", producer.Ping)

	router := handler.NewRouter(handler.RouterConfig{
		Cart:     handler.NewCartHandler(cartService, logger),
		Checkout: handler.NewCheckoutHandler(checkoutService, logger),
		Catalog:  handler.NewCatalogHandler(catalogService, logger),
		Auth:     handler.NewAuthHandler(authService, logger),
		Orders:   handler.NewOrderHandler(orderService, logger),
		JWT:      jwtManager,
		Health:   healthHandler,
		Logger:   logger,
	})

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &App{
		cfg:            cfg,
		logger:         logger,
		pool:           pool,
		rdb:            rdb,
		producer:       producer,
		httpServer:     httpServer,
		shutdownTracer: shutdownTracer,
	}, nil
}

// newSettlementGateway picks the HTTP gateway when an external URL is
// configured, otherwise the simulated one.
func newSettlementGateway(cfg *config.Config, logger *slog.Logger) settlement.Gateway {
	if cfg.SettlementGatewayURL == "" {
		return settlement.NewSimulatedGateway(cfg.SettlementDelay(), logger)
	}

	client := httpclient.New(httpclient.DefaultConfig())
	breakerCfg := httpclient.BreakerConfig{
		Name:         "settlement-gateway",
		MaxRequests:  cfg.CBMaxRequests,
		Interval:     time.Duration(cfg.CBInterval) * time.Second,
		Timeout:      time.Duration(cfg.CBTimeout) * time.Second,
		FailureRatio: cfg.CBFailureRatio,
		MinRequests:  cfg.CBMinRequests,
	}
	breaker := httpclient.NewBreakerClient(client, breakerCfg, logger)
	return settlement.NewHTTPGateway(cfg.SettlementGatewayURL, breaker, logger)
}

// Run starts the HTTP server and blocks until the context is canceled or the
// server fails.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server", slog.String("addr", a.httpServer.Addr))
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

// Shutdown gracefully stops the server and closes every client.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
	}

	if err := a.producer.Close(); err != nil {
		a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
	}

	if err := a.rdb.Close(); err != nil {
		a.logger.Error("redis close error", slog.String("error", err.Error()))
	}

	a.pool.Close()

	if err := a.shutdownTracer(shutdownCtx); err != nil {
		a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
	}

	a.logger.Info("application shutdown complete")
	return nil
}
