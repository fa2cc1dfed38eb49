package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"kobo-inventory/internal/auth"
	"kobo-inventory/internal/catalog"
	"kobo-inventory/internal/config"
	"kobo-inventory/internal/database"
	"kobo-inventory/internal/handler"
	"kobo-inventory/internal/idempotency"
	"kobo-inventory/internal/mailer"
	"kobo-inventory/internal/metrics"
	"kobo-inventory/internal/middleware"
	"kobo-inventory/internal/repository"
	"kobo-inventory/internal/router"
	"kobo-inventory/internal/service"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Logger)
	logger.Info().Msg("starting inventory API server")

	// Create context for application lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database connection pool
	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	if err := database.EnsureSchema(ctx, pool, logger); err != nil {
		return fmt.Errorf("failed to prepare schema: %w", err)
	}

	// Initialize repositories
	productRepo := repository.NewProductRepository(pool, logger)
	saleRepo := repository.NewSaleRepository(pool, logger)
	reportRepo := repository.NewReportRepository(pool, logger)
	categoryRepo := repository.NewCategoryRepository(pool, logger)
	userRepo := repository.NewUserRepository(pool, logger)
	resetRepo := repository.NewPasswordResetRepository(pool, logger)

	// Idempotency guard for sales, Redis-backed when enabled
	guard, closeGuard := newGuard(ctx, cfg.Redis, logger)
	defer closeGuard()

	m := metrics.New()

	// Initialize services
	productService := service.NewProductService(productRepo, logger)
	ledgerService := service.NewLedgerService(saleRepo, productRepo, guard, m, logger)
	reportService := service.NewReportService(reportRepo, logger)
	categoryService := service.NewCategoryService(categoryRepo, logger)

	tokens := auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	authService := service.NewAuthService(service.AuthDeps{
		Users:    userRepo,
		Resets:   resetRepo,
		Hasher:   auth.NewHasher(cfg.Auth.BcryptCost),
		Tokens:   tokens,
		TOTP:     auth.NewTOTP(cfg.Auth.TOTPIssuer),
		Mailer:   mailer.New(cfg.SMTP, logger),
		ResetURL: cfg.Auth.ResetURL,
		ResetTTL: cfg.Auth.ResetTTL,
	}, logger)

	// Initialize catalogue loader with S3 and local fallback
	fileLoader := catalog.NewFileLoader(cfg.Server.ImportDir, logger)
	var s3Loader catalog.Loader
	if cfg.S3.Enabled {
		s3Loader, err = catalog.NewS3Loader(ctx, cfg.S3.Bucket, cfg.S3.Region, logger)
		if err != nil {
			logger.Warn().
				Err(err).
				Msg("failed to initialise S3 loader, falling back to local file system only")
			s3Loader = nil
		}
	} else {
		logger.Info().Msg("using local file system for catalogue files (S3 disabled)")
	}
	loader := catalog.NewFallbackLoader(s3Loader, fileLoader, cfg.S3.Prefix, cfg.S3.Enabled, logger)
	importer := catalog.NewImporter(loader, productService, logger)

	// Per-client limiter for the auth endpoints
	limiter := middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst, logger)
	go limiter.Run(ctx)

	// Initialize HTTP handlers
	handlers := router.Handlers{
		Products:   handler.NewProductHandler(productService, ledgerService, importer, logger),
		Reports:    handler.NewReportHandler(reportService, logger),
		Categories: handler.NewCategoryHandler(categoryService, logger),
		Auth: handler.NewAuthHandler(authService, handler.CookieSettings{
			Name:   cfg.Auth.CookieName,
			TTL:    cfg.Auth.TokenTTL,
			Secure: cfg.Auth.CookieSecure,
		}, logger),
	}

	// Initialize router
	mux := router.New(handlers, router.Options{
		Tokens:      tokens,
		Limiter:     limiter,
		Metrics:     m,
		CORSOrigin:  cfg.Server.CORSOrigin,
		MetricsPath: cfg.Server.MetricsPath,
	}, logger)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Channel to listen for errors from the server
	serverErrors := make(chan error, 1)

	// Start HTTP server in a goroutine
	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		// Create a context with timeout for shutdown
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		// Attempt graceful shutdown
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			// Force close
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}

// newGuard connects to Redis when enabled. An unreachable server is logged and
// the API starts with the guard still wired; claims then fail open per request.
func newGuard(ctx context.Context, cfg config.RedisConfig, logger zerolog.Logger) (idempotency.Guard, func()) {
	if !cfg.Enabled {
		logger.Info().Msg("redis disabled, idempotency keys are not enforced")
		return idempotency.Nop{}, func() {}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Warn().Err(err).Str("addr", cfg.Addr).Msg("redis not reachable at startup")
	} else {
		logger.Info().Str("addr", cfg.Addr).Msg("connected to redis")
	}

	return idempotency.NewRedisGuard(client, cfg.KeyTTL, logger), func() {
		if err := client.Close(); err != nil {
			logger.Error().Err(err).Msg("failed to close redis client")
		}
	}
}
