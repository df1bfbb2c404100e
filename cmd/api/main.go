// File: cmd/api/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"syscall"
	"time"

	"uniadmin-console/internal/backend"
	"uniadmin-console/internal/config"
	"uniadmin-console/internal/database"
	"uniadmin-console/internal/router"
	"uniadmin-console/internal/telemetry"

	"github.com/go-redis/redis/extra/redisotel/v8"
	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	// Version information (set during build)
	version   = "1.2.0"
	buildTime = "unknown"
	gitCommit = "unknown"
)

// @title           University Admin Console API
// @version         1.2.0
// @description     Backend-for-frontend for the university job-vacancy admin console.

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /
// @schemes   http https

// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
func main() {
	// Initialize logger first
	logger := initLogger()

	// Log startup information
	logger.Info().
		Str("version", version).
		Str("build_time", buildTime).
		Str("git_commit", gitCommit).
		Str("go_version", runtime.Version()).
		Str("os", runtime.GOOS).
		Str("arch", runtime.GOARCH).
		Msg("Starting admin console API")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("Configuration validation failed")
	}

	// Production readiness checks
	if cfg.IsProduction() && cfg.JWTSecret == "" {
		logger.Warn().Msg("JWT_SECRET is not set; backend tokens are decoded without signature verification")
	}

	// Log format and level
	if cfg.IsDevelopment() {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || cfg.LogLevel == "" {
		level = zerolog.InfoLevel
		if cfg.IsDevelopment() {
			level = zerolog.DebugLevel
		}
	}
	zerolog.SetGlobalLevel(level)

	// Audit store connection with retry logic
	var db *pgxpool.Pool
	for attempts := 0; attempts < 5; attempts++ {
		dbConfig := &database.DatabaseConfig{
			MaxConns:          getEnvInt("DB_MAX_CONNS", 10),
			MinConns:          getEnvInt("DB_MIN_CONNS", 2),
			MaxConnLifetime:   time.Duration(getEnvInt("DB_MAX_CONN_LIFETIME_MINUTES", 60)) * time.Minute,
			MaxConnIdleTime:   time.Duration(getEnvInt("DB_MAX_CONN_IDLE_MINUTES", 30)) * time.Minute,
			HealthCheckPeriod: time.Duration(getEnvInt("DB_HEALTH_CHECK_MINUTES", 5)) * time.Minute,
		}

		db, err = database.ConnectDBWithConfig(cfg.DatabaseURL, dbConfig)
		if err != nil {
			logger.Warn().
				Err(err).
				Int("attempt", attempts+1).
				Msg("Database connection failed, retrying...")

			if attempts < 4 {
				time.Sleep(time.Duration(attempts+1) * 2 * time.Second)
				continue
			}
			logger.Fatal().Err(err).Msg("Database connection failed after all retries")
		}
		break
	}
	defer db.Close()

	// Initialize OpenTelemetry Tracer
	tp, err := telemetry.InitTracerProvider(context.Background(), cfg.OTelEndpoint, cfg.ServiceName, version)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize TracerProvider")
	}
	logger.Info().Str("endpoint", cfg.OTelEndpoint).Msg("OpenTelemetry TracerProvider initialized")

	// Application Context
	app := &config.Application{
		Config: cfg,
		Logger: logger,
		DB:     db,
		Backend: backend.New(backend.Options{
			BaseURL: cfg.BackendAPIURL,
			Timeout: cfg.GetBackendTimeout(),
			Logger:  logger.With().Str("component", "backend").Logger(),
		}),
		TracerProvider: tp,
	}
	logger.Info().Str("backend_url", cfg.BackendAPIURL).Msg("Backend API client initialized")

	// Initialize database schema
	if err := database.InitializeSchema(db); err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize database schema")
	}

	// Start database connection monitoring
	monitorCtx, stopMonitor := context.WithCancel(context.Background())
	defer stopMonitor()
	database.StartConnectionMonitoring(monitorCtx, db, 30*time.Second)

	// Redis backs the rate limiter; without it limiting is per process
	app.Redis = connectRedis(cfg, logger)

	// Server Setup with production-ready timeouts
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router.Setup(app),
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      cfg.GetRequestTimeout() + 5*time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		logger.Info().
			Int("port", cfg.Port).
			Str("env", cfg.App_Env).
			Msg("Starting HTTP server")

		serverErrors <- srv.ListenAndServe()
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("Server failed to start")
		}
	case sig := <-quit:
		logger.Info().
			Str("signal", sig.String()).
			Msg("Received shutdown signal, starting graceful shutdown...")

		stopMonitor()
		gracefulShutdown(srv, app, logger)
	}

	logger.Info().Msg("Server stopped gracefully")
}

// initLogger initializes the global logger
func initLogger() zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	logger := log.With().
		Timestamp().
		Caller().
		Logger()

	return logger
}

// connectRedis returns nil when Redis stays unreachable after retries.
func connectRedis(cfg config.Config, logger zerolog.Logger) *redis.Client {
	redisAddr := fmt.Sprintf("%s:%d", cfg.RedisHost, cfg.RedisPort)
	for attempts := 0; attempts < 5; attempts++ {
		client := redis.NewClient(&redis.Options{
			Addr:         redisAddr,
			Password:     cfg.RedisPassword,
			DB:           0,
			MaxRetries:   3,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
			PoolSize:     10,
			MinIdleConns: 2,
		})
		client.AddHook(redisotel.NewTracingHook())

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_, err := client.Ping(ctx).Result()
		cancel()

		if err == nil {
			logger.Info().Str("addr", redisAddr).Msg("Redis client initialized")
			return client
		}

		client.Close()
		logger.Warn().
			Err(err).
			Int("attempt", attempts+1).
			Msg("Redis connection failed, retrying...")
		time.Sleep(time.Duration(attempts+1) * time.Second)
	}

	logger.Warn().Str("addr", redisAddr).Msg("Redis unavailable, falling back to in-memory rate limiting")
	return nil
}

// gracefulShutdown handles the graceful shutdown process
func gracefulShutdown(srv *http.Server, app *config.Application, logger zerolog.Logger) {
	// Create shutdown context with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Disable keep-alives to force existing connections to close
	srv.SetKeepAlivesEnabled(false)

	logger.Info().Msg("Shutting down HTTP server...")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("HTTP server shutdown error")
	} else {
		logger.Info().Msg("HTTP server shutdown complete")
	}

	// Shutdown OpenTelemetry TracerProvider
	logger.Info().Msg("Shutting down OpenTelemetry TracerProvider...")
	if err := app.TracerProvider.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("TracerProvider shutdown error")
	} else {
		logger.Info().Msg("TracerProvider shutdown complete")
	}

	// Close database connections
	logger.Info().Msg("Closing database connections...")
	app.DB.Close()
	logger.Info().Msg("Database connections closed")

	// Close Redis connections
	if app.Redis != nil {
		logger.Info().Msg("Closing Redis connections...")
		if err := app.Redis.Close(); err != nil {
			logger.Error().Err(err).Msg("Redis shutdown error")
		} else {
			logger.Info().Msg("Redis connections closed")
		}
	}

	logger.Info().Msg("Graceful shutdown completed")
}

// getEnvInt gets an environment variable as int with default fallback
func getEnvInt(key string, defaultValue int) int32 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return int32(intValue)
		}
	}
	return int32(defaultValue)
}
