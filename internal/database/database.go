// File: internal/database/database.go
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/exaring/otelpgx"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	MaxConns          int32
	MinConns          int32
	MaxConnLifetime   time.Duration
	MaxConnIdleTime   time.Duration
	HealthCheckPeriod time.Duration
}

// DefaultDatabaseConfig sizes the pool for the audit store, which sees one
// short insert per admin write.
func DefaultDatabaseConfig() *DatabaseConfig {
	return &DatabaseConfig{
		MaxConns:          10,
		MinConns:          1,
		MaxConnLifetime:   time.Hour,
		MaxConnIdleTime:   time.Minute * 30,
		HealthCheckPeriod: time.Minute * 5,
	}
}

// ConnectDB creates an optimized database connection pool
func ConnectDB(dsn string) (*pgxpool.Pool, error) {
	return ConnectDBWithConfig(dsn, DefaultDatabaseConfig())
}

// ConnectDBWithConfig creates a database connection pool with custom configuration
func ConnectDBWithConfig(dsn string, dbConfig *DatabaseConfig) (*pgxpool.Pool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Parse the DSN
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database DSN: %w", err)
	}
	config.ConnConfig.Tracer = otelpgx.NewTracer()

	// Apply production-ready pool settings
	config.MaxConns = dbConfig.MaxConns
	config.MinConns = dbConfig.MinConns
	config.MaxConnLifetime = dbConfig.MaxConnLifetime
	config.MaxConnIdleTime = dbConfig.MaxConnIdleTime
	config.HealthCheckPeriod = dbConfig.HealthCheckPeriod

	// Set up connection hooks for monitoring and initialization
	config.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		// Set up any per-connection configuration
		_, err := conn.Exec(ctx, "SET application_name = 'uniadmin-console'")
		if err != nil {
			log.Warn().Err(err).Msg("Failed to set application name")
		}

		// Set timezone
		_, err = conn.Exec(ctx, "SET timezone = 'UTC'")
		if err != nil {
			log.Warn().Err(err).Msg("Failed to set timezone")
		}

		log.Debug().Msg("Database connection established")
		return nil
	}

	// Create the connection pool
	dbpool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}

	// Test the connection
	if err = dbpool.Ping(ctx); err != nil {
		dbpool.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}

	log.Info().
		Int32("max_conns", config.MaxConns).
		Int32("min_conns", config.MinConns).
		Dur("max_conn_lifetime", config.MaxConnLifetime).
		Dur("max_conn_idle_time", config.MaxConnIdleTime).
		Msg("Database connection pool established")

	return dbpool, nil
}

// InitializeSchema creates the audit tables
func InitializeSchema(db *pgxpool.Pool) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if _, err := db.Exec(ctx, "CREATE SCHEMA IF NOT EXISTS admin;"); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	createAuditTable := `
	CREATE TABLE IF NOT EXISTS admin.audit_log (
		id UUID PRIMARY KEY,
		actor VARCHAR(100) NOT NULL,
		action VARCHAR(64) NOT NULL,
		target VARCHAR(255) NOT NULL,
		details JSONB NOT NULL DEFAULT '{}'::jsonb,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);`

	if _, err := db.Exec(ctx, createAuditTable); err != nil {
		return fmt.Errorf("failed to create audit_log table: %w", err)
	}

	auditIndexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_audit_log_created_at ON admin.audit_log(created_at DESC);",
		"CREATE INDEX IF NOT EXISTS idx_audit_log_actor ON admin.audit_log(actor);",
	}
	for _, indexSQL := range auditIndexes {
		if _, err := db.Exec(ctx, indexSQL); err != nil {
			log.Warn().Err(err).Str("sql", indexSQL).Msg("Failed to create audit index")
		}
	}

	log.Info().Msg("Database schema initialized successfully")
	return nil
}

// StartConnectionMonitoring logs pool statistics every interval until ctx is done.
func StartConnectionMonitoring(ctx context.Context, db *pgxpool.Pool, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}

			stats := db.Stat()
			log.Debug().
				Int32("total_conns", stats.TotalConns()).
				Int32("acquired_conns", stats.AcquiredConns()).
				Int32("idle_conns", stats.IdleConns()).
				Int32("max_conns", stats.MaxConns()).
				Dur("acquire_duration", stats.AcquireDuration()).
				Int64("canceled_acquire_count", stats.CanceledAcquireCount()).
				Msg("Audit store pool statistics")
		}
	}()
}

// HealthCheck pings the pool and runs a read against the audit table.
func HealthCheck(ctx context.Context, db *pgxpool.Pool) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := db.Ping(ctx); err != nil {
		return fmt.Errorf("ping failed: %w", err)
	}

	var exists bool
	err := db.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM admin.audit_log LIMIT 1)").Scan(&exists)
	if err != nil {
		return fmt.Errorf("audit table query failed: %w", err)
	}

	return nil
}

// GetConnectionStats returns current connection pool statistics
func GetConnectionStats(db *pgxpool.Pool) map[string]interface{} {
	stats := db.Stat()

	return map[string]interface{}{
		"total_connections":      stats.TotalConns(),
		"acquired_connections":   stats.AcquiredConns(),
		"idle_connections":       stats.IdleConns(),
		"max_connections":        stats.MaxConns(),
		"acquire_count":          stats.AcquireCount(),
		"acquire_duration_ms":    stats.AcquireDuration().Milliseconds(),
		"canceled_acquire_count": stats.CanceledAcquireCount(),
		"empty_acquire_count":    stats.EmptyAcquireCount(),
	}
}
