package db

import (
	"context"
	"fmt"
	"time"

	pgxzero "github.com/jackc/pgx-zerolog"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/tracelog"
	"github.com/rs/zerolog"
	"github.com/yigit/schooldir/internal/config"
	"github.com/yigit/schooldir/internal/pkg/helpers"
)

// PingTimeout bounds the startup and health-check pings.
const PingTimeout = 5 * time.Second

// PostgresDB owns the process-wide connection pool. It is created once at
// startup, handed to repositories and closed on shutdown.
type PostgresDB struct {
	Pool *pgxpool.Pool
	log  zerolog.Logger
}

// PoolConfig builds the pgxpool configuration from the app config. Callers
// that find the pool saturated wait in Acquire until a connection frees up or
// their context ends.
func PoolConfig(cfg *config.Config, lgr zerolog.Logger) (*pgxpool.Config, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.GetPostgresConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to parse pgxpool config: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.Database.MaxOpenConns)
	poolConfig.MinConns = int32(cfg.Database.MaxIdleConns)
	poolConfig.MaxConnLifetime = helpers.ParseDuration(cfg.Database.ConnMaxLifetime, time.Hour)

	// SQL tracing is noisy, only enable it when debugging.
	if max(lgr.GetLevel(), zerolog.GlobalLevel()) <= zerolog.DebugLevel {
		poolConfig.ConnConfig.Tracer = &tracelog.TraceLog{
			Logger:   pgxzero.NewLogger(lgr.With().Str("component", "pgx").Logger()),
			LogLevel: tracelog.LogLevelDebug,
		}
	}

	return poolConfig, nil
}

// NewPostgresDB creates the pool and verifies connectivity.
func NewPostgresDB(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (*PostgresDB, error) {
	poolConfig, err := PoolConfig(cfg, lgr)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create database connection pool: %w", err)
	}

	database := &PostgresDB{Pool: pool, log: lgr}
	if err := database.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to establish database connection: %w", err)
	}

	lgr.Info().
		Str("host", cfg.Database.Host).
		Str("database", cfg.Database.DBName).
		Int32("max_conns", poolConfig.MaxConns).
		Msg("Database connection pool ready")
	return database, nil
}

// Ping checks that a pooled connection can reach the server.
func (db *PostgresDB) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, PingTimeout)
	defer cancel()
	return db.Pool.Ping(ctx)
}

// Stats summarizes pool usage for the health endpoint.
func (db *PostgresDB) Stats() map[string]int32 {
	s := db.Pool.Stat()
	return map[string]int32{
		"total_conns":    s.TotalConns(),
		"acquired_conns": s.AcquiredConns(),
		"idle_conns":     s.IdleConns(),
		"max_conns":      s.MaxConns(),
	}
}

// Close closes the pool.
func (db *PostgresDB) Close() {
	if db.Pool != nil {
		db.log.Info().Msg("Closing database connection pool")
		db.Pool.Close()
	}
}
