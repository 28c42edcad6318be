package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DB wraps the PostgreSQL connection pool
type DB struct {
	Pool *pgxpool.Pool
}

// Config holds database configuration
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// NewDB creates a new database connection
func NewDB(cfg Config) (*DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database, cfg.SSLMode,
	)

	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("unable to parse database config: %w", err)
	}

	// Configure connection pool
	poolConfig.MaxConns = 25
	poolConfig.MinConns = 5
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	log.Printf("Successfully connected to PostgreSQL database: %s", cfg.Database)

	return &DB{Pool: pool}, nil
}

// Close closes the database connection
func (db *DB) Close() {
	if db.Pool != nil {
		db.Pool.Close()
		log.Println("Database connection closed")
	}
}

// RunMigrations executes database migrations
func (db *DB) RunMigrations(ctx context.Context) error {
	log.Println("Running database migrations...")

	migrations := []string{
		// Signal audit table, one row per terminal SignalResult
		`CREATE TABLE IF NOT EXISTS signals (
			id UUID PRIMARY KEY,
			symbol VARCHAR(20) NOT NULL,
			outcome VARCHAR(10) NOT NULL,
			direction VARCHAR(8),
			quality VARCHAR(10),
			trade_score DECIMAL(6, 2),
			confidence DECIMAL(6, 4),
			recommended_stake DECIMAL(20, 8),
			setup_tag VARCHAR(120),
			rejection_code VARCHAR(40),
			rejection_reason TEXT,
			fallback_used BOOLEAN NOT NULL DEFAULT FALSE,
			trade_outcome VARCHAR(10) NOT NULL DEFAULT 'PENDING',
			pnl DECIMAL(20, 8),
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_signals_symbol ON signals(symbol)`,
		`CREATE INDEX IF NOT EXISTS idx_signals_created_at ON signals(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_signals_trade_outcome ON signals(trade_outcome)`,

		// Optimizer run history for staleness auditing
		`CREATE TABLE IF NOT EXISTS optimizer_runs (
			id SERIAL PRIMARY KEY,
			evaluated INTEGER NOT NULL,
			parameters JSONB NOT NULL,
			scores JSONB NOT NULL,
			run_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_optimizer_runs_run_at ON optimizer_runs(run_at)`,

		// Operator accounts for the API
		`CREATE TABLE IF NOT EXISTS operators (
			id SERIAL PRIMARY KEY,
			username VARCHAR(64) UNIQUE NOT NULL,
			password_hash VARCHAR(100) NOT NULL,
			role VARCHAR(20) NOT NULL DEFAULT 'operator',
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
	}

	for i, migration := range migrations {
		if _, err := db.Pool.Exec(ctx, migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	log.Println("Database migrations completed")
	return nil
}
