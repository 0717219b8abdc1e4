package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/dealflow/pkg/config"
)

// DB is the process-wide storage handle. Exactly one of Pool or SQL is set,
// depending on Driver.
// ⭐ SSOT: DB 연결은 이 패키지에서만 생성
type DB struct {
	Driver string
	Pool   *pgxpool.Pool
	SQL    *sql.DB
}

// Open connects to the configured storage backend.
// Call it once per process and Close it on shutdown.
func Open(ctx context.Context, cfg *config.Config) (*DB, error) {
	switch cfg.Database.Driver {
	case config.DriverPostgres:
		pool, err := newPostgres(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		return &DB{Driver: config.DriverPostgres, Pool: pool}, nil
	case config.DriverSQLite:
		db, err := openSQLite(ctx, cfg.Database.SQLitePath)
		if err != nil {
			return nil, err
		}
		return &DB{Driver: config.DriverSQLite, SQL: db}, nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %q", cfg.Database.Driver)
	}
}

// Close releases the underlying connections
func (db *DB) Close() {
	if db.Pool != nil {
		db.Pool.Close()
	}
	if db.SQL != nil {
		_ = db.SQL.Close()
	}
}

// Ping checks if the database is accessible
func (db *DB) Ping(ctx context.Context) error {
	if db.Pool != nil {
		return db.Pool.Ping(ctx)
	}
	if db.SQL != nil {
		return db.SQL.PingContext(ctx)
	}
	return fmt.Errorf("database not open")
}

// HealthStatus represents the health status of the database
type HealthStatus struct {
	Healthy      bool          `json:"healthy"`
	Driver       string        `json:"driver"`
	Timestamp    time.Time     `json:"timestamp"`
	ResponseTime time.Duration `json:"response_time"`
	Error        string        `json:"error,omitempty"`
	Stats        *PoolStats    `json:"stats,omitempty"`
}

// HealthCheck returns detailed health information about the database
func (db *DB) HealthCheck(ctx context.Context) (*HealthStatus, error) {
	status := &HealthStatus{
		Driver:    db.Driver,
		Timestamp: time.Now(),
	}

	start := time.Now()
	if err := db.Ping(ctx); err != nil {
		status.Error = err.Error()
		return status, err
	}
	status.ResponseTime = time.Since(start)

	if db.Pool != nil {
		stats := poolStats(db.Pool)
		status.Stats = &stats
	}

	status.Healthy = true
	return status, nil
}
