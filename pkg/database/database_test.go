package database

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/dealflow/pkg/config"
)

func sqliteConfig(path string) *config.Config {
	return &config.Config{
		Env: "development",
		Database: config.DatabaseConfig{
			Driver:     config.DriverSQLite,
			SQLitePath: path,
		},
	}
}

func TestOpen_SQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deals.sqlite")

	db, err := Open(context.Background(), sqliteConfig(path))
	require.NoError(t, err)
	defer db.Close()

	assert.Equal(t, config.DriverSQLite, db.Driver)
	assert.NotNil(t, db.SQL)
	assert.Nil(t, db.Pool)

	_, err = os.Stat(filepath.Dir(path))
	assert.NoError(t, err, "parent directory should be created")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	assert.NoError(t, db.Ping(ctx))
}

func TestHealthCheck_SQLite(t *testing.T) {
	db, err := Open(context.Background(), sqliteConfig(filepath.Join(t.TempDir(), "h.sqlite")))
	require.NoError(t, err)
	defer db.Close()

	status, err := db.HealthCheck(context.Background())
	require.NoError(t, err)
	assert.True(t, status.Healthy)
	assert.Equal(t, config.DriverSQLite, status.Driver)
	assert.Nil(t, status.Stats)
}

func TestOpen_UnknownDriver(t *testing.T) {
	cfg := sqliteConfig("unused")
	cfg.Database.Driver = "mysql"

	_, err := Open(context.Background(), cfg)
	assert.Error(t, err)
}

func TestPing_NotOpen(t *testing.T) {
	db := &DB{}
	assert.Error(t, db.Ping(context.Background()))
}

func TestOpen_Postgres(t *testing.T) {
	// Skip if DATABASE_URL is not set
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}

	cfg := &config.Config{
		Env: "development",
		Database: config.DatabaseConfig{
			Driver:          config.DriverPostgres,
			URL:             url,
			MaxConns:        4,
			MinConns:        1,
			MaxConnLifetime: time.Hour,
			MaxConnIdleTime: 30 * time.Minute,
		},
	}

	db, err := Open(context.Background(), cfg)
	require.NoError(t, err)
	defer db.Close()

	status, err := db.HealthCheck(context.Background())
	require.NoError(t, err)
	assert.True(t, status.Healthy)
	require.NotNil(t, status.Stats)
	assert.Equal(t, int32(4), status.Stats.MaxConns)
}
