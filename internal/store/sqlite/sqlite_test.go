package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wonny/dealflow/internal/contracts"
	"github.com/wonny/dealflow/internal/store/storetest"
	"github.com/wonny/dealflow/pkg/config"
	"github.com/wonny/dealflow/pkg/database"
)

func newTestStore(t *testing.T) contracts.Store {
	t.Helper()

	cfg := &config.Config{
		Database: config.DatabaseConfig{
			Driver:     config.DriverSQLite,
			SQLitePath: filepath.Join(t.TempDir(), "deals.sqlite"),
		},
	}
	db, err := database.Open(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(db.Close)

	s, err := New(context.Background(), db.SQL)
	require.NoError(t, err)
	return s
}

func TestStore(t *testing.T) {
	storetest.Run(t, newTestStore)
}

func TestNew_MigrateIsIdempotent(t *testing.T) {
	cfg := &config.Config{
		Database: config.DatabaseConfig{
			Driver:     config.DriverSQLite,
			SQLitePath: filepath.Join(t.TempDir(), "deals.sqlite"),
		},
	}
	db, err := database.Open(context.Background(), cfg)
	require.NoError(t, err)
	defer db.Close()

	_, err = New(context.Background(), db.SQL)
	require.NoError(t, err)
	_, err = New(context.Background(), db.SQL)
	require.NoError(t, err)
}

func TestNew_NilDB(t *testing.T) {
	_, err := New(context.Background(), nil)
	require.Error(t, err)
}
