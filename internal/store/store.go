// Package store selects the storage backend for the configured driver.
package store

import (
	"context"
	"fmt"

	"github.com/wonny/dealflow/internal/contracts"
	"github.com/wonny/dealflow/internal/store/postgres"
	"github.com/wonny/dealflow/internal/store/sqlite"
	"github.com/wonny/dealflow/pkg/config"
	"github.com/wonny/dealflow/pkg/database"
)

// Open returns the store backed by db, creating tables on first use
func Open(ctx context.Context, db *database.DB) (contracts.Store, error) {
	switch db.Driver {
	case config.DriverPostgres:
		return postgres.New(ctx, db.Pool)
	case config.DriverSQLite:
		return sqlite.New(ctx, db.SQL)
	default:
		return nil, fmt.Errorf("unsupported database driver: %q", db.Driver)
	}
}
