package commands

import (
	"context"
	"fmt"

	"github.com/wonny/dealflow/internal/audit"
	"github.com/wonny/dealflow/internal/contracts"
	"github.com/wonny/dealflow/internal/store"
	"github.com/wonny/dealflow/pkg/config"
	"github.com/wonny/dealflow/pkg/database"
	"github.com/wonny/dealflow/pkg/logger"
	"github.com/wonny/dealflow/pkg/metrics"
)

// app holds the process-wide dependencies shared by commands
type app struct {
	cfg     *config.Config
	log     *logger.Logger
	db      *database.DB
	store   contracts.Store
	metrics *metrics.Metrics
}

// loadConfig reads configuration and applies global flags
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	return cfg, nil
}

// newApp opens storage once for the process and registers the audit hook.
// Callers must Close it.
func newApp(ctx context.Context) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	log := logger.New(cfg)

	db, err := database.Open(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	st, err := store.Open(ctx, db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("open store: %w", err)
	}

	m := metrics.New()
	st.AddHook(audit.NewHook(st, log, m))

	log.WithField("driver", db.Driver).Info("Connected to database")

	return &app{
		cfg:     cfg,
		log:     log,
		db:      db,
		store:   st,
		metrics: m,
	}, nil
}

// Close releases the database handle
func (a *app) Close() {
	a.db.Close()
}
