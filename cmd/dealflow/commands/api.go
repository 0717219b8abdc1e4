package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/dealflow/internal/api"
	"github.com/wonny/dealflow/internal/api/handlers"
	"github.com/wonny/dealflow/internal/dates"
	"github.com/wonny/dealflow/internal/deals"
	"github.com/wonny/dealflow/internal/seed"
	"github.com/wonny/dealflow/pkg/metrics"
	"github.com/wonny/dealflow/pkg/redis"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "API 서버 시작",
	Long: `Starts the REST API server.

Endpoints:
  GET   /health                         - Health check
  GET   /metrics                        - Prometheus metrics
  POST  /api/deals                      - Ingest one deal (object) or a batch (array)
  GET   /api/deals                      - Stage analytics
  GET   /api/deals/metrics              - KPI cards
  GET   /api/deals/funnel               - Pipeline funnel
  GET   /api/deals/list                 - Search and sort (?q=&sort=&dir=)
  GET   /api/deals/export               - Excel export
  GET   /api/deals/schema               - Validation rules
  PATCH /api/deals/{dealID}/sales-rep   - Reassign a deal
  GET   /api/audit-logs                 - Audit trail
  GET   /api/analytics/snapshots        - Daily snapshots
  POST  /api/seed                       - Replace all deals with the sample pipeline

Example:
  go run ./cmd/dealflow api
  go run ./cmd/dealflow api --port 3000`,
	RunE: runAPIServer,
}

var (
	apiPort string
)

func init() {
	rootCmd.AddCommand(apiCmd)

	// Flags
	apiCmd.Flags().StringVar(&apiPort, "port", "", "API 서버 포트 (default: $PORT)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. Config, logger, database, store
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if apiPort != "" {
		a.cfg.Port = apiPort
	}
	log := a.log

	// 2. Redis (optional, rate limiting)
	rdb, err := redis.New(ctx, a.cfg)
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	defer rdb.Close()

	// 3. Domain services
	parser := dates.Parser{MonthFirst: a.cfg.Ingest.PreferMonthFirst}
	validator := deals.NewValidator(a.cfg.Ingest.PreferMonthFirst)
	pipeline := deals.NewPipeline(a.store, validator, log, a.metrics)
	reassigner := deals.NewReassigner(a.store)
	seeder := seed.NewSeeder(a.store, log)

	// 4. Handlers
	health := handlers.NewHealthHandler("dealflow-api", map[string]handlers.Pinger{
		"database": a.store,
		"redis":    rdb,
	})
	h := api.Handlers{
		Deals:  handlers.NewDealHandler(pipeline, reassigner, a.store, parser, log),
		Admin:  handlers.NewAdminHandler(a.store, seeder, nil, log),
		Health: health,
	}

	// 5. Router
	var m *metrics.Metrics
	if a.cfg.MetricsEnabled {
		m = a.metrics
	}
	router := api.NewRouter(h, api.RouterOptions{
		Metrics:           m,
		Limiter:           api.NewLimiter(rdb, a.cfg.Ingest.RateLimitPerMinute, a.cfg.Ingest.RateLimitBurst),
		TrustProxyHeaders: a.cfg.Ingest.TrustProxyHeaders,
	}, log)

	// 6. Server with graceful shutdown
	server := api.New(a.cfg, log, router)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	out := cmd.OutOrStdout()
	PrintSuccess(out, fmt.Sprintf("Server running on http://localhost:%s", a.cfg.Port))
	fmt.Fprintln(out, "Press Ctrl+C to stop")

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}
