package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/dealflow/internal/contracts"
)

const dealColumns = `id, deal_id, company_name, contact_name, transportation_mode, stage,
	value, probability, created_date, updated_date, expected_close_date,
	sales_rep, origin_city, destination_city, cargo_type`

// Store handles deal data persistence on PostgreSQL
// ⭐ SSOT: PostgreSQL 저장소 구현
type Store struct {
	pool *pgxpool.Pool

	mu    sync.RWMutex
	hooks contracts.MutationHooks
}

// New creates a store on the pool and creates the tables if needed
func New(ctx context.Context, pool *pgxpool.Pool) (*Store, error) {
	if pool == nil {
		return nil, fmt.Errorf("postgres: pool is required")
	}

	store := &Store{pool: pool}
	if err := store.migrate(ctx); err != nil {
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}

	return store, nil
}

// AddHook registers a hook run after every successful Update
func (s *Store) AddHook(hook contracts.MutationHook) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hooks = append(s.hooks, hook)
}

// Ping checks the database is reachable
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Insert creates and saves a new deal, filling deal.ID
func (s *Store) Insert(ctx context.Context, deal *contracts.Deal) error {
	query := `
		INSERT INTO deals (
			deal_id, company_name, contact_name, transportation_mode, stage,
			value, probability, created_date, updated_date, expected_close_date,
			sales_rep, origin_city, destination_city, cargo_type
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id
	`

	err := s.pool.QueryRow(ctx, query,
		deal.DealID, deal.CompanyName, deal.ContactName, string(deal.TransportationMode), string(deal.Stage),
		deal.Value, deal.Probability, deal.CreatedDate, deal.UpdatedDate, deal.ExpectedCloseDate,
		deal.SalesRep, deal.OriginCity, deal.DestinationCity, deal.CargoType,
	).Scan(&deal.ID)
	if err != nil {
		return fmt.Errorf("failed to insert deal %s: %w", deal.DealID, err)
	}

	return nil
}

// Update saves an existing deal matched by ID, then runs the mutation hooks
func (s *Store) Update(ctx context.Context, deal *contracts.Deal) error {
	row := s.pool.QueryRow(ctx, `SELECT `+dealColumns+` FROM deals WHERE id = $1`, deal.ID)
	before, err := scanDeal(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("deal %d: %w", deal.ID, contracts.ErrNotFound)
	}
	if err != nil {
		return err
	}

	query := `
		UPDATE deals SET
			deal_id = $1, company_name = $2, contact_name = $3, transportation_mode = $4, stage = $5,
			value = $6, probability = $7, created_date = $8, updated_date = $9, expected_close_date = $10,
			sales_rep = $11, origin_city = $12, destination_city = $13, cargo_type = $14
		WHERE id = $15
	`

	_, err = s.pool.Exec(ctx, query,
		deal.DealID, deal.CompanyName, deal.ContactName, string(deal.TransportationMode), string(deal.Stage),
		deal.Value, deal.Probability, deal.CreatedDate, deal.UpdatedDate, deal.ExpectedCloseDate,
		deal.SalesRep, deal.OriginCity, deal.DestinationCity, deal.CargoType,
		deal.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update deal %s: %w", deal.DealID, err)
	}

	s.mu.RLock()
	hooks := s.hooks
	s.mu.RUnlock()
	hooks.AfterUpdate(ctx, *before, *deal)

	return nil
}

// FindAll returns every stored deal in insertion order
func (s *Store) FindAll(ctx context.Context) ([]contracts.Deal, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+dealColumns+` FROM deals ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query deals: %w", err)
	}
	defer rows.Close()

	deals := make([]contracts.Deal, 0)
	for rows.Next() {
		deal, err := scanDeal(rows)
		if err != nil {
			return nil, err
		}
		deals = append(deals, *deal)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate deals: %w", err)
	}

	return deals, nil
}

// FindByDealID returns nil, nil when no deal has the identifier
func (s *Store) FindByDealID(ctx context.Context, dealID string) (*contracts.Deal, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+dealColumns+` FROM deals WHERE deal_id = $1 ORDER BY id LIMIT 1`, dealID)

	deal, err := scanDeal(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return deal, nil
}

// Clear removes all deals
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM deals`); err != nil {
		return fmt.Errorf("failed to clear deals: %w", err)
	}
	return nil
}

// InsertAuditLog writes one audit row, filling ID and CreatedAt
func (s *Store) InsertAuditLog(ctx context.Context, entry *contracts.AuditLog) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO audit_logs (table_name, column_name, previous_value, new_value, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	err := s.pool.QueryRow(ctx, query,
		entry.TableName, entry.ColumnName, entry.PreviousValue, entry.NewValue, entry.CreatedAt,
	).Scan(&entry.ID)
	if err != nil {
		return fmt.Errorf("failed to insert audit log: %w", err)
	}

	return nil
}

// ListAuditLogs returns the newest audit rows first
func (s *Store) ListAuditLogs(ctx context.Context, limit int) ([]contracts.AuditLog, error) {
	query := `
		SELECT id, table_name, column_name, previous_value, new_value, created_at
		FROM audit_logs
		ORDER BY id DESC
		LIMIT $1
	`

	rows, err := s.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit logs: %w", err)
	}
	defer rows.Close()

	logs := make([]contracts.AuditLog, 0)
	for rows.Next() {
		var entry contracts.AuditLog
		if err := rows.Scan(&entry.ID, &entry.TableName, &entry.ColumnName,
			&entry.PreviousValue, &entry.NewValue, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan audit log: %w", err)
		}
		logs = append(logs, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate audit logs: %w", err)
	}

	return logs, nil
}

// SaveSnapshot upserts the snapshot for its date
func (s *Store) SaveSnapshot(ctx context.Context, snapshot *contracts.PipelineSnapshot) error {
	stageCounts, err := json.Marshal(snapshot.StageCounts)
	if err != nil {
		return fmt.Errorf("failed to marshal stage counts: %w", err)
	}
	if snapshot.CreatedAt.IsZero() {
		snapshot.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO pipeline_snapshots (
			snapshot_date, total_deals, total_value, weighted_value, win_rate, stage_counts, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (snapshot_date) DO UPDATE SET
			total_deals = EXCLUDED.total_deals,
			total_value = EXCLUDED.total_value,
			weighted_value = EXCLUDED.weighted_value,
			win_rate = EXCLUDED.win_rate,
			stage_counts = EXCLUDED.stage_counts,
			created_at = EXCLUDED.created_at
	`

	_, err = s.pool.Exec(ctx, query,
		dateOnly(snapshot.SnapshotDate), snapshot.TotalDeals, snapshot.TotalValue,
		snapshot.WeightedValue, snapshot.WinRate, string(stageCounts), snapshot.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}

	return nil
}

// ListSnapshots returns the most recent snapshots first
func (s *Store) ListSnapshots(ctx context.Context, limit int) ([]contracts.PipelineSnapshot, error) {
	query := `
		SELECT id, snapshot_date, total_deals, total_value, weighted_value, win_rate, stage_counts, created_at
		FROM pipeline_snapshots
		ORDER BY snapshot_date DESC
		LIMIT $1
	`

	rows, err := s.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer rows.Close()

	snapshots := make([]contracts.PipelineSnapshot, 0)
	for rows.Next() {
		var snap contracts.PipelineSnapshot
		var stageCounts []byte
		if err := rows.Scan(&snap.ID, &snap.SnapshotDate, &snap.TotalDeals, &snap.TotalValue,
			&snap.WeightedValue, &snap.WinRate, &stageCounts, &snap.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		if err := json.Unmarshal(stageCounts, &snap.StageCounts); err != nil {
			return nil, fmt.Errorf("failed to unmarshal stage counts: %w", err)
		}
		snapshots = append(snapshots, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate snapshots: %w", err)
	}

	return snapshots, nil
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func scanDeal(row pgx.Row) (*contracts.Deal, error) {
	var deal contracts.Deal
	var mode, stage string

	err := row.Scan(
		&deal.ID, &deal.DealID, &deal.CompanyName, &deal.ContactName, &mode, &stage,
		&deal.Value, &deal.Probability, &deal.CreatedDate, &deal.UpdatedDate, &deal.ExpectedCloseDate,
		&deal.SalesRep, &deal.OriginCity, &deal.DestinationCity, &deal.CargoType,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan deal: %w", err)
	}

	deal.TransportationMode = contracts.TransportationMode(mode)
	deal.Stage = contracts.Stage(stage)

	return &deal, nil
}

// migrate creates the tables idempotently; there is no migration engine
func (s *Store) migrate(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS deals (
			id BIGSERIAL PRIMARY KEY,
			deal_id TEXT NOT NULL,
			company_name TEXT NOT NULL,
			contact_name TEXT NOT NULL,
			transportation_mode TEXT NOT NULL,
			stage TEXT NOT NULL,
			value DOUBLE PRECISION NOT NULL,
			probability DOUBLE PRECISION NOT NULL,
			created_date TEXT NOT NULL,
			updated_date TEXT NOT NULL,
			expected_close_date TEXT NOT NULL,
			sales_rep TEXT NOT NULL,
			origin_city TEXT NOT NULL,
			destination_city TEXT NOT NULL,
			cargo_type TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_deals_deal_id ON deals (deal_id)`,
		`CREATE TABLE IF NOT EXISTS audit_logs (
			id BIGSERIAL PRIMARY KEY,
			table_name TEXT NOT NULL,
			column_name TEXT NOT NULL,
			previous_value TEXT NOT NULL,
			new_value TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS pipeline_snapshots (
			id BIGSERIAL PRIMARY KEY,
			snapshot_date DATE NOT NULL UNIQUE,
			total_deals INTEGER NOT NULL,
			total_value DOUBLE PRECISION NOT NULL,
			weighted_value DOUBLE PRECISION NOT NULL,
			win_rate DOUBLE PRECISION NOT NULL,
			stage_counts JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
