package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/wonny/dealflow/internal/contracts"
)

const timeLayout = time.RFC3339Nano

const dealColumns = `id, deal_id, company_name, contact_name, transportation_mode, stage,
	value, probability, created_date, updated_date, expected_close_date,
	sales_rep, origin_city, destination_city, cargo_type`

// Store persists deals, audit rows and snapshots in a SQLite database
// ⭐ SSOT: SQLite 저장소 구현
type Store struct {
	db *sql.DB

	mu    sync.RWMutex
	hooks contracts.MutationHooks
}

// New wraps an open SQLite handle and creates the tables if needed
func New(ctx context.Context, db *sql.DB) (*Store, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlite: db is required")
	}

	store := &Store{db: db}
	if err := store.migrate(ctx); err != nil {
		return nil, fmt.Errorf("sqlite: migrate: %w", err)
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
	return s.db.PingContext(ctx)
}

// Insert creates and saves a new deal, filling deal.ID
func (s *Store) Insert(ctx context.Context, deal *contracts.Deal) error {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO deals (
			deal_id, company_name, contact_name, transportation_mode, stage,
			value, probability, created_date, updated_date, expected_close_date,
			sales_rep, origin_city, destination_city, cargo_type
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		deal.DealID, deal.CompanyName, deal.ContactName, string(deal.TransportationMode), string(deal.Stage),
		deal.Value, deal.Probability, deal.CreatedDate, deal.UpdatedDate, deal.ExpectedCloseDate,
		deal.SalesRep, deal.OriginCity, deal.DestinationCity, nullString(deal.CargoType),
	)
	if err != nil {
		return fmt.Errorf("failed to insert deal %s: %w", deal.DealID, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read deal id: %w", err)
	}
	deal.ID = id

	return nil
}

// Update saves an existing deal matched by ID, then runs the mutation hooks
func (s *Store) Update(ctx context.Context, deal *contracts.Deal) error {
	before, err := s.findByID(ctx, deal.ID)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		UPDATE deals SET
			deal_id = ?, company_name = ?, contact_name = ?, transportation_mode = ?, stage = ?,
			value = ?, probability = ?, created_date = ?, updated_date = ?, expected_close_date = ?,
			sales_rep = ?, origin_city = ?, destination_city = ?, cargo_type = ?
		WHERE id = ?
	`,
		deal.DealID, deal.CompanyName, deal.ContactName, string(deal.TransportationMode), string(deal.Stage),
		deal.Value, deal.Probability, deal.CreatedDate, deal.UpdatedDate, deal.ExpectedCloseDate,
		deal.SalesRep, deal.OriginCity, deal.DestinationCity, nullString(deal.CargoType),
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
	rows, err := s.db.QueryContext(ctx, `SELECT `+dealColumns+` FROM deals ORDER BY id`)
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
	row := s.db.QueryRowContext(ctx,
		`SELECT `+dealColumns+` FROM deals WHERE deal_id = ? ORDER BY id LIMIT 1`, dealID)

	deal, err := scanDeal(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return deal, nil
}

// Clear removes all deals
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM deals`); err != nil {
		return fmt.Errorf("failed to clear deals: %w", err)
	}
	return nil
}

func (s *Store) findByID(ctx context.Context, id int64) (*contracts.Deal, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+dealColumns+` FROM deals WHERE id = ?`, id)

	deal, err := scanDeal(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("deal %d: %w", id, contracts.ErrNotFound)
	}
	return deal, err
}

// InsertAuditLog writes one audit row, filling ID and CreatedAt when unset
func (s *Store) InsertAuditLog(ctx context.Context, entry *contracts.AuditLog) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_logs (table_name, column_name, previous_value, new_value, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, entry.TableName, entry.ColumnName, entry.PreviousValue, entry.NewValue,
		entry.CreatedAt.UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("failed to insert audit log: %w", err)
	}

	if entry.ID, err = res.LastInsertId(); err != nil {
		return fmt.Errorf("failed to read audit log id: %w", err)
	}
	return nil
}

// ListAuditLogs returns the newest audit rows first
func (s *Store) ListAuditLogs(ctx context.Context, limit int) ([]contracts.AuditLog, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, table_name, column_name, previous_value, new_value, created_at
		FROM audit_logs
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit logs: %w", err)
	}
	defer rows.Close()

	logs := make([]contracts.AuditLog, 0)
	for rows.Next() {
		var entry contracts.AuditLog
		var createdAt string
		if err := rows.Scan(&entry.ID, &entry.TableName, &entry.ColumnName,
			&entry.PreviousValue, &entry.NewValue, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan audit log: %w", err)
		}
		if entry.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
			return nil, fmt.Errorf("failed to parse audit log time: %w", err)
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

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO pipeline_snapshots (
			snapshot_date, total_deals, total_value, weighted_value, win_rate, stage_counts, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(snapshot_date) DO UPDATE SET
			total_deals = excluded.total_deals,
			total_value = excluded.total_value,
			weighted_value = excluded.weighted_value,
			win_rate = excluded.win_rate,
			stage_counts = excluded.stage_counts,
			created_at = excluded.created_at
	`,
		snapshot.SnapshotDate.Format("2006-01-02"), snapshot.TotalDeals, snapshot.TotalValue,
		snapshot.WeightedValue, snapshot.WinRate, string(stageCounts),
		snapshot.CreatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}

	return nil
}

// ListSnapshots returns the most recent snapshots first
func (s *Store) ListSnapshots(ctx context.Context, limit int) ([]contracts.PipelineSnapshot, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, snapshot_date, total_deals, total_value, weighted_value, win_rate, stage_counts, created_at
		FROM pipeline_snapshots
		ORDER BY snapshot_date DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer rows.Close()

	snapshots := make([]contracts.PipelineSnapshot, 0)
	for rows.Next() {
		var snap contracts.PipelineSnapshot
		var date, stageCounts, createdAt string
		if err := rows.Scan(&snap.ID, &date, &snap.TotalDeals, &snap.TotalValue,
			&snap.WeightedValue, &snap.WinRate, &stageCounts, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		if snap.SnapshotDate, err = time.Parse("2006-01-02", date); err != nil {
			return nil, fmt.Errorf("failed to parse snapshot date: %w", err)
		}
		if snap.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
			return nil, fmt.Errorf("failed to parse snapshot time: %w", err)
		}
		if err := json.Unmarshal([]byte(stageCounts), &snap.StageCounts); err != nil {
			return nil, fmt.Errorf("failed to unmarshal stage counts: %w", err)
		}
		snapshots = append(snapshots, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate snapshots: %w", err)
	}

	return snapshots, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDeal(row scanner) (*contracts.Deal, error) {
	var deal contracts.Deal
	var mode, stage string
	var cargo sql.NullString

	err := row.Scan(
		&deal.ID, &deal.DealID, &deal.CompanyName, &deal.ContactName, &mode, &stage,
		&deal.Value, &deal.Probability, &deal.CreatedDate, &deal.UpdatedDate, &deal.ExpectedCloseDate,
		&deal.SalesRep, &deal.OriginCity, &deal.DestinationCity, &cargo,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan deal: %w", err)
	}

	deal.TransportationMode = contracts.TransportationMode(mode)
	deal.Stage = contracts.Stage(stage)
	if cargo.Valid {
		c := cargo.String
		deal.CargoType = &c
	}

	return &deal, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// migrate creates the tables idempotently; there is no migration engine
func (s *Store) migrate(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS deals (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			deal_id TEXT NOT NULL,
			company_name TEXT NOT NULL,
			contact_name TEXT NOT NULL,
			transportation_mode TEXT NOT NULL,
			stage TEXT NOT NULL,
			value REAL NOT NULL,
			probability REAL NOT NULL,
			created_date TEXT NOT NULL,
			updated_date TEXT NOT NULL,
			expected_close_date TEXT NOT NULL,
			sales_rep TEXT NOT NULL,
			origin_city TEXT NOT NULL,
			destination_city TEXT NOT NULL,
			cargo_type TEXT
		);`,
		`CREATE INDEX IF NOT EXISTS idx_deals_deal_id ON deals (deal_id);`,
		`CREATE TABLE IF NOT EXISTS audit_logs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			table_name TEXT NOT NULL,
			column_name TEXT NOT NULL,
			previous_value TEXT NOT NULL,
			new_value TEXT NOT NULL,
			created_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS pipeline_snapshots (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			snapshot_date TEXT NOT NULL UNIQUE,
			total_deals INTEGER NOT NULL,
			total_value REAL NOT NULL,
			weighted_value REAL NOT NULL,
			win_rate REAL NOT NULL,
			stage_counts TEXT NOT NULL,
			created_at TEXT NOT NULL
		);`,
	}

	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
