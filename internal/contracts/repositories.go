package contracts

import (
	"context"
	"errors"
)

// ⭐ SSOT: Repository 인터페이스 정의는 여기서만

// DealStore is the storage collaborator for deals.
// Any returned error is treated as a generic storage failure by callers.
type DealStore interface {
	// Insert creates and saves a new record, filling deal.ID
	Insert(ctx context.Context, deal *Deal) error
	// Update saves an existing record (matched by ID) and runs mutation hooks
	Update(ctx context.Context, deal *Deal) error
	// FindAll returns every stored deal in insertion order
	FindAll(ctx context.Context) ([]Deal, error)
	// FindByDealID returns nil, nil when no record has the identifier
	FindByDealID(ctx context.Context, dealID string) (*Deal, error)
	// Clear removes all deals (administrative seeding only)
	Clear(ctx context.Context) error
}

// AuditLogStore persists audit rows
type AuditLogStore interface {
	InsertAuditLog(ctx context.Context, entry *AuditLog) error
	ListAuditLogs(ctx context.Context, limit int) ([]AuditLog, error)
}

// SnapshotStore persists daily pipeline snapshots, one per date
type SnapshotStore interface {
	SaveSnapshot(ctx context.Context, snapshot *PipelineSnapshot) error
	ListSnapshots(ctx context.Context, limit int) ([]PipelineSnapshot, error)
}

// Store is everything a storage backend provides
type Store interface {
	DealStore
	AuditLogStore
	SnapshotStore

	// AddHook registers a hook run after every successful Update
	AddHook(hook MutationHook)
	// Ping checks the backend is reachable
	Ping(ctx context.Context) error
}

// ErrNotFound is returned by stores when an update targets a missing record
var ErrNotFound = errors.New("record not found")
