package audit

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/dealflow/internal/contracts"
	"github.com/wonny/dealflow/internal/deals"
	"github.com/wonny/dealflow/internal/store/sqlite"
	"github.com/wonny/dealflow/internal/store/storetest"
	"github.com/wonny/dealflow/pkg/config"
	"github.com/wonny/dealflow/pkg/database"
	"github.com/wonny/dealflow/pkg/logger"
	"github.com/wonny/dealflow/pkg/metrics"
)

type failingLogs struct {
	calls int
}

func (f *failingLogs) InsertAuditLog(context.Context, *contracts.AuditLog) error {
	f.calls++
	return errors.New("disk full")
}

func (f *failingLogs) ListAuditLogs(context.Context, int) ([]contracts.AuditLog, error) {
	return nil, nil
}

func newSQLiteStore(t *testing.T) *sqlite.Store {
	t.Helper()

	db, err := database.Open(context.Background(), &config.Config{
		Database: config.DatabaseConfig{
			Driver:     config.DriverSQLite,
			SQLitePath: filepath.Join(t.TempDir(), "audit.sqlite"),
		},
	})
	require.NoError(t, err)
	t.Cleanup(db.Close)

	s, err := sqlite.New(context.Background(), db.SQL)
	require.NoError(t, err)
	return s
}

func TestHook_WritesRowOnSalesRepChange(t *testing.T) {
	store := newSQLiteStore(t)
	m := metrics.New()
	store.AddHook(NewHook(store, logger.Nop(), m))
	ctx := context.Background()

	d := storetest.Deal("RV-001", contracts.StageProposal, 45000)
	require.NoError(t, store.Insert(ctx, &d))

	_, err := deals.NewReassigner(store).ReassignSalesRep(ctx, "RV-001", "Tom Wilson")
	require.NoError(t, err)

	logs, err := store.ListAuditLogs(ctx, 10)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "deals", logs[0].TableName)
	assert.Equal(t, "sales_rep", logs[0].ColumnName)
	assert.Equal(t, "Jordan Lee", logs[0].PreviousValue)
	assert.Equal(t, "Tom Wilson", logs[0].NewValue)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AuditLogsWritten))
}

func TestHook_SkipsUnchangedRep(t *testing.T) {
	store := newSQLiteStore(t)
	store.AddHook(NewHook(store, logger.Nop(), nil))
	ctx := context.Background()

	d := storetest.Deal("RV-001", contracts.StageProposal, 45000)
	require.NoError(t, store.Insert(ctx, &d))

	d.Stage = contracts.StageNegotiation
	require.NoError(t, store.Update(ctx, &d))

	logs, err := store.ListAuditLogs(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, logs)
}

func TestHook_SwallowsWriteFailure(t *testing.T) {
	logs := &failingLogs{}
	hook := NewHook(logs, logger.Nop(), nil)

	before := storetest.Deal("RV-001", contracts.StageProspect, 1)
	after := before
	after.SalesRep = "Someone Else"

	assert.NotPanics(t, func() { hook.AfterUpdate(context.Background(), before, after) })
	assert.Equal(t, 1, logs.calls)
}
