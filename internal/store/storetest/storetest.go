// Package storetest holds behaviour tests shared by every contracts.Store implementation.
package storetest

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/dealflow/internal/contracts"
)

// Deal returns a valid deal with the given identifier
func Deal(dealID string, stage contracts.Stage, value float64) contracts.Deal {
	return contracts.Deal{
		DealID:             dealID,
		CompanyName:        "Acme Logistics",
		ContactName:        "Dana Park",
		TransportationMode: contracts.ModeTrucking,
		Stage:              stage,
		Value:              value,
		Probability:        50,
		CreatedDate:        "2024-01-15",
		UpdatedDate:        "2024-02-01",
		ExpectedCloseDate:  "2024-03-30",
		SalesRep:           "Jordan Lee",
		OriginCity:         "Chicago",
		DestinationCity:    "Denver",
	}
}

type recordingHook struct {
	mu    sync.Mutex
	calls [][2]contracts.Deal
}

func (h *recordingHook) AfterUpdate(_ context.Context, before, after contracts.Deal) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.calls = append(h.calls, [2]contracts.Deal{before, after})
}

// Run exercises newStore against the storage contract. Each subtest gets a fresh store.
func Run(t *testing.T, newStore func(t *testing.T) contracts.Store) {
	t.Run("InsertAndFind", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		cargo := "Electronics"
		d := Deal("RV-001", contracts.StageProspect, 50000)
		d.CargoType = &cargo
		require.NoError(t, s.Insert(ctx, &d))
		assert.NotZero(t, d.ID)

		got, err := s.FindByDealID(ctx, "RV-001")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, d, *got)

		missing, err := s.FindByDealID(ctx, "RV-404")
		require.NoError(t, err)
		assert.Nil(t, missing)
	})

	t.Run("FindAllKeepsInsertionOrder", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		for _, id := range []string{"RV-003", "RV-001", "RV-002"} {
			d := Deal(id, contracts.StageQualified, 1000)
			require.NoError(t, s.Insert(ctx, &d))
		}

		deals, err := s.FindAll(ctx)
		require.NoError(t, err)
		require.Len(t, deals, 3)
		assert.Equal(t, "RV-003", deals[0].DealID)
		assert.Equal(t, "RV-001", deals[1].DealID)
		assert.Equal(t, "RV-002", deals[2].DealID)
		assert.Nil(t, deals[0].CargoType)
	})

	t.Run("DateStringsStoredVerbatim", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		d := Deal("RV-010", contracts.StageProposal, 1)
		d.CreatedDate = "January 1, 2024"
		d.UpdatedDate = "01/02/2024"
		require.NoError(t, s.Insert(ctx, &d))

		got, err := s.FindByDealID(ctx, "RV-010")
		require.NoError(t, err)
		assert.Equal(t, "January 1, 2024", got.CreatedDate)
		assert.Equal(t, "01/02/2024", got.UpdatedDate)
	})

	t.Run("UpdateRunsHooks", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		hook := &recordingHook{}
		s.AddHook(hook)

		d := Deal("RV-001", contracts.StageProspect, 50000)
		require.NoError(t, s.Insert(ctx, &d))

		updated := d
		updated.SalesRep = "Casey Kim"
		require.NoError(t, s.Update(ctx, &updated))

		got, err := s.FindByDealID(ctx, "RV-001")
		require.NoError(t, err)
		assert.Equal(t, "Casey Kim", got.SalesRep)

		require.Len(t, hook.calls, 1)
		assert.Equal(t, "Jordan Lee", hook.calls[0][0].SalesRep)
		assert.Equal(t, "Casey Kim", hook.calls[0][1].SalesRep)
	})

	t.Run("UpdateMissing", func(t *testing.T) {
		s := newStore(t)
		hook := &recordingHook{}
		s.AddHook(hook)

		d := Deal("RV-001", contracts.StageProspect, 1)
		d.ID = 999
		err := s.Update(context.Background(), &d)
		assert.True(t, errors.Is(err, contracts.ErrNotFound))
		assert.Empty(t, hook.calls)
	})

	t.Run("Clear", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		d := Deal("RV-001", contracts.StageProspect, 1)
		require.NoError(t, s.Insert(ctx, &d))
		require.NoError(t, s.Clear(ctx))

		deals, err := s.FindAll(ctx)
		require.NoError(t, err)
		assert.Empty(t, deals)
	})

	t.Run("AuditLogs", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		for _, rep := range []string{"B", "C"} {
			entry := &contracts.AuditLog{
				TableName:     "deals",
				ColumnName:    "sales_rep",
				PreviousValue: "A",
				NewValue:      rep,
			}
			require.NoError(t, s.InsertAuditLog(ctx, entry))
			assert.NotZero(t, entry.ID)
			assert.False(t, entry.CreatedAt.IsZero())
		}

		logs, err := s.ListAuditLogs(ctx, 10)
		require.NoError(t, err)
		require.Len(t, logs, 2)
		assert.Equal(t, "C", logs[0].NewValue, "newest first")
		assert.Equal(t, "deals", logs[0].TableName)

		limited, err := s.ListAuditLogs(ctx, 1)
		require.NoError(t, err)
		assert.Len(t, limited, 1)
	})

	t.Run("SnapshotUpsertByDate", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

		first := &contracts.PipelineSnapshot{
			SnapshotDate: day,
			TotalDeals:   2,
			TotalValue:   300,
			StageCounts:  map[contracts.Stage]int{contracts.StageProspect: 2},
		}
		require.NoError(t, s.SaveSnapshot(ctx, first))

		second := &contracts.PipelineSnapshot{
			SnapshotDate:  day,
			TotalDeals:    3,
			TotalValue:    450,
			WeightedValue: 200,
			WinRate:       50,
			StageCounts:   map[contracts.Stage]int{contracts.StageProspect: 2, contracts.StageClosedWon: 1},
		}
		require.NoError(t, s.SaveSnapshot(ctx, second))

		next := &contracts.PipelineSnapshot{
			SnapshotDate: day.AddDate(0, 0, 1),
			TotalDeals:   4,
			StageCounts:  map[contracts.Stage]int{},
		}
		require.NoError(t, s.SaveSnapshot(ctx, next))

		snaps, err := s.ListSnapshots(ctx, 10)
		require.NoError(t, err)
		require.Len(t, snaps, 2)
		assert.Equal(t, 4, snaps[0].TotalDeals, "most recent first")
		assert.Equal(t, 3, snaps[1].TotalDeals)
		assert.Equal(t, 50.0, snaps[1].WinRate)
		assert.Equal(t, 1, snaps[1].StageCounts[contracts.StageClosedWon])
		assert.Equal(t, "2024-03-01", snaps[1].SnapshotDate.Format("2006-01-02"))
	})
}
