package deals

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/dealflow/internal/contracts"
)

type captureHook struct {
	before, after []contracts.Deal
}

func (h *captureHook) AfterUpdate(_ context.Context, before, after contracts.Deal) {
	h.before = append(h.before, before)
	h.after = append(h.after, after)
}

func seedStore(t *testing.T, ids ...string) *memStore {
	t.Helper()
	store := &memStore{}
	v := NewValidator(true)
	for _, id := range ids {
		deal, failures := v.Validate(validInput(id))
		require.Empty(t, failures)
		require.NoError(t, store.Insert(context.Background(), &deal))
	}
	return store
}

func TestReassignSalesRep(t *testing.T) {
	store := seedStore(t, "RV-001")
	hook := &captureHook{}
	store.hooks = contracts.MutationHooks{hook}

	deal, err := NewReassigner(store).ReassignSalesRep(context.Background(), "RV-001", "  Tom Wilson ")
	require.NoError(t, err)

	assert.Equal(t, "Tom Wilson", deal.SalesRep)
	assert.Equal(t, "Tom Wilson", store.deals[0].SalesRep)
	require.Len(t, hook.before, 1)
	assert.Equal(t, "Mike Rodriguez", hook.before[0].SalesRep)
	assert.Equal(t, "Tom Wilson", hook.after[0].SalesRep)
}

func TestReassignSalesRep_Errors(t *testing.T) {
	tests := []struct {
		name   string
		store  *memStore
		dealID string
		rep    string
		want   error
	}{
		{"empty rep", &memStore{}, "RV-001", "   ", ErrInvalidSalesRep},
		{"missing deal", &memStore{}, "RV-404", "Tom", ErrDealNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewReassigner(tt.store).ReassignSalesRep(context.Background(), tt.dealID, tt.rep)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestReassignSalesRep_StorageFailure(t *testing.T) {
	store := seedStore(t, "RV-001")
	store.updateErr = errStorage

	_, err := NewReassigner(store).ReassignSalesRep(context.Background(), "RV-001", "Tom")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrDealNotFound)
	assert.ErrorIs(t, err, errStorage)
}
