package deals

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/dealflow/internal/contracts"
	"github.com/wonny/dealflow/pkg/logger"
	"github.com/wonny/dealflow/pkg/metrics"
)

func newTestPipeline(store *memStore) (*Pipeline, *metrics.Metrics) {
	m := metrics.New()
	return NewPipeline(store, NewValidator(true), logger.Nop(), m), m
}

func TestIngestOne_Accepted(t *testing.T) {
	store := &memStore{}
	p, m := newTestPipeline(store)

	result := p.IngestOne(context.Background(), validInput("RV-001"))

	assert.True(t, result.Accepted())
	assert.Equal(t, "RV-001", result.DealID)
	require.Len(t, store.deals, 1)
	assert.Equal(t, "RV-001", store.deals[0].DealID)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DealIngestTotal.WithLabelValues(metrics.OutcomeAccepted)))
}

func TestIngestOne_Duplicate(t *testing.T) {
	store := &memStore{}
	p, _ := newTestPipeline(store)
	ctx := context.Background()

	require.True(t, p.IngestOne(ctx, validInput("RV-001")).Accepted())
	inserts := store.inserts

	result := p.IngestOne(ctx, validInput("RV-001"))

	assert.False(t, result.Accepted())
	assert.Equal(t, contracts.RejectDuplicate, result.Reason)
	assert.Equal(t, contracts.MsgDuplicateDeal, result.ErrorPayload())
	assert.Equal(t, inserts, store.inserts, "persist must not be called for duplicates")
	assert.Len(t, store.deals, 1)
}

func TestIngestOne_ValidationFailure(t *testing.T) {
	store := &memStore{}
	p, _ := newTestPipeline(store)

	input := validInput("RV-002")
	input["value"] = -1000.0

	result := p.IngestOne(context.Background(), input)

	assert.Equal(t, contracts.RejectValidation, result.Reason)
	assert.Equal(t, "RV-002", result.DealID, "deal_id is extracted even when invalid")
	require.Len(t, result.Failures, 1)
	assert.Equal(t, []string{"value"}, result.Failures[0].Path)
	assert.Zero(t, store.inserts)
}

func TestIngestOne_StorageFailures(t *testing.T) {
	tests := []struct {
		name  string
		store *memStore
	}{
		{"find fails", &memStore{findErr: errStorage}},
		{"insert fails", &memStore{insertErr: errStorage}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, m := newTestPipeline(tt.store)

			result := p.IngestOne(context.Background(), validInput("RV-003"))

			assert.Equal(t, contracts.RejectInternal, result.Reason)
			assert.Equal(t, "RV-003", result.DealID)
			assert.Equal(t, contracts.MsgInternalError, result.ErrorPayload())
			assert.Equal(t, 1.0, testutil.ToFloat64(m.DealIngestTotal.WithLabelValues(metrics.OutcomeInternal)))
		})
	}
}

func TestIngestMany_PartialSuccess(t *testing.T) {
	store := &memStore{}
	p, _ := newTestPipeline(store)

	bad := validInput("RV-002")
	bad["value"] = -1000.0

	result, err := p.IngestMany(context.Background(), []any{validInput("RV-001"), bad, validInput("RV-003")})
	require.NoError(t, err)

	assert.Equal(t, 2, result.Success)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "RV-002", result.Errors[0].DealID)
	failures, ok := result.Errors[0].Error.([]contracts.ValidationFailure)
	require.True(t, ok)
	assert.Equal(t, contracts.CodeTooSmall, failures[0].Code)

	require.Len(t, store.deals, 2)
	assert.Equal(t, "RV-001", store.deals[0].DealID)
	assert.Equal(t, "RV-003", store.deals[1].DealID)
}

func TestIngestMany_SequentialVisibility(t *testing.T) {
	store := &memStore{}
	p, _ := newTestPipeline(store)

	result, err := p.IngestMany(context.Background(), []any{validInput("RV-001"), validInput("RV-001")})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Success)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, contracts.MsgDuplicateDeal, result.Errors[0].Error)
}

func TestIngestMany_ErrorsKeepInputOrder(t *testing.T) {
	store := &memStore{failInsertN: 2}
	p, _ := newTestPipeline(store)

	result, err := p.IngestMany(context.Background(), []any{
		"not an object",
		validInput("RV-001"),
		validInput("RV-002"), // second insert fails
		validInput("RV-001"),
	})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Success)
	require.Len(t, result.Errors, 3)
	assert.Equal(t, "", result.Errors[0].DealID)
	assert.Equal(t, "RV-002", result.Errors[1].DealID)
	assert.Equal(t, contracts.MsgInternalError, result.Errors[1].Error)
	assert.Equal(t, "RV-001", result.Errors[2].DealID)
	assert.Equal(t, contracts.MsgDuplicateDeal, result.Errors[2].Error)
}

func TestIngestMany_Empty(t *testing.T) {
	p, _ := newTestPipeline(&memStore{})

	result, err := p.IngestMany(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Success)
	assert.NotNil(t, result.Errors)
	assert.Empty(t, result.Errors)
}

func TestIngestMany_Cancelled(t *testing.T) {
	store := &memStore{}
	p, _ := newTestPipeline(store)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := p.IngestMany(ctx, []any{validInput("RV-001"), validInput("RV-002")})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, result.Success)
	assert.Empty(t, store.deals)
}
