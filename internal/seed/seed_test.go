package seed

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/dealflow/internal/contracts"
	"github.com/wonny/dealflow/internal/deals"
	"github.com/wonny/dealflow/internal/store/sqlite"
	"github.com/wonny/dealflow/internal/store/storetest"
	"github.com/wonny/dealflow/pkg/config"
	"github.com/wonny/dealflow/pkg/database"
	"github.com/wonny/dealflow/pkg/logger"
)

func newStore(t *testing.T) contracts.Store {
	t.Helper()

	db, err := database.Open(context.Background(), &config.Config{
		Database: config.DatabaseConfig{
			Driver:     config.DriverSQLite,
			SQLitePath: filepath.Join(t.TempDir(), "seed.sqlite"),
		},
	})
	require.NoError(t, err)
	t.Cleanup(db.Close)

	s, err := sqlite.New(context.Background(), db.SQL)
	require.NoError(t, err)
	return s
}

func TestSampleDeals(t *testing.T) {
	samples, err := SampleDeals()
	require.NoError(t, err)
	require.Len(t, samples, 10)

	assert.Equal(t, "RV-001", samples[0].DealID)
	assert.Equal(t, "RV-010", samples[9].DealID)
	assert.Equal(t, "Los Angeles, CA", samples[0].OriginCity)
	require.NotNil(t, samples[0].CargoType)
	assert.Equal(t, "Electronics", *samples[0].CargoType)

	// Every sample must pass the ingestion rules
	v := deals.NewValidator(true)
	for _, d := range samples {
		_, failures := v.Validate(asInput(d))
		assert.Empty(t, failures, d.DealID)
	}
}

func TestDecodeDeals_UnknownField(t *testing.T) {
	_, err := DecodeDeals(strings.NewReader("- deal_id: X-1\n  colour: red\n"))
	assert.Error(t, err)
}

func TestDecodeDeals_Empty(t *testing.T) {
	got, err := DecodeDeals(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSeeder_ReplacesExistingDeals(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	old := storetest.Deal("OLD-1", contracts.StageProspect, 10)
	require.NoError(t, store.Insert(ctx, &old))

	samples, err := SampleDeals()
	require.NoError(t, err)

	n, err := NewSeeder(store, logger.Nop()).Seed(ctx, samples)
	require.NoError(t, err)
	assert.Equal(t, 10, n)

	stored, err := store.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, stored, 10)
	assert.Equal(t, "RV-001", stored[0].DealID)

	gone, err := store.FindByDealID(ctx, "OLD-1")
	require.NoError(t, err)
	assert.Nil(t, gone)

	// Seeding twice stays at ten deals
	_, err = NewSeeder(store, logger.Nop()).Seed(ctx, samples)
	require.NoError(t, err)
	stored, err = store.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, stored, 10)
}

func TestGenerate(t *testing.T) {
	first := Generate(25, 42)
	second := Generate(25, 42)

	require.Len(t, first, 25)
	assert.Equal(t, first, second, "same seed, same deals")
	assert.Equal(t, "GEN-0001", first[0].DealID)

	v := deals.NewValidator(true)
	for _, d := range first {
		_, failures := v.Validate(asInput(d))
		assert.Empty(t, failures, d.DealID)
		if d.Stage == contracts.StageClosedWon {
			assert.Equal(t, 100.0, d.Probability)
		}
	}
}

// asInput renders a deal the way it arrives over the wire
func asInput(d contracts.Deal) map[string]any {
	in := map[string]any{
		"deal_id":             d.DealID,
		"company_name":        d.CompanyName,
		"contact_name":        d.ContactName,
		"transportation_mode": string(d.TransportationMode),
		"stage":               string(d.Stage),
		"value":               d.Value,
		"probability":         d.Probability,
		"created_date":        d.CreatedDate,
		"updated_date":        d.UpdatedDate,
		"expected_close_date": d.ExpectedCloseDate,
		"sales_rep":           d.SalesRep,
		"origin_city":         d.OriginCity,
		"destination_city":    d.DestinationCity,
	}
	if d.CargoType != nil {
		in["cargo_type"] = *d.CargoType
	}
	return in
}
