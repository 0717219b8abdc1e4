// Package seed loads demonstration deals into an empty pipeline.
package seed

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/wonny/dealflow/internal/contracts"
	"github.com/wonny/dealflow/pkg/logger"
)

//go:embed sample_deals.yaml
var sampleDealsYAML []byte

// SampleDeals returns the built-in demonstration pipeline (RV-001..RV-010)
func SampleDeals() ([]contracts.Deal, error) {
	return DecodeDeals(bytes.NewReader(sampleDealsYAML))
}

// DecodeDeals reads a YAML list of deals. Unknown fields are an error.
func DecodeDeals(r io.Reader) ([]contracts.Deal, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var deals []contracts.Deal
	if err := dec.Decode(&deals); err != nil {
		if err == io.EOF {
			return []contracts.Deal{}, nil
		}
		return nil, fmt.Errorf("failed to decode deals: %w", err)
	}
	return deals, nil
}

// Seeder replaces the stored pipeline with a fixed set of deals.
// It writes straight to the store: no validation, no duplicate check.
type Seeder struct {
	store  contracts.DealStore
	logger *logger.Logger
}

// NewSeeder creates a seeder over store
func NewSeeder(store contracts.DealStore, log *logger.Logger) *Seeder {
	return &Seeder{store: store, logger: log}
}

// Seed clears all deals, then inserts deals in order, returning how many were written
func (s *Seeder) Seed(ctx context.Context, deals []contracts.Deal) (int, error) {
	if err := s.store.Clear(ctx); err != nil {
		return 0, fmt.Errorf("failed to clear deals: %w", err)
	}
	s.logger.Info("Cleared existing deals")

	for i := range deals {
		d := deals[i]
		d.ID = 0
		if err := s.store.Insert(ctx, &d); err != nil {
			return i, fmt.Errorf("failed to insert deal %s: %w", d.DealID, err)
		}
	}

	s.logger.WithField("count", len(deals)).Info("Seeded deals")
	return len(deals), nil
}
