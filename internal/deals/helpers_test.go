package deals

import (
	"context"
	"errors"
	"sync"

	"github.com/wonny/dealflow/internal/contracts"
)

var errStorage = errors.New("connection refused")

// memStore is an in-memory DealStore with injectable failures
type memStore struct {
	mu          sync.Mutex
	deals       []contracts.Deal
	inserts     int
	findErr     error
	insertErr   error
	updateErr   error
	failInsertN int // fail the Nth insert call when > 0
	hooks       contracts.MutationHooks
}

func (m *memStore) Insert(_ context.Context, deal *contracts.Deal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inserts++
	if m.insertErr != nil || (m.failInsertN > 0 && m.inserts == m.failInsertN) {
		return errStorage
	}
	deal.ID = int64(len(m.deals) + 1)
	m.deals = append(m.deals, *deal)
	return nil
}

func (m *memStore) Update(ctx context.Context, deal *contracts.Deal) error {
	m.mu.Lock()
	if m.updateErr != nil {
		m.mu.Unlock()
		return m.updateErr
	}
	for i := range m.deals {
		if m.deals[i].ID == deal.ID {
			before := m.deals[i]
			m.deals[i] = *deal
			m.mu.Unlock()
			m.hooks.AfterUpdate(ctx, before, *deal)
			return nil
		}
	}
	m.mu.Unlock()
	return contracts.ErrNotFound
}

func (m *memStore) FindAll(_ context.Context) ([]contracts.Deal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]contracts.Deal(nil), m.deals...), nil
}

func (m *memStore) FindByDealID(_ context.Context, dealID string) (*contracts.Deal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.findErr != nil {
		return nil, m.findErr
	}
	for _, d := range m.deals {
		if d.DealID == dealID {
			found := d
			return &found, nil
		}
	}
	return nil, nil
}

func (m *memStore) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deals = nil
	return nil
}

// validInput returns a JSON-shaped deal that passes validation
func validInput(dealID string) map[string]any {
	return map[string]any{
		"deal_id":             dealID,
		"company_name":        "Pacific Logistics Inc",
		"contact_name":        "Sarah Chen",
		"transportation_mode": "ocean",
		"stage":               "proposal",
		"value":               45000.0,
		"probability":         70.0,
		"created_date":        "2024-10-15T09:00:00Z",
		"updated_date":        "2024-11-28T14:30:00Z",
		"expected_close_date": "2024-12-15",
		"sales_rep":           "Mike Rodriguez",
		"origin_city":         "Los Angeles, CA",
		"destination_city":    "Shanghai, China",
		"cargo_type":          "Electronics",
	}
}
