package deals

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/wonny/dealflow/internal/contracts"
)

var (
	// ErrDealNotFound means no stored deal has the requested identifier
	ErrDealNotFound = errors.New("deal not found")
	// ErrInvalidSalesRep means the new rep name is empty
	ErrInvalidSalesRep = errors.New("sales_rep must not be empty")
)

// Reassigner moves deals between sales reps. Updates go through the store,
// so registered mutation hooks (audit) observe them.
type Reassigner struct {
	store contracts.DealStore
}

// NewReassigner creates a reassigner over store
func NewReassigner(store contracts.DealStore) *Reassigner {
	return &Reassigner{store: store}
}

// ReassignSalesRep sets the sales rep of dealID and returns the updated deal
func (r *Reassigner) ReassignSalesRep(ctx context.Context, dealID, salesRep string) (*contracts.Deal, error) {
	salesRep = strings.TrimSpace(salesRep)
	if salesRep == "" {
		return nil, ErrInvalidSalesRep
	}

	deal, err := r.store.FindByDealID(ctx, dealID)
	if err != nil {
		return nil, fmt.Errorf("failed to load deal %s: %w", dealID, err)
	}
	if deal == nil {
		return nil, ErrDealNotFound
	}

	deal.SalesRep = salesRep
	if err := r.store.Update(ctx, deal); err != nil {
		if errors.Is(err, contracts.ErrNotFound) {
			return nil, ErrDealNotFound
		}
		return nil, fmt.Errorf("failed to update deal %s: %w", dealID, err)
	}

	return deal, nil
}
