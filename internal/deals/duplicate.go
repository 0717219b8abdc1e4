package deals

import (
	"context"
	"fmt"

	"github.com/wonny/dealflow/internal/contracts"
)

// DuplicateChecker looks up whether a deal identifier is already stored.
// The check is a plain read; concurrent writers can both pass it.
type DuplicateChecker struct {
	store contracts.DealStore
}

// NewDuplicateChecker creates a checker over store
func NewDuplicateChecker(store contracts.DealStore) *DuplicateChecker {
	return &DuplicateChecker{store: store}
}

// Exists reports whether a deal with dealID is stored
func (c *DuplicateChecker) Exists(ctx context.Context, dealID string) (bool, error) {
	existing, err := c.store.FindByDealID(ctx, dealID)
	if err != nil {
		return false, fmt.Errorf("duplicate check for %s: %w", dealID, err)
	}
	return existing != nil, nil
}
