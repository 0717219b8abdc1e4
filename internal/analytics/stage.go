// Package analytics derives dashboard views from the stored deal collection.
// Every function is pure; callers re-read the store for each request.
package analytics

import (
	"math"

	"github.com/wonny/dealflow/internal/contracts"
)

// Aggregate groups deals by stage. Stages without deals are absent, and deals
// keep their input order inside a group. Percentages are rounded independently,
// so they need not sum to 100.
func Aggregate(deals []contracts.Deal) contracts.StageAnalyticsResult {
	total := len(deals)
	result := contracts.StageAnalyticsResult{
		TotalDeals:     total,
		StageAnalytics: make(map[contracts.Stage]contracts.StageAnalytics),
	}

	grouped := make(map[contracts.Stage][]contracts.Deal)
	for _, d := range deals {
		grouped[d.Stage] = append(grouped[d.Stage], d)
	}

	for stage, stageDeals := range grouped {
		count := len(stageDeals)
		result.StageAnalytics[stage] = contracts.StageAnalytics{
			Deals:      stageDeals,
			Count:      count,
			Percentage: percentOf(count, total),
		}
	}

	return result
}

// percentOf rounds half away from zero, which equals half-up for counts
func percentOf(count, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(count) / float64(total) * 100))
}

// Flatten returns the grouped deals in pipeline stage order, then stored order.
// Stages outside the canonical list follow, in no particular order.
func Flatten(result contracts.StageAnalyticsResult) []contracts.Deal {
	deals := make([]contracts.Deal, 0, result.TotalDeals)
	seen := make(map[contracts.Stage]bool, len(contracts.Stages))

	for _, stage := range contracts.Stages {
		seen[stage] = true
		if group, ok := result.StageAnalytics[stage]; ok {
			deals = append(deals, group.Deals...)
		}
	}
	for stage, group := range result.StageAnalytics {
		if !seen[stage] {
			deals = append(deals, group.Deals...)
		}
	}

	return deals
}
