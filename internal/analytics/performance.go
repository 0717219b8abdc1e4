package analytics

import (
	"github.com/wonny/dealflow/internal/contracts"
)

// ComputeMetrics derives the KPI cards from an aggregated result.
// The top rep is the one with the highest summed value; on a tie the rep
// met first in Flatten order keeps the title.
func ComputeMetrics(result contracts.StageAnalyticsResult) contracts.PerformanceMetrics {
	deals := Flatten(result)

	m := contracts.PerformanceMetrics{
		TotalDeals:      len(deals),
		DealsByMode:     make(map[string]int),
		DealsBySalesRep: make(map[string]contracts.SalesRepStats),
		TopSalesRep:     contracts.SalesRepStats{Name: "", Count: 0, Value: 0},
	}

	var repOrder []string
	var won, closed int
	for _, d := range deals {
		if d.Stage.IsClosed() {
			closed++
			if d.Stage == contracts.StageClosedWon {
				won++
			}
		}
		m.TotalPipelineValue += d.Value
		m.WeightedPipelineValue += d.WeightedValue()
		m.DealsByMode[string(d.TransportationMode)]++

		stats, ok := m.DealsBySalesRep[d.SalesRep]
		if !ok {
			repOrder = append(repOrder, d.SalesRep)
			stats.Name = d.SalesRep
		}
		stats.Count++
		stats.Value += d.Value
		m.DealsBySalesRep[d.SalesRep] = stats
	}

	if closed > 0 {
		m.WinRate = float64(won) / float64(closed) * 100
	}

	if m.TotalDeals > 0 {
		m.AvgDealSize = m.TotalPipelineValue / float64(m.TotalDeals)
	}

	for _, rep := range repOrder {
		if stats := m.DealsBySalesRep[rep]; stats.Value > m.TopSalesRep.Value {
			m.TopSalesRep = stats
		}
	}

	return m
}

// WinRate returns the closed-won share of closed deals, 0 when nothing closed
func WinRate(deals []contracts.Deal) float64 {
	return ComputeMetrics(Aggregate(deals)).WinRate
}
