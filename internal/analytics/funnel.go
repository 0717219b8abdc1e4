package analytics

import (
	"strings"

	"github.com/wonny/dealflow/internal/contracts"
)

// MinFunnelWidth keeps small stages visible on the funnel chart
const MinFunnelWidth = 5

// BuildFunnel lists the stages present in result, in pipeline order
func BuildFunnel(result contracts.StageAnalyticsResult) contracts.Funnel {
	funnel := contracts.Funnel{
		TotalDeals: result.TotalDeals,
		Stages:     make([]contracts.FunnelStage, 0, len(result.StageAnalytics)),
	}

	for _, stage := range contracts.Stages {
		group, ok := result.StageAnalytics[stage]
		if !ok {
			continue
		}

		width := group.Percentage
		if width < MinFunnelWidth {
			width = MinFunnelWidth
		}

		funnel.Stages = append(funnel.Stages, contracts.FunnelStage{
			Stage:      stage,
			Label:      StageLabel(stage),
			Count:      group.Count,
			Percentage: group.Percentage,
			Width:      width,
		})
	}

	return funnel
}

// StageLabel renders a stage for display: closed_won → "closed won"
func StageLabel(stage contracts.Stage) string {
	return strings.ReplaceAll(string(stage), "_", " ")
}
