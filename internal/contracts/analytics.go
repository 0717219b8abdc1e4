package contracts

// StageAnalytics is the per-stage slice of a StageAnalyticsResult
type StageAnalytics struct {
	Deals      []Deal `json:"deals"`
	Count      int    `json:"count"`
	Percentage int    `json:"percentage"`
}

// StageAnalyticsResult groups stored deals by stage.
// Stages without deals are absent from the map.
// ⭐ SSOT: GET /api/deals 응답 형태
type StageAnalyticsResult struct {
	TotalDeals     int                      `json:"totalDeals"`
	StageAnalytics map[Stage]StageAnalytics `json:"stageAnalytics"`
}

// SalesRepStats is the per-rep breakdown used for the top rep card
type SalesRepStats struct {
	Name  string  `json:"name"`
	Count int     `json:"count"`
	Value float64 `json:"value"`
}

// PerformanceMetrics are the dashboard KPI cards
type PerformanceMetrics struct {
	TotalPipelineValue    float64                  `json:"totalPipelineValue"`
	WinRate               float64                  `json:"winRate"`
	AvgDealSize           float64                  `json:"avgDealSize"`
	WeightedPipelineValue float64                  `json:"weightedPipelineValue"`
	TotalDeals            int                      `json:"totalDeals"`
	DealsByMode           map[string]int           `json:"dealsByMode"`
	DealsBySalesRep       map[string]SalesRepStats `json:"dealsBySalesRep"`
	TopSalesRep           SalesRepStats            `json:"topSalesRep"`
}

// FunnelStage is one bar of the pipeline funnel
type FunnelStage struct {
	Stage      Stage  `json:"stage"`
	Label      string `json:"label"`
	Count      int    `json:"count"`
	Percentage int    `json:"percentage"`
	Width      int    `json:"width"` // display width in percent, never below the minimum
}

// Funnel lists present stages in pipeline order
type Funnel struct {
	TotalDeals int           `json:"totalDeals"`
	Stages     []FunnelStage `json:"stages"`
}
