package contracts

import "time"

// AuditLog records one field change on a stored entity
type AuditLog struct {
	ID            int64     `json:"id"`
	TableName     string    `json:"table_name"`
	ColumnName    string    `json:"column_name"`
	PreviousValue string    `json:"previous_value"`
	NewValue      string    `json:"new_value"`
	CreatedAt     time.Time `json:"created_at"`
}

// PipelineSnapshot is a daily aggregate row written by the snapshot job
type PipelineSnapshot struct {
	ID            int64         `json:"id"`
	SnapshotDate  time.Time     `json:"snapshot_date"`
	TotalDeals    int           `json:"total_deals"`
	TotalValue    float64       `json:"total_value"`
	WeightedValue float64       `json:"weighted_value"`
	WinRate       float64       `json:"win_rate"`
	StageCounts   map[Stage]int `json:"stage_counts"`
	CreatedAt     time.Time     `json:"created_at"`
}
