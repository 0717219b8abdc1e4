package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/dealflow/internal/analytics"
	"github.com/wonny/dealflow/internal/contracts"
	"github.com/wonny/dealflow/pkg/logger"
	"github.com/wonny/dealflow/pkg/metrics"
)

// DefaultSnapshotSchedule runs the snapshot once a day at 23:55
const DefaultSnapshotSchedule = "0 55 23 * * *"

// SnapshotSource is what the snapshot job needs from storage
type SnapshotSource interface {
	contracts.DealStore
	contracts.SnapshotStore
}

// PipelineSnapshotJob records the day's pipeline totals
type PipelineSnapshotJob struct {
	store    SnapshotSource
	schedule string
	logger   *logger.Logger
	metrics  *metrics.Metrics
	now      func() time.Time
}

// NewPipelineSnapshotJob creates the job; an empty schedule uses DefaultSnapshotSchedule
func NewPipelineSnapshotJob(store SnapshotSource, schedule string, log *logger.Logger, m *metrics.Metrics) *PipelineSnapshotJob {
	if schedule == "" {
		schedule = DefaultSnapshotSchedule
	}
	return &PipelineSnapshotJob{
		store:    store,
		schedule: schedule,
		logger:   log,
		metrics:  m,
		now:      time.Now,
	}
}

// Name returns the job name
func (j *PipelineSnapshotJob) Name() string {
	return "pipeline_snapshot"
}

// Schedule returns the cron schedule
func (j *PipelineSnapshotJob) Schedule() string {
	return j.schedule
}

// Run aggregates every stored deal and upserts today's snapshot
func (j *PipelineSnapshotJob) Run(ctx context.Context) error {
	deals, err := j.store.FindAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to load deals: %w", err)
	}

	result := analytics.Aggregate(deals)
	m := analytics.ComputeMetrics(result)

	counts := make(map[contracts.Stage]int, len(result.StageAnalytics))
	for stage, sa := range result.StageAnalytics {
		counts[stage] = sa.Count
	}

	now := j.now().UTC()
	snapshot := &contracts.PipelineSnapshot{
		SnapshotDate:  time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC),
		TotalDeals:    m.TotalDeals,
		TotalValue:    m.TotalPipelineValue,
		WeightedValue: m.WeightedPipelineValue,
		WinRate:       m.WinRate,
		StageCounts:   counts,
	}
	if err := j.store.SaveSnapshot(ctx, snapshot); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}

	if j.metrics != nil {
		j.metrics.SnapshotsRecorded.Inc()
	}

	j.logger.WithFields(map[string]interface{}{
		"date":        snapshot.SnapshotDate.Format("2006-01-02"),
		"total_deals": snapshot.TotalDeals,
		"total_value": snapshot.TotalValue,
	}).Info("Pipeline snapshot recorded")

	return nil
}
