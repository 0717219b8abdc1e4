package scheduler

import (
	"context"
	"time"
)

// Job is a unit of periodic work
// ⭐ SSOT: 스케줄 작업 인터페이스는 여기서만 정의
type Job interface {
	Name() string

	// Run executes the job once. A returned error triggers a retry.
	Run(ctx context.Context) error

	// Schedule returns a cron expression with a seconds field,
	// e.g. "0 55 23 * * *" (every day at 23:55:00), or a descriptor like "@hourly"
	Schedule() string
}

// JobResult is the outcome of one job execution (including its retries)
type JobResult struct {
	JobName   string        `json:"job_name"`
	StartTime time.Time     `json:"start_time"`
	EndTime   time.Time     `json:"end_time"`
	Duration  time.Duration `json:"duration"`
	Attempts  int           `json:"attempts"`
	Success   bool          `json:"success"`
	Error     string        `json:"error,omitempty"`
}

const maxHistory = 100

// JobHistory keeps the most recent results of a job
type JobHistory struct {
	Results []JobResult
}

// AddResult appends a result, dropping the oldest past maxHistory
func (h *JobHistory) AddResult(result JobResult) {
	h.Results = append(h.Results, result)
	if len(h.Results) > maxHistory {
		h.Results = h.Results[len(h.Results)-maxHistory:]
	}
}

// Latest returns up to n most recent results, oldest first
func (h *JobHistory) Latest(n int) []JobResult {
	if n > len(h.Results) {
		n = len(h.Results)
	}
	if n <= 0 {
		return []JobResult{}
	}
	return h.Results[len(h.Results)-n:]
}

// FailureCount counts failed runs still in history
func (h *JobHistory) FailureCount() int {
	failed := 0
	for _, r := range h.Results {
		if !r.Success {
			failed++
		}
	}
	return failed
}

// SuccessRate returns the share of successful runs (0.0 - 1.0)
func (h *JobHistory) SuccessRate() float64 {
	if len(h.Results) == 0 {
		return 0.0
	}
	return float64(len(h.Results)-h.FailureCount()) / float64(len(h.Results))
}
