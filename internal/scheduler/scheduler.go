package scheduler

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/wonny/dealflow/pkg/logger"
)

// Scheduler runs registered jobs on their cron schedules
// ⭐ SSOT: 스케줄 관리는 이 스케줄러에서만
type Scheduler struct {
	cron    *cron.Cron
	logger  *logger.Logger
	jobs    map[string]Job
	entries map[string]cron.EntryID
	history map[string]*JobHistory
	mu      sync.RWMutex

	// Retry configuration
	maxRetries int
	retryDelay time.Duration
}

// Option configures a Scheduler
type Option func(*Scheduler)

// WithRetry sets how many times a failed run is retried and the pause between attempts
func WithRetry(maxRetries int, delay time.Duration) Option {
	return func(s *Scheduler) {
		s.maxRetries = maxRetries
		s.retryDelay = delay
	}
}

// New creates a scheduler. Schedules use the six-field (seconds) cron format.
func New(log *logger.Logger, opts ...Option) *Scheduler {
	s := &Scheduler{
		cron:       cron.New(cron.WithSeconds()),
		logger:     log,
		jobs:       make(map[string]Job),
		entries:    make(map[string]cron.EntryID),
		history:    make(map[string]*JobHistory),
		maxRetries: 3,
		retryDelay: 1 * time.Minute,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddJob registers a job under its name
func (s *Scheduler) AddJob(job Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := job.Name()
	if _, exists := s.jobs[name]; exists {
		return fmt.Errorf("job %s already exists", name)
	}

	id, err := s.cron.AddFunc(job.Schedule(), func() {
		s.runJob(context.Background(), job)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule job %s: %w", name, err)
	}

	s.jobs[name] = job
	s.entries[name] = id
	s.history[name] = &JobHistory{}

	s.logger.WithFields(map[string]interface{}{
		"job":      name,
		"schedule": job.Schedule(),
	}).Info("Job added to scheduler")

	return nil
}

// RemoveJob unregisters a job; its history is discarded
func (s *Scheduler) RemoveJob(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, exists := s.entries[name]
	if !exists {
		return fmt.Errorf("job %s not found", name)
	}

	s.cron.Remove(id)
	delete(s.jobs, name)
	delete(s.entries, name)
	delete(s.history, name)
	s.logger.WithField("job", name).Info("Job removed from scheduler")

	return nil
}

// Start begins running jobs on their schedules
func (s *Scheduler) Start() {
	s.logger.Info("Starting scheduler")
	s.cron.Start()
}

// Stop halts scheduling and waits for running jobs to finish
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping scheduler")
	<-s.cron.Stop().Done()
	s.logger.Info("Scheduler stopped")
}

// RunJob runs a job immediately, outside its schedule, and waits for the result
func (s *Scheduler) RunJob(ctx context.Context, name string) (JobResult, error) {
	s.mu.RLock()
	job, exists := s.jobs[name]
	s.mu.RUnlock()

	if !exists {
		return JobResult{}, fmt.Errorf("job %s not found", name)
	}

	return s.runJob(ctx, job), nil
}

// runJob executes a job with retry logic and records the result
func (s *Scheduler) runJob(ctx context.Context, job Job) JobResult {
	name := job.Name()
	log := s.logger.WithField("job", name)
	start := time.Now()

	log.Info("Job started")

	var lastErr error
	attempts := 0

retry:
	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		attempts++
		lastErr = job.Run(ctx)
		if lastErr == nil {
			break
		}

		log.WithFields(map[string]interface{}{
			"attempt": attempts,
			"error":   lastErr.Error(),
		}).Warn("Job execution failed")

		if attempt == s.maxRetries {
			break
		}
		select {
		case <-ctx.Done():
			lastErr = ctx.Err()
			break retry
		case <-time.After(s.retryDelay):
		}
	}

	end := time.Now()
	result := JobResult{
		JobName:   name,
		StartTime: start,
		EndTime:   end,
		Duration:  end.Sub(start),
		Attempts:  attempts,
		Success:   lastErr == nil,
	}
	if lastErr != nil {
		result.Error = lastErr.Error()
	}

	s.mu.Lock()
	if history, exists := s.history[name]; exists {
		history.AddResult(result)
	}
	s.mu.Unlock()

	if result.Success {
		log.WithField("duration", result.Duration).Info("Job completed successfully")
	} else {
		log.WithFields(map[string]interface{}{
			"duration": result.Duration,
			"error":    result.Error,
		}).Error("Job failed after all retries")
	}

	return result
}

// JobNames returns registered job names, sorted
func (s *Scheduler) JobNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.jobs))
	for name := range s.jobs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// JobStats summarizes a job's recent runs
type JobStats struct {
	JobName      string     `json:"job_name"`
	Schedule     string     `json:"schedule"`
	NextRun      *time.Time `json:"next_run,omitempty"`
	TotalRuns    int        `json:"total_runs"`
	SuccessCount int        `json:"success_count"`
	FailureCount int        `json:"failure_count"`
	SuccessRate  float64    `json:"success_rate"`
	LastRun      *time.Time `json:"last_run,omitempty"`
	LastError    string     `json:"last_error,omitempty"`
}

// Stats returns statistics for every registered job
func (s *Scheduler) Stats() map[string]JobStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := make(map[string]JobStats, len(s.jobs))
	for name, job := range s.jobs {
		history := s.history[name]
		failed := history.FailureCount()

		st := JobStats{
			JobName:      name,
			Schedule:     job.Schedule(),
			TotalRuns:    len(history.Results),
			SuccessCount: len(history.Results) - failed,
			FailureCount: failed,
			SuccessRate:  history.SuccessRate(),
		}

		if next := s.cron.Entry(s.entries[name]).Next; !next.IsZero() {
			st.NextRun = &next
		}
		if latest := history.Latest(1); len(latest) == 1 {
			st.LastRun = &latest[0].StartTime
			st.LastError = latest[0].Error
		}

		stats[name] = st
	}

	return stats
}
