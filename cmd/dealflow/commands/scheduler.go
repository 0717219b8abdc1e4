package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/dealflow/internal/scheduler"
	"github.com/wonny/dealflow/internal/scheduler/jobs"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "스케줄러 관리",
	Long: `스케줄러를 시작하거나 작업을 관리합니다.

Subcommands:
  start   - 스케줄러 시작
  list    - 등록된 작업 목록
  run     - 특정 작업 즉시 실행

Example:
  go run ./cmd/dealflow scheduler start
  go run ./cmd/dealflow scheduler list
  go run ./cmd/dealflow scheduler run pipeline_snapshot`,
}

var (
	schedulerStartCmd = &cobra.Command{
		Use:   "start",
		Short: "스케줄러 시작",
		Long: `스케줄러를 시작하고 등록된 모든 작업을 스케줄합니다.

등록되는 작업:
- pipeline_snapshot: 매일 23:55 (SNAPSHOT_SCHEDULE로 변경 가능)

스케줄러는 Ctrl+C로 종료할 수 있습니다.`,
		RunE: runScheduler,
	}

	schedulerListCmd = &cobra.Command{
		Use:   "list",
		Short: "등록된 작업 목록",
		RunE:  listJobs,
	}

	schedulerRunCmd = &cobra.Command{
		Use:   "run [job_name]",
		Short: "특정 작업 즉시 실행",
		Args:  cobra.ExactArgs(1),
		RunE:  runJob,
	}
)

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.AddCommand(schedulerStartCmd)
	schedulerCmd.AddCommand(schedulerListCmd)
	schedulerCmd.AddCommand(schedulerRunCmd)
}

// registerJobs adds every periodic job to sched
func registerJobs(sched *scheduler.Scheduler, a *app) error {
	return sched.AddJob(jobs.NewPipelineSnapshotJob(a.store, a.cfg.SnapshotSchedule, a.log, a.metrics))
}

func runScheduler(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	sched := scheduler.New(a.log)
	if err := registerJobs(sched, a); err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}

	sched.Start()

	out := cmd.OutOrStdout()
	PrintSuccess(out, "Scheduler started successfully")
	printJobTable(cmd, sched)
	fmt.Fprintln(out, "Press Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	sched.Stop()
	return nil
}

func listJobs(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	sched := scheduler.New(a.log)
	if err := registerJobs(sched, a); err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}

	printJobTable(cmd, sched)
	return nil
}

func printJobTable(cmd *cobra.Command, sched *scheduler.Scheduler) {
	out := cmd.OutOrStdout()
	stats := sched.Stats()

	widths := []int{20, 16}
	PrintTableHeader(out, []string{"JOB", "SCHEDULE"}, widths)
	for _, name := range sched.JobNames() {
		PrintTableRow(out, []string{name, stats[name].Schedule}, widths)
	}
}

func runJob(cmd *cobra.Command, args []string) error {
	jobName := args[0]

	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	sched := scheduler.New(a.log, scheduler.WithRetry(0, 0))
	if err := registerJobs(sched, a); err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}

	result, err := sched.RunJob(cmd.Context(), jobName)
	if err != nil {
		return fmt.Errorf("run job: %w", err)
	}

	out := cmd.OutOrStdout()
	if !result.Success {
		PrintError(out, fmt.Sprintf("Job %s failed: %s", jobName, result.Error))
		return fmt.Errorf("job %s failed", jobName)
	}

	PrintSuccess(out, fmt.Sprintf("Job %s completed in %s", jobName, result.Duration.Round(time.Millisecond)))
	return nil
}
