package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/oraclewow/oracle-backend/internal/scheduler"
	"github.com/oraclewow/oracle-backend/internal/scheduler/jobs"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Background job scheduler",
	Long: `Starts the scheduler daemon or manages its jobs.

Registered jobs:
- cache_purge:        every 5 minutes (evict expired quotes)
- screening_refresh:  every 15 minutes (warm the quote cache)

Subcommands:
  start - Start the scheduler daemon
  run   - Run a specific job immediately

Example:
  go run ./cmd/oracle scheduler start
  go run ./cmd/oracle scheduler run screening_refresh`,
}

var (
	schedulerStartCmd = &cobra.Command{
		Use:   "start",
		Short: "Start the scheduler daemon",
		RunE:  runSchedulerDaemon,
	}

	schedulerRunCmd = &cobra.Command{
		Use:   "run [job_name]",
		Short: "Run a specific job immediately",
		Args:  cobra.ExactArgs(1),
		RunE:  runSchedulerJob,
	}
)

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.AddCommand(schedulerStartCmd)
	schedulerCmd.AddCommand(schedulerRunCmd)
}

func initScheduler() (*scheduler.Scheduler, *screeningDeps, error) {
	deps, err := initScreening()
	if err != nil {
		return nil, nil, fmt.Errorf("init screening: %w", err)
	}

	sched := scheduler.New(deps.log)

	if err := sched.AddJob(jobs.NewCachePurgeJob(deps.cache, deps.log)); err != nil {
		return nil, nil, err
	}
	if err := sched.AddJob(jobs.NewScreeningRefreshJob(deps.aggregator, deps.cfg.Screening.TopSymbols, deps.log)); err != nil {
		return nil, nil, err
	}

	return sched, deps, nil
}

func runSchedulerDaemon(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Oracle Scheduler ===")

	sched, deps, err := initScheduler()
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer deps.redis.Close()

	sched.Start()

	fmt.Println("\n✅ Scheduler started")
	fmt.Println("\nRegistered jobs:")
	for _, name := range sched.Jobs() {
		fmt.Printf("  - %s\n", name)
	}
	fmt.Println("\nPress Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	sched.Stop()
	fmt.Println("\n👋 Scheduler stopped")
	return nil
}

func runSchedulerJob(cmd *cobra.Command, args []string) error {
	jobName := args[0]
	fmt.Printf("=== Oracle Scheduler: run %s ===\n", jobName)

	sched, deps, err := initScheduler()
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer deps.redis.Close()

	if err := sched.RunJob(jobName); err != nil {
		return err
	}

	// Jobs run asynchronously; give this one a moment to log its outcome.
	fmt.Printf("🚀 Job %s triggered\n", jobName)
	waitForJob(sched, jobName)
	return nil
}

// waitForJob blocks until the job records a result, up to 15 minutes.
func waitForJob(sched *scheduler.Scheduler, jobName string) {
	deadline := time.Now().Add(15 * time.Minute)
	for time.Now().Before(deadline) {
		history, err := sched.JobHistory(jobName)
		if err != nil {
			return
		}
		if n := len(history.Results); n > 0 {
			result := history.Results[n-1]
			if result.Success {
				fmt.Printf("✅ Job %s completed in %s\n", jobName, result.Duration)
			} else {
				fmt.Printf("❌ Job %s failed: %s\n", jobName, result.Error)
			}
			return
		}
		time.Sleep(500 * time.Millisecond)
	}
	fmt.Printf("⏳ Job %s still running, leaving it in the background\n", jobName)
}
