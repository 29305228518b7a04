package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Manage background jobs",
	Long: `Starts the scheduler or runs its jobs by hand.

Subcommands:
  start   - run the scheduler in the foreground
  list    - registered jobs and their schedules
  run     - run one job now and wait for it

Example:
  go run ./cmd/predictor scheduler start
  go run ./cmd/predictor scheduler list
  go run ./cmd/predictor scheduler run standings_sync`,
}

var (
	schedulerStartCmd = &cobra.Command{
		Use:   "start",
		Short: "Run the scheduler",
		Long: `Registers every job and runs until Ctrl+C.

Jobs:
- standings_sync: FEED_SCHEDULE (pull the feed, recompute chances)
- prediction_prune: hourly (drop predictions older than PREDICTION_RETENTION)
- memo_cleanup: every 5 minutes (evict expired what-if results)

Example:
  go run ./cmd/predictor scheduler start --disable prediction_prune`,
		RunE: runScheduler,
	}

	schedulerListCmd = &cobra.Command{
		Use:   "list",
		Short: "List registered jobs",
		RunE:  listJobs,
	}

	schedulerRunCmd = &cobra.Command{
		Use:   "run [job_name]",
		Short: "Run one job now",
		Args:  cobra.ExactArgs(1),
		RunE:  runJob,
	}
)

var schedulerDisabled []string

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerStartCmd.Flags().StringSliceVar(&schedulerDisabled, "disable", nil, "jobs to leave out (comma separated)")
	schedulerCmd.AddCommand(schedulerStartCmd)
	schedulerCmd.AddCommand(schedulerListCmd)
	schedulerCmd.AddCommand(schedulerRunCmd)
}

func runScheduler(cmd *cobra.Command, args []string) error {
	fmt.Println("=== T20 Predictor Scheduler ===")

	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	sched, err := a.newScheduler(schedulerDisabled)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	sched.Start()

	fmt.Println("\n✅ Scheduler started successfully")
	fmt.Println("\nRegistered jobs:")
	for _, jobName := range sched.GetAllJobs() {
		fmt.Printf("  - %s\n", jobName)
	}
	fmt.Println("\nPress Ctrl+C to stop")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	fmt.Println("\nShutting down scheduler...")
	sched.Stop()
	fmt.Println("Scheduler stopped")

	return nil
}

func listJobs(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	sched, err := a.newScheduler(nil)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}

	out := cmd.OutOrStdout()
	stats := sched.GetJobStats()

	fmt.Fprintln(out, "Registered jobs:")
	for _, jobName := range sched.GetAllJobs() {
		fmt.Fprintf(out, "  - %-18s %s\n", jobName, stats[jobName].Schedule)
	}
	if a.source == nil {
		PrintWarning(out, "standings_sync is not registered: FEED_URL is empty")
	}

	return nil
}

func runJob(cmd *cobra.Command, args []string) error {
	jobName := args[0]

	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	sched, err := a.newScheduler(nil)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer sched.Stop()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Running job: %s\n", jobName)

	result, err := sched.RunJobSync(cmd.Context(), jobName)
	if err != nil {
		if result.Attempts > 0 {
			return fmt.Errorf("run job (%d attempts): %w", result.Attempts, err)
		}
		return fmt.Errorf("run job: %w", err)
	}

	PrintSuccess(out, fmt.Sprintf("%s finished in %s", jobName, result.Duration.Round(time.Millisecond)))
	return nil
}
