// Package run implements the run command, which runs a job file.
package run

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/leefowlercu/cymirs/internal/config"
	"github.com/leefowlercu/cymirs/internal/logging"
	"github.com/leefowlercu/cymirs/internal/runner"
	"github.com/leefowlercu/cymirs/internal/storage"
)

// RunCmd runs a job file.
var RunCmd = &cobra.Command{
	Use:   "run <job-file>",
	Short: "Run a job file",
	Long: "Run a job file.\n\n" +
		"Loads and validates the job file, classifies the circles it names " +
		"and stages their regions in the output directory. Status updates are " +
		"sent to the EMAIL and TEXT_NUM addresses of the job for the events " +
		"listed in EMAIL_ON and TEXT_ON. Every run is recorded in the run history.\n\n" +
		"On a job file error the exit status is the error code of the job file " +
		"check that failed.",
	Example: `  # Run a job
  cymirs run job.txt

  # Same as
  cymirs job.txt`,
	Args:    cobra.ExactArgs(1),
	PreRunE: validateRun,
	RunE:    runRun,
}

func validateRun(cmd *cobra.Command, args []string) error {
	if args[0] == "" {
		return fmt.Errorf("job file path is empty")
	}

	// All validation passed - errors after this are runtime errors
	cmd.SilenceUsage = true
	return nil
}

func runRun(cmd *cobra.Command, args []string) error {
	return Job(cmd, args[0])
}

// Job runs the job file at path and prints a summary to the command's
// output. Interrupts cancel the job between steps.
func Job(cmd *cobra.Command, path string) error {
	ctx, stop := signal.NotifyContext(cmdContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.Get()
	if cfg == nil {
		cfg = config.LoadWithDefaults()
	}
	logs := logging.Default()

	var store *storage.Storage
	historyPath := config.ExpandPath(cfg.History.Path)
	if s, err := storage.Open(ctx, historyPath); err != nil {
		logs.Logger().Warn("run history unavailable", "path", historyPath, "error", err)
	} else {
		store = s
		defer store.Close()
	}

	r := runner.New(runner.Options{
		Config: cfg,
		Logs:   logs,
		Store:  store,
	})

	res, err := r.Run(ctx, path)
	if err != nil {
		return err
	}

	printResult(cmd.OutOrStdout(), res)
	return nil
}

func printResult(out io.Writer, res *runner.Result) {
	s := res.Summary
	fmt.Fprintf(out, "Run %s finished in %s\n", res.RunID, res.Duration.Round(time.Millisecond))
	if res.Job.UsesCircles() {
		fmt.Fprintf(out, "  circles:     %d\n", s.Total)
		fmt.Fprintf(out, "  significant: %d (%d up, %d down)\n", s.Significant, s.SignificantUp, s.SignificantDown)
		fmt.Fprintf(out, "  undefined:   %d\n", s.Undefined)
	} else {
		fmt.Fprintf(out, "  regions:     %d\n", s.Total)
	}
	fmt.Fprintf(out, "  output:      %s\n", res.Job.OutputDir)
	if res.TempDir != "" {
		fmt.Fprintf(out, "  temp files:  %s\n", res.TempDir)
	}
}

func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
