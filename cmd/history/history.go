// Package history implements the history command for listing past runs.
package history

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/leefowlercu/cymirs/internal/cmdutil"
	"github.com/leefowlercu/cymirs/internal/config"
	"github.com/leefowlercu/cymirs/internal/storage"
	"github.com/leefowlercu/cymirs/internal/styles"
)

// DefaultLimit is the number of runs listed when --limit is not given.
const DefaultLimit = 20

// Flag variables for the history command.
var (
	historyLimit int
)

// HistoryCmd lists recent runs, or shows one run in detail.
var HistoryCmd = &cobra.Command{
	Use:   "history [run-id]",
	Short: "List recent job runs",
	Long: "List recent job runs from the run history.\n\n" +
		"Without arguments the most recent runs are listed, newest first. " +
		"Give a run id to show that run in detail.",
	Example: `  # List the last 20 runs
  cymirs history

  # List every recorded run
  cymirs history --limit 0

  # Show one run
  cymirs history 3f2b9c1e-5d7a-4c2e-9f10-8a7b6c5d4e3f`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: validateHistory,
	RunE:    runHistory,
}

func init() {
	HistoryCmd.Flags().IntVarP(&historyLimit, "limit", "n", DefaultLimit,
		"Number of runs to list (0 lists all)")
}

func validateHistory(cmd *cobra.Command, args []string) error {
	if historyLimit < 0 {
		return fmt.Errorf("--limit must not be negative")
	}

	// All validation passed - errors after this are runtime errors
	cmd.SilenceUsage = true
	return nil
}

func runHistory(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	out := cmd.OutOrStdout()

	cfg := config.Get()
	if cfg == nil {
		cfg = config.LoadWithDefaults()
	}

	historyPath, err := cmdutil.ResolvePath(cfg.History.Path)
	if err != nil {
		return fmt.Errorf("failed to resolve history path; %w", err)
	}
	store, err := storage.Open(ctx, historyPath)
	if err != nil {
		return fmt.Errorf("failed to open run history; %w", err)
	}
	defer store.Close()

	if len(args) == 1 {
		run, err := store.GetRun(ctx, args[0])
		if errors.Is(err, storage.ErrRunNotFound) {
			return fmt.Errorf("no run with id %s", args[0])
		}
		if err != nil {
			return fmt.Errorf("failed to read run; %w", err)
		}
		printRun(out, run)
		return nil
	}

	runs, err := store.ListRuns(ctx, historyLimit)
	if err != nil {
		return fmt.Errorf("failed to list runs; %w", err)
	}

	if len(runs) == 0 {
		fmt.Fprintln(out, "No runs recorded.")
		fmt.Fprintln(out, "\nUse 'cymirs run <job-file>' to run a job.")
		return nil
	}

	fmt.Fprintf(out, "Recent runs (%d):\n\n", len(runs))
	fmt.Fprintln(out, renderTable(runs))
	return nil
}

func renderTable(runs []storage.Run) string {
	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		rows = append(rows, []string{
			shortID(r.ID),
			r.StartedAt.Local().Format("2006-01-02 15:04:05"),
			styles.Status(r.Status),
			exitCode(r),
			formatDuration(r),
			strconv.Itoa(r.Counts.Total),
			strconv.Itoa(r.Counts.Significant),
			r.JobPath,
		})
	}

	return table.New().
		Border(styles.Border).
		BorderStyle(styles.MutedText).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styles.Header
			}
			return styles.Cell
		}).
		Headers("ID", "STARTED", "STATUS", "EXIT", "DURATION", "CIRCLES", "SIG", "JOB").
		Rows(rows...).
		String()
}

func printRun(out io.Writer, r *storage.Run) {
	fmt.Fprintf(out, "Run:         %s\n", r.ID)
	fmt.Fprintf(out, "Job file:    %s\n", r.JobPath)
	if r.JobHash != "" {
		fmt.Fprintf(out, "Job hash:    %s\n", r.JobHash)
	}
	if r.Version != "" {
		fmt.Fprintf(out, "Version:     %s\n", r.Version)
	}
	fmt.Fprintf(out, "Status:      %s\n", styles.Status(r.Status))
	fmt.Fprintf(out, "Exit code:   %s\n", exitCode(*r))
	fmt.Fprintf(out, "Started:     %s\n", r.StartedAt.Local().Format(time.RFC3339))
	if r.FinishedAt != nil {
		fmt.Fprintf(out, "Finished:    %s\n", r.FinishedAt.Local().Format(time.RFC3339))
		fmt.Fprintf(out, "Duration:    %s\n", formatDuration(*r))
	}
	fmt.Fprintf(out, "Circles:     %d\n", r.Counts.Total)
	fmt.Fprintf(out, "Significant: %d (%d up, %d down)\n", r.Counts.Significant, r.Counts.Up, r.Counts.Down)
	if r.Error != "" {
		fmt.Fprintf(out, "Error:       %s\n", r.Error)
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func exitCode(r storage.Run) string {
	if r.Status == storage.StatusRunning {
		return "-"
	}
	return strconv.Itoa(r.ExitCode)
}

func formatDuration(r storage.Run) string {
	if r.FinishedAt == nil {
		return "-"
	}
	return r.Duration().Round(time.Millisecond).String()
}
