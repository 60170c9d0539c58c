package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	configcmd "github.com/leefowlercu/cymirs/cmd/config"
	"github.com/leefowlercu/cymirs/cmd/history"
	"github.com/leefowlercu/cymirs/cmd/run"
	"github.com/leefowlercu/cymirs/cmd/template"
	"github.com/leefowlercu/cymirs/cmd/validate"
	"github.com/leefowlercu/cymirs/cmd/version"
	"github.com/leefowlercu/cymirs/internal/cmdutil"
	"github.com/leefowlercu/cymirs/internal/config"
	"github.com/leefowlercu/cymirs/internal/jobfile"
	"github.com/leefowlercu/cymirs/internal/logging"
)

// logManager is the global logging manager, created in init() and upgraded after config loads
var logManager *logging.Manager

// Flag variables for the root command.
var (
	generate bool
)

var cymirsCmd = &cobra.Command{
	Use:   "cymirs [job-file]",
	Short: "Prepare circRNA regions for miRNA target analysis",
	Long: "cymirs reads a job file of TAG=value settings, checks every setting, " +
		"classifies the circular RNAs it names by significance and fold change, " +
		"and stages their regions for miRNA target overlap.\n\n" +
		"Running 'cymirs <job-file>' is the same as 'cymirs run <job-file>'. " +
		"Start from the template printed by 'cymirs --generate'.\n\n" +
		"Status updates can be sent by email or text message while a job runs; " +
		"see the STATUS UPDATES section of the template.",
	Example: `  # Write a template job file
  cymirs -g > job.txt

  # Run it
  cymirs job.txt`,
	Args:              cobra.MaximumNArgs(1),
	PersistentPreRunE: runInitialize,
	PreRunE:           validateRoot,
	RunE:              runRoot,
}

func init() {
	logManager = logging.NewManager()
	logging.SetDefault(logManager)

	cymirsCmd.Flags().BoolVarP(&generate, "generate", "g", false, "Print a template job file and exit")

	cymirsCmd.AddCommand(run.RunCmd)
	cymirsCmd.AddCommand(template.TemplateCmd)
	cymirsCmd.AddCommand(validate.ValidateCmd)
	cymirsCmd.AddCommand(history.HistoryCmd)
	cymirsCmd.AddCommand(configcmd.ConfigCmd)
	cymirsCmd.AddCommand(version.VersionCmd)
}

func runInitialize(cmd *cobra.Command, args []string) error {
	logger := logManager.Logger()

	// Printing the template and managing the config file need no config
	if cmdutil.SkipsConfig(cmd) || (!cmd.HasParent() && generate) {
		return nil
	}

	// Initialize config subsystem
	if err := config.Init(); err != nil {
		return err
	}
	cfg := config.MustGet()

	// Upgrade logging after config is available
	level, ok := logging.ParseLevel(cfg.LogLevel)
	if !ok {
		level = logging.DefaultLevel
		if cfg.LogLevel != "" {
			logger.Warn("invalid log level configured, using default", "configured", cfg.LogLevel, "default", "info")
		}
	}

	if err := logManager.Upgrade(config.ExpandPath(cfg.LogFile), level); err != nil {
		logger.Warn("failed to enable file logging, continuing with stderr only", "error", err)
		// Don't return error - continue with bootstrap mode
	}

	return nil
}

func validateRoot(cmd *cobra.Command, args []string) error {
	if generate && len(args) > 0 {
		return fmt.Errorf("--generate does not take a job file")
	}
	if !generate && len(args) == 0 {
		return fmt.Errorf("a job file is required; use --generate to print a template")
	}

	// All validation passed - errors after this are runtime errors
	cmd.SilenceUsage = true
	return nil
}

func runRoot(cmd *cobra.Command, args []string) error {
	if generate {
		return jobfile.WriteTemplate(cmd.OutOrStdout())
	}
	return run.Job(cmd, args[0])
}

// Execute runs the command line and returns the error of the failed
// command, if any. cmdutil.ExitCode maps it to the exit status.
func Execute() error {
	cymirsCmd.SilenceErrors = true
	cymirsCmd.SilenceUsage = true

	// Ensure logging is properly closed on exit
	defer func() { _ = logManager.Close() }()

	err := cymirsCmd.Execute()

	if err != nil {
		cmd, _, _ := cymirsCmd.Find(os.Args[1:])
		if cmd == nil {
			cmd = cymirsCmd
		}

		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if !cmd.SilenceUsage {
			fmt.Fprintf(os.Stderr, "\n")
			cmd.SetOut(os.Stderr)
			_ = cmd.Usage()
		}

		return err
	}

	return nil
}
