package subcommands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leefowlercu/cymirs/internal/cmdutil"
	"github.com/leefowlercu/cymirs/internal/config"
)

var (
	initForce bool
)

// InitCmd writes a configuration file with the default values.
var InitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration file",
	Long: "Write a default configuration file.\n\n" +
		"Creates the config directory and writes config.yaml with every " +
		"setting at its default value. An existing file is left alone unless " +
		"--force is given. Keep the SMTP password out of the file: put it in " +
		"secrets.env next to config.yaml as CYMIRS_SMTP_PASSWORD=... instead.",
	Example: `  # Create ~/.config/cymirs/config.yaml
  cymirs config init

  # Overwrite an existing configuration
  cymirs config init --force`,
	Annotations: map[string]string{cmdutil.AnnotationSkipConfig: "true"},
	PreRunE:     validateInit,
	RunE:        runInit,
}

func init() {
	InitCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing configuration file")
}

func validateInit(cmd *cobra.Command, args []string) error {
	path := config.DefaultConfigPath()
	if config.ConfigExistsAt(path) && !initForce {
		return fmt.Errorf("configuration file already exists at %s; use --force to overwrite", path)
	}

	// All errors after this are runtime errors
	cmd.SilenceUsage = true
	return nil
}

func runInit(cmd *cobra.Command, args []string) error {
	cfg := config.NewDefaultConfig()
	if err := config.WriteDefault(&cfg); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Configuration written to %s\n", config.DefaultConfigPath())
	return nil
}
