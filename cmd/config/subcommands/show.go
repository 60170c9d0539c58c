package subcommands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/leefowlercu/cymirs/internal/config"
)

var (
	showRaw bool
)

// ShowCmd displays the current configuration.
var ShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Display the current configuration",
	Long: "Display the current configuration.\n\n" +
		"Shows the current cymirs configuration values. By default, shows " +
		"the effective configuration with defaults and environment overrides " +
		"applied. Use --raw to show only the values explicitly set in the " +
		"config file. Passwords are never shown.",
	Example: `  # Show effective configuration
  cymirs config show

  # Show only explicitly set values
  cymirs config show --raw`,
	PreRunE: validateShow,
	RunE:    runShow,
}

func init() {
	ShowCmd.Flags().BoolVar(&showRaw, "raw", false, "Show only explicitly configured values (no defaults)")
}

func validateShow(cmd *cobra.Command, args []string) error {
	// All errors after this are runtime errors
	cmd.SilenceUsage = true
	return nil
}

func runShow(cmd *cobra.Command, args []string) error {
	if showRaw {
		return showRawConfig(cmd)
	}
	return showEffectiveConfig(cmd)
}

func configPath() string {
	if path := config.ConfigFilePath(); path != "" {
		return path
	}
	return config.DefaultConfigPath()
}

func showRawConfig(cmd *cobra.Command) error {
	out := cmd.OutOrStdout()
	path := configPath()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			fmt.Fprintln(out, "# No configuration file found")
			fmt.Fprintf(out, "# Default location: %s\n", path)
			return nil
		}
		return fmt.Errorf("failed to read config file; %w", err)
	}

	fmt.Fprintf(out, "# Configuration file: %s\n", path)
	fmt.Fprintln(out, string(data))
	return nil
}

func showEffectiveConfig(cmd *cobra.Command) error {
	out := cmd.OutOrStdout()

	cfg := config.Get()
	if cfg == nil {
		cfg = config.LoadWithDefaults()
	}

	redacted := *cfg
	redacted.Notify.SMTP.Password = nil

	data, err := yaml.Marshal(&redacted)
	if err != nil {
		return fmt.Errorf("failed to format configuration; %w", err)
	}

	fmt.Fprintln(out, "# Effective configuration (with defaults)")
	fmt.Fprintf(out, "# Config file: %s\n", configPath())
	fmt.Fprintln(out, string(data))
	return nil
}
