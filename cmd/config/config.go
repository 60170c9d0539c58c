// Package config provides the config parent command and subcommands.
package config

import (
	"github.com/spf13/cobra"

	"github.com/leefowlercu/cymirs/cmd/config/subcommands"
)

// ConfigCmd is the parent command for all config-related subcommands.
var ConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage cymirs configuration",
	Long: "Manage cymirs configuration.\n\n" +
		"The config command allows you to view, validate and create the cymirs " +
		"application configuration: log file, run history, metrics export and " +
		"the SMTP server used for job notifications. Configuration is stored in " +
		"a YAML file located at ~/.config/cymirs/config.yaml by default. Job " +
		"settings live in job files, not here.",
}

func init() {
	// Register subcommands
	ConfigCmd.AddCommand(subcommands.ShowCmd)
	ConfigCmd.AddCommand(subcommands.ValidateCmd)
	ConfigCmd.AddCommand(subcommands.InitCmd)
}
