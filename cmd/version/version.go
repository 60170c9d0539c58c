package version

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leefowlercu/cymirs/internal/cmdutil"
	"github.com/leefowlercu/cymirs/internal/version"
)

// VersionCmd displays version and build information.
var VersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Display version and build information",
	Long: "Display version and build information.\n\n" +
		"Shows the semantic version, git commit hash, build date, and Go version " +
		"of the current cymirs binary. Include it when reporting a problem " +
		"with a job run.",
	Example: `  # Display version information
  cymirs version`,
	Args:        cobra.NoArgs,
	Annotations: map[string]string{cmdutil.AnnotationSkipConfig: "true"},
	PreRunE:     validateVersion,
	RunE:        runVersion,
}

func validateVersion(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	return nil
}

func runVersion(cmd *cobra.Command, args []string) error {
	info := version.Get()
	fmt.Fprintln(cmd.OutOrStdout(), info.String())
	return nil
}
