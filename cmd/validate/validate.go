// Package validate implements the validate command, which checks a job
// file without running it.
package validate

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/leefowlercu/cymirs/internal/cmdutil"
	"github.com/leefowlercu/cymirs/internal/jobfile"
)

// ValidateCmd loads a job file and prints its normalised settings.
var ValidateCmd = &cobra.Command{
	Use:   "validate <job-file>",
	Short: "Validate a job file",
	Long: "Validate a job file.\n\n" +
		"Loads the job file with the same checks 'cymirs run' applies and " +
		"prints the resulting settings as YAML: file paths made absolute, " +
		"expressions evaluated and defaults filled in. Nothing is run. " +
		"On error the exit status is the error code of the failed check.",
	Example: `  # Check a job file
  cymirs validate job.txt`,
	Args:    cobra.ExactArgs(1),
	PreRunE: validateValidate,
	RunE:    runValidate,
}

func validateValidate(cmd *cobra.Command, args []string) error {
	// All validation passed - errors after this are runtime errors
	cmd.SilenceUsage = true
	return nil
}

func runValidate(cmd *cobra.Command, args []string) error {
	path, err := cmdutil.ResolvePath(args[0])
	if err != nil {
		return fmt.Errorf("failed to resolve job file path; %w", err)
	}

	job, err := jobfile.Load(path)
	if err != nil {
		return err
	}

	values := job.Values()
	doc := yaml.Node{Kind: yaml.MappingNode}
	for _, tag := range jobfile.Tags() {
		doc.Content = append(doc.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: string(tag)},
			&yaml.Node{Kind: yaml.ScalarNode, Value: values[tag], Style: yaml.DoubleQuotedStyle},
		)
	}

	data, err := yaml.Marshal(&doc)
	if err != nil {
		return fmt.Errorf("failed to format job settings; %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "# Job file: %s\n", job.Path)
	fmt.Fprint(out, string(data))
	return nil
}
