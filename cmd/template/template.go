// Package template implements the template command, which prints a
// template job file.
package template

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/leefowlercu/cymirs/internal/cmdutil"
	"github.com/leefowlercu/cymirs/internal/fsutil"
	"github.com/leefowlercu/cymirs/internal/jobfile"
)

// Flag variables for the template command.
var (
	templateOutput string
	templateForce  bool
)

// TemplateCmd prints or writes a template job file.
var TemplateCmd = &cobra.Command{
	Use:   "template",
	Short: "Print a template job file",
	Long: "Print a template job file.\n\n" +
		"The template lists every job file tag with its default value and a " +
		"short description. Fill in the file paths and run it with 'cymirs run'. " +
		"Use --output to write the template to a file instead of stdout.",
	Example: `  # Print the template
  cymirs template

  # Write the template to a file
  cymirs template -o job.txt`,
	Args:        cobra.NoArgs,
	Annotations: map[string]string{cmdutil.AnnotationSkipConfig: "true"},
	PreRunE:     validateTemplate,
	RunE:        runTemplate,
}

func init() {
	TemplateCmd.Flags().StringVarP(&templateOutput, "output", "o", "", "Write the template to this file")
	TemplateCmd.Flags().BoolVarP(&templateForce, "force", "f", false, "Overwrite an existing output file")
}

func validateTemplate(cmd *cobra.Command, args []string) error {
	if templateOutput != "" && !templateForce {
		path := fsutil.ExpandHome(templateOutput)
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists; use --force to overwrite", templateOutput)
		}
	}

	// All validation passed - errors after this are runtime errors
	cmd.SilenceUsage = true
	return nil
}

func runTemplate(cmd *cobra.Command, args []string) error {
	if templateOutput == "" {
		return jobfile.WriteTemplate(cmd.OutOrStdout())
	}

	var buf bytes.Buffer
	if err := jobfile.WriteTemplate(&buf); err != nil {
		return err
	}

	path := fsutil.ExpandHome(templateOutput)
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write template; %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Template written to %s\n", path)
	return nil
}
