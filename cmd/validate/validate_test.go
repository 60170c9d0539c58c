package validate

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/leefowlercu/cymirs/internal/jobfile"
	"github.com/leefowlercu/cymirs/internal/testutil"
)

func TestValidateCmd_ValidJob(t *testing.T) {
	env := testutil.NewTestEnv(t)
	path := env.CreateJob(map[string]string{"SIG_PVALUE": "1/20"})

	cmd := createTestCommand()
	var stdout bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetArgs([]string{path})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("validate command failed: %v", err)
	}

	output := stdout.String()
	if !strings.HasPrefix(output, "# Job file: "+path) {
		t.Errorf("expected job file header, got: %s", output)
	}

	var values map[string]string
	if err := yaml.Unmarshal(stdout.Bytes(), &values); err != nil {
		t.Fatalf("output is not YAML: %v", err)
	}
	if len(values) != len(jobfile.Tags()) {
		t.Errorf("got %d settings, want %d", len(values), len(jobfile.Tags()))
	}
	if values["SIG_PVALUE"] != "0.05" {
		t.Errorf("SIG_PVALUE = %q, want %q", values["SIG_PVALUE"], "0.05")
	}
	if values["KEEP_TEMP_FILES"] != "No" {
		t.Errorf("KEEP_TEMP_FILES = %q, want %q", values["KEEP_TEMP_FILES"], "No")
	}
}

func TestValidateCmd_InvalidJob(t *testing.T) {
	env := testutil.NewTestEnv(t)
	path := env.CreateJob(map[string]string{"TOP_N_VAL": "zero"})

	cmd := createTestCommand()
	var stdout bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetArgs([]string{path})

	err := cmd.Execute()
	if err == nil {
		t.Fatal("expected error for invalid job file")
	}
	if code := jobfile.CodeOf(err); code != jobfile.CodeInvalidValue {
		t.Errorf("CodeOf() = %d, want %d", code, jobfile.CodeInvalidValue)
	}
	if stdout.Len() != 0 {
		t.Errorf("expected no output, got: %s", stdout.String())
	}
}

func createTestCommand() *cobra.Command {
	return &cobra.Command{
		Use:           ValidateCmd.Use,
		Args:          ValidateCmd.Args,
		PreRunE:       ValidateCmd.PreRunE,
		RunE:          ValidateCmd.RunE,
		SilenceErrors: true,
	}
}
