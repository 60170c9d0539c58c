package cmd

import (
	"bytes"
	"strings"
	"path/filepath"
	"testing"

	"github.com/leefowlercu/cymirs/internal/cmdutil"
	"github.com/leefowlercu/cymirs/internal/jobfile"
	"github.com/leefowlercu/cymirs/internal/testutil"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var stdout bytes.Buffer
	cymirsCmd.SetOut(&stdout)
	cymirsCmd.SetErr(&bytes.Buffer{})
	cymirsCmd.SetArgs(args)
	cymirsCmd.SilenceErrors = true
	t.Cleanup(func() {
		generate = false
		cymirsCmd.SetOut(nil)
		cymirsCmd.SetErr(nil)
	})

	err := cymirsCmd.Execute()
	return stdout.String(), err
}

func TestRoot_Generate(t *testing.T) {
	testutil.NewTestEnv(t)

	output, err := execute(t, "--generate")
	if err != nil {
		t.Fatalf("cymirs --generate failed: %v", err)
	}
	if !strings.Contains(output, "CIRC_INFO_FILE=") || !strings.Contains(output, "TEXT_ON=") {
		t.Errorf("expected template, got: %s", output)
	}
}

func TestRoot_GenerateShortFlag(t *testing.T) {
	testutil.NewTestEnv(t)

	output, err := execute(t, "-g")
	if err != nil {
		t.Fatalf("cymirs -g failed: %v", err)
	}
	if !strings.Contains(output, "CIRC_INFO_FILE=") {
		t.Errorf("expected template, got: %s", output)
	}
}

func TestRoot_RunsJobArgument(t *testing.T) {
	env := testutil.NewTestEnv(t)
	path := env.CreateJob(map[string]string{"VERBOSITY": "silent"})

	output, err := execute(t, path)
	if err != nil {
		t.Fatalf("cymirs <job> failed: %v", err)
	}
	if !strings.Contains(output, "circles:     4") {
		t.Errorf("expected run summary, got: %s", output)
	}
}

func TestRoot_ArgumentErrors(t *testing.T) {
	testutil.NewTestEnv(t)

	tests := []struct {
		name string
		args []string
	}{
		{"no job file", []string{}},
		{"generate with job file", []string{"-g", "job.txt"}},
		{"two job files", []string{"a.txt", "b.txt"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := execute(t, tt.args...); err == nil {
				t.Errorf("cymirs %v: expected error", tt.args)
			}
		})
	}
}

func TestRoot_JobFileExitCodes(t *testing.T) {
	env := testutil.NewTestEnv(t)

	tests := []struct {
		name string
		path string
		want int
	}{
		{"valid job", env.CreateJob(map[string]string{"VERBOSITY": "silent"}), 0},
		{"invalid value", env.CreateJob(map[string]string{"TOP_N_VAL": "0"}), jobfile.CodeInvalidValue},
		{"missing job file", filepath.Join(t.TempDir(), "missing.txt"), jobfile.CodeBadPath},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.path)
			got := 0
			if err != nil {
				got = cmdutil.ExitCode(err)
			}
			if got != tt.want {
				t.Errorf("cymirs %s: exit status = %d, want %d (err: %v)", tt.path, got, tt.want, err)
			}
		})
	}
}
