package version

import (
	"bytes"
	"strings"
	"testing"
)

func TestVersionCommandOutput(t *testing.T) {
	buf := new(bytes.Buffer)
	VersionCmd.SetOut(buf)
	VersionCmd.SetArgs([]string{})

	// Execute the command
	err := VersionCmd.Execute()
	if err != nil {
		t.Fatalf("version command failed: %v", err)
	}

	output := buf.String()

	// Verify output contains required labels
	requiredLabels := []string{"Version:", "Git Commit:", "Build Date:", "Go Version:"}
	for _, label := range requiredLabels {
		if !strings.Contains(output, label) {
			t.Errorf("version output missing label %q", label)
		}
	}
}

func TestVersionCommandOutputFormat(t *testing.T) {
	buf := new(bytes.Buffer)
	VersionCmd.SetOut(buf)
	VersionCmd.SetArgs([]string{})

	err := VersionCmd.Execute()
	if err != nil {
		t.Fatalf("version command failed: %v", err)
	}

	output := buf.String()
	lines := strings.Split(strings.TrimSpace(output), "\n")

	if len(lines) != 4 {
		t.Errorf("version output has %d lines, expected 4", len(lines))
	}

	// Each line should have a label and value
	for i, line := range lines {
		if !strings.Contains(line, ":") {
			t.Errorf("line %d missing colon separator: %q", i+1, line)
		}
	}
}
