// Package testutil provides testing utilities for isolated test environments.
package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/leefowlercu/cymirs/internal/config"
)

// TestEnv provides an isolated test environment with its own config
// directory, history database and log file.
type TestEnv struct {
	t         *testing.T
	ConfigDir string
}

// NewTestEnv creates an isolated test environment.
// It uses environment variables to override all paths, ensuring complete
// isolation even when tests run in parallel across packages.
// Cleanup is automatic via t.Cleanup.
func NewTestEnv(t *testing.T) *TestEnv {
	t.Helper()

	configDir := filepath.Join(t.TempDir(), "config")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		t.Fatalf("failed to create test config dir: %v", err)
	}

	// These env vars override viper settings via AutomaticEnv()
	t.Setenv(config.ConfigDirEnv, configDir)
	t.Setenv("CYMIRS_HISTORY_PATH", filepath.Join(configDir, "history.db"))
	t.Setenv("CYMIRS_LOG_FILE", filepath.Join(configDir, "cymirs.log"))
	t.Setenv("CYMIRS_METRICS_TEXTFILE", "")
	t.Setenv("CYMIRS_NOTIFY_SMTP_HOST", "")

	config.Reset()
	if err := config.Init(); err != nil {
		t.Fatalf("failed to initialize test config: %v", err)
	}

	t.Cleanup(func() {
		config.Reset()
	})

	return &TestEnv{
		t:         t,
		ConfigDir: configDir,
	}
}

// HistoryPath returns the path where the test history database will be created.
func (e *TestEnv) HistoryPath() string {
	return filepath.Join(e.ConfigDir, "history.db")
}

// LogPath returns the path of the test log file.
func (e *TestEnv) LogPath() string {
	return filepath.Join(e.ConfigDir, "cymirs.log")
}

// CreateTestDir creates a test directory within the test environment's temp space.
// Returns the absolute path to the created directory.
func (e *TestEnv) CreateTestDir(name string) string {
	e.t.Helper()

	testDataDir := filepath.Join(e.t.TempDir(), "testdata", name)
	if err := os.MkdirAll(testDataDir, 0755); err != nil {
		e.t.Fatalf("failed to create test dir %s: %v", name, err)
	}
	return testDataDir
}

// CreateTestFile creates a test file with the given content.
// Returns the absolute path to the created file.
func (e *TestEnv) CreateTestFile(dir, name, content string) string {
	e.t.Helper()

	filePath := filepath.Join(dir, name)
	if err := os.WriteFile(filePath, []byte(content), 0644); err != nil {
		e.t.Fatalf("failed to create test file %s: %v", filePath, err)
	}
	return filePath
}

// Sample input files written by CreateJob.
const (
	SampleCircles = "circ1\tGENE1\tchr1\t100\t200\t+\t2.5\t0.01\n" +
		"circ2\tGENE2\tchr1\t300\t450\t-\t0.2\t0.03\n" +
		"circ3\tGENE3\tchr2\t50\t90\t+\tNA\t0.5\n" +
		"circ4\tGENE4\tchr2\t500\t800\t+\t1.1\t0.2\n"
	SampleRegions = "chr1\t100\t200\tr1\t0\t+\n" +
		"chr2\t50\t90\tr2\t0\t-\n"
	SampleMirs   = "miR-1\tGENE1\t8mer\n"
	SampleGenome = ">chr1\nACGTACGT\n>chr2\nTTGGCCAA\n"
)

// DefaultJobValues returns the tag values of a valid job reading the
// sample circle file.
func DefaultJobValues() map[string]string {
	return map[string]string{
		"CIRC_INFO_FILE":    "circles.tsv",
		"REGION_FILE":       "",
		"MIR_INFO_FILE":     "mirs.txt",
		"GENOME_FILE":       "genome.fa",
		"OUTPUT_DIR":        "out",
		"SIG_PVALUE":        ".05",
		"FOLDCHNG_UP":       "1.5",
		"FOLDCHNG_DOWN":     "",
		"KEEP_TEMP_FILES":   "No",
		"SSHEET_OUT_FORMAT": "xlsx",
		"TOP_N_VAL":         "5",
		"KEEP_ALL":          "No",
		"VERBOSITY":         "normal",
		"EMAIL":             "",
		"EMAIL_ON":          "error,finish,rundown",
		"TEXT_NUM":          "",
		"TEXT_ON":           "error,finish,rundown",
	}
}

// CreateJob writes the sample input files and a job file into a new test
// directory. overrides replace entries of DefaultJobValues. Returns the
// path of the job file.
func (e *TestEnv) CreateJob(overrides map[string]string) string {
	e.t.Helper()

	dir := e.CreateTestDir("job")
	e.CreateTestFile(dir, "circles.tsv", SampleCircles)
	e.CreateTestFile(dir, "regions.bed", SampleRegions)
	e.CreateTestFile(dir, "mirs.txt", SampleMirs)
	e.CreateTestFile(dir, "genome.fa", SampleGenome)

	values := DefaultJobValues()
	for k, v := range overrides {
		values[k] = v
	}

	tags := make([]string, 0, len(values))
	for tag := range values {
		tags = append(tags, tag)
	}
	sort.Strings(tags)

	var b strings.Builder
	b.WriteString("# test job\n")
	for _, tag := range tags {
		fmt.Fprintf(&b, "%s=%s\n", tag, values[tag])
	}

	return e.CreateTestFile(dir, "job.txt", b.String())
}
