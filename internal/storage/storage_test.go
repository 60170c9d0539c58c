package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/leefowlercu/cymirs/internal/version"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "history.db")

	storage, err := Open(ctx, dbPath)
	if err != nil {
		t.Fatalf("failed to open storage: %v", err)
	}
	t.Cleanup(func() {
		storage.Close()
	})

	return storage
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "history.db")

	s, err := Open(ctx, dbPath)
	if err != nil {
		t.Fatalf("failed to open storage: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("database file was not created")
	}
	if s.Path() != dbPath {
		t.Errorf("Path() = %q, want %q", s.Path(), dbPath)
	}
}

func TestOpen_CreatesDirectory(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "subdir", "nested", "history.db")

	s, err := Open(ctx, dbPath)
	if err != nil {
		t.Fatalf("failed to open storage: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(filepath.Dir(dbPath)); err != nil {
		t.Errorf("directory was not created: %v", err)
	}
}

func TestOpen_Reopen(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "history.db")

	s1, err := Open(ctx, dbPath)
	if err != nil {
		t.Fatalf("first open failed: %v", err)
	}
	id, err := s1.StartRun(ctx, "/jobs/a.txt", "", time.Now())
	if err != nil {
		t.Fatalf("StartRun failed: %v", err)
	}
	s1.Close()

	s2, err := Open(ctx, dbPath)
	if err != nil {
		t.Fatalf("second open failed: %v", err)
	}
	defer s2.Close()

	if _, err := s2.GetRun(ctx, id); err != nil {
		t.Errorf("GetRun after reopen failed: %v", err)
	}
}

func TestMigrations(t *testing.T) {
	s := newTestStorage(t)

	version, err := s.GetSchemaVersion(context.Background())
	if err != nil {
		t.Fatalf("GetSchemaVersion failed: %v", err)
	}
	if version != len(migrations) {
		t.Errorf("schema version = %d, want %d", version, len(migrations))
	}
}

func TestStartAndFinishRun(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	started := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	id, err := s.StartRun(ctx, "/jobs/a.txt", "abc123", started)
	if err != nil {
		t.Fatalf("StartRun failed: %v", err)
	}
	if id == "" {
		t.Fatal("StartRun returned empty id")
	}

	run, err := s.GetRun(ctx, id)
	if err != nil {
		t.Fatalf("GetRun failed: %v", err)
	}
	if run.Status != StatusRunning {
		t.Errorf("Status = %q, want %q", run.Status, StatusRunning)
	}
	if run.FinishedAt != nil {
		t.Errorf("FinishedAt = %v, want nil", run.FinishedAt)
	}
	if run.Duration() != 0 {
		t.Errorf("Duration() = %v, want 0", run.Duration())
	}

	finished := started.Add(90 * time.Second)
	outcome := RunOutcome{
		Status: StatusSucceeded,
		Counts: RunCounts{Total: 10, Significant: 4, Up: 3, Down: 1},
	}
	if err := s.FinishRun(ctx, id, finished, outcome); err != nil {
		t.Fatalf("FinishRun failed: %v", err)
	}

	run, err = s.GetRun(ctx, id)
	if err != nil {
		t.Fatalf("GetRun failed: %v", err)
	}
	if run.Status != StatusSucceeded {
		t.Errorf("Status = %q, want %q", run.Status, StatusSucceeded)
	}
	if run.JobPath != "/jobs/a.txt" {
		t.Errorf("JobPath = %q, want %q", run.JobPath, "/jobs/a.txt")
	}
	if run.JobHash != "abc123" {
		t.Errorf("JobHash = %q, want %q", run.JobHash, "abc123")
	}
	if want := version.Get().Short(); run.Version != want {
		t.Errorf("Version = %q, want %q", run.Version, want)
	}
	if run.Counts != outcome.Counts {
		t.Errorf("Counts = %+v, want %+v", run.Counts, outcome.Counts)
	}
	if run.Duration() != 90*time.Second {
		t.Errorf("Duration() = %v, want 90s", run.Duration())
	}
	if run.Error != "" {
		t.Errorf("Error = %q, want empty", run.Error)
	}
}

func TestFinishRun_Failed(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	id, err := s.StartRun(ctx, "/jobs/bad.txt", "", time.Now())
	if err != nil {
		t.Fatalf("StartRun failed: %v", err)
	}

	outcome := RunOutcome{Status: StatusFailed, ExitCode: 6, Err: errors.New("bad value for TOP_N_VAL")}
	if err := s.FinishRun(ctx, id, time.Now(), outcome); err != nil {
		t.Fatalf("FinishRun failed: %v", err)
	}

	run, err := s.GetRun(ctx, id)
	if err != nil {
		t.Fatalf("GetRun failed: %v", err)
	}
	if run.ExitCode != 6 {
		t.Errorf("ExitCode = %d, want 6", run.ExitCode)
	}
	if run.Error != "bad value for TOP_N_VAL" {
		t.Errorf("Error = %q, want %q", run.Error, "bad value for TOP_N_VAL")
	}
	if run.JobHash != "" {
		t.Errorf("JobHash = %q, want empty", run.JobHash)
	}
}

func TestRunNotFound(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	if _, err := s.GetRun(ctx, "missing"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("GetRun error = %v, want ErrRunNotFound", err)
	}
	err := s.FinishRun(ctx, "missing", time.Now(), RunOutcome{Status: StatusFailed})
	if !errors.Is(err, ErrRunNotFound) {
		t.Errorf("FinishRun error = %v, want ErrRunNotFound", err)
	}
}

func TestListRuns(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	var ids []string
	for i := 0; i < 3; i++ {
		id, err := s.StartRun(ctx, "/jobs/a.txt", "", base.Add(time.Duration(i)*time.Hour))
		if err != nil {
			t.Fatalf("StartRun failed: %v", err)
		}
		ids = append(ids, id)
	}

	runs, err := s.ListRuns(ctx, 0)
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("len(runs) = %d, want 3", len(runs))
	}
	if runs[0].ID != ids[2] {
		t.Errorf("runs[0].ID = %q, want most recent %q", runs[0].ID, ids[2])
	}

	runs, err = s.ListRuns(ctx, 2)
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(runs) != 2 {
		t.Errorf("len(runs) = %d, want 2", len(runs))
	}
}

func TestPruneRuns(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		if _, err := s.StartRun(ctx, "/jobs/a.txt", "", base.Add(time.Duration(i)*time.Minute)); err != nil {
			t.Fatalf("StartRun failed: %v", err)
		}
	}

	deleted, err := s.PruneRuns(ctx, 2)
	if err != nil {
		t.Fatalf("PruneRuns failed: %v", err)
	}
	if deleted != 3 {
		t.Errorf("deleted = %d, want 3", deleted)
	}

	runs, err := s.ListRuns(ctx, 0)
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(runs) != 2 {
		t.Errorf("len(runs) = %d, want 2", len(runs))
	}
}
