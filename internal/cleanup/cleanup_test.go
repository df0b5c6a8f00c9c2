package cleanup

import (
	"context"
	"errors"
	"log"
	"os"
	"path/filepath"
	"testing"
	"time"

	"logsweep/internal/database"
	"logsweep/internal/fsops"
	"logsweep/internal/safety"
	"logsweep/internal/scan"
)

func writeFiles(t *testing.T, root string, rel ...string) {
	t.Helper()
	for _, r := range rel {
		p := filepath.Join(root, filepath.FromSlash(r))
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			t.Fatalf("Failed to create dir for %s: %v", p, err)
		}
		if err := os.WriteFile(p, []byte("test"), 0644); err != nil {
			t.Fatalf("Failed to create test file: %v", err)
		}
	}
}

func exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

// TestRemoveSetIsShallow proves only direct children matching the pattern go
func TestRemoveSetIsShallow(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root,
		"logs/a.log",
		"logs/b.log",
		"logs/.hidden.log",
		"logs/keep.txt",
		"logs/2024/old.log",
	)

	logs := scan.LogFileSet(root)
	cleaner := NewCleaner(log.Default(), nil, logs)

	res, err := cleaner.RemoveSet(context.Background(), logs)
	if err != nil {
		t.Fatalf("RemoveSet failed: %v", err)
	}

	if res.Removed != 2 || res.Failed != 0 || res.Skipped != 0 {
		t.Errorf("unexpected result: %+v", res)
	}
	if res.BytesFreed != 8 {
		t.Errorf("BytesFreed = %d, want 8", res.BytesFreed)
	}

	for _, gone := range []string{"logs/a.log", "logs/b.log"} {
		if exists(filepath.Join(root, gone)) {
			t.Errorf("%s should have been removed", gone)
		}
	}
	for _, kept := range []string{"logs/.hidden.log", "logs/keep.txt", "logs/2024/old.log"} {
		if !exists(filepath.Join(root, kept)) {
			t.Errorf("%s should have been kept", kept)
		}
	}
}

// TestRemoveSetTargetsOnlyMatches proves the deleter sees exactly the matches
func TestRemoveSetTargetsOnlyMatches(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "data/output/r.csv", "data/output/s.csv", "data/output/notes.md")

	outputs := scan.OutputFileSet(root)
	fake := &fsops.FakeDeleter{}
	cleaner := NewCleaner(log.Default(), nil, outputs)
	cleaner.SetDeleter(fake)

	if _, err := cleaner.RemoveSet(context.Background(), outputs); err != nil {
		t.Fatalf("RemoveSet failed: %v", err)
	}

	want := []string{
		"rm:" + filepath.Join(outputs.Dir, "r.csv"),
		"rm:" + filepath.Join(outputs.Dir, "s.csv"),
	}
	if len(fake.Calls) != len(want) {
		t.Fatalf("Expected %d delete calls, got %d: %v", len(want), len(fake.Calls), fake.Calls)
	}
	for i := range want {
		if fake.Calls[i] != want[i] {
			t.Errorf("call[%d] = %s, want %s", i, fake.Calls[i], want[i])
		}
	}
}

// TestRemoveSetMissingDirectory proves zero matches is a silent no-op
func TestRemoveSetMissingDirectory(t *testing.T) {
	logs := scan.LogFileSet(t.TempDir())
	fake := &fsops.FakeDeleter{}
	cleaner := NewCleaner(log.Default(), nil, logs)
	cleaner.SetDeleter(fake)

	res, err := cleaner.RemoveSet(context.Background(), logs)
	if err != nil {
		t.Fatalf("RemoveSet on missing dir returned %v", err)
	}
	if res.Matched != 0 || len(fake.Calls) != 0 {
		t.Errorf("expected no work, got %+v calls=%v", res, fake.Calls)
	}
}

// TestRemoveSetSuppressesFailures proves failures are counted, not returned
func TestRemoveSetSuppressesFailures(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "logs/a.log", "logs/b.log", "logs/c.log")
	logs := scan.LogFileSet(root)

	// a.log vanished before removal (success), b.log cannot be removed
	fake := &fsops.FakeDeleter{Errs: map[string]error{
		filepath.Join(logs.Dir, "a.log"): os.ErrNotExist,
		filepath.Join(logs.Dir, "b.log"): errors.New("permission denied"),
	}}
	cleaner := NewCleaner(log.Default(), nil, logs)
	cleaner.SetDeleter(fake)

	res, err := cleaner.RemoveSet(context.Background(), logs)
	if err != nil {
		t.Fatalf("RemoveSet returned %v, failures must be suppressed", err)
	}
	if res.Removed != 2 || res.Failed != 1 {
		t.Errorf("unexpected result: %+v", res)
	}
}

// TestSafetyValidatorBlocksDeletion proves validator integration works
func TestSafetyValidatorBlocksDeletion(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "logs/a.log")
	logs := scan.LogFileSet(root)

	fake := &fsops.FakeDeleter{}
	cleaner := NewCleaner(log.Default(), nil, logs)
	cleaner.SetDeleter(fake)
	// Validator that allows some other tree only
	cleaner.SetValidator(safety.NewValidator([]string{filepath.Join(root, "elsewhere")}))

	res, err := cleaner.RemoveSet(context.Background(), logs)
	if err != nil {
		t.Fatalf("RemoveSet failed: %v", err)
	}
	if len(fake.Calls) != 0 {
		t.Errorf("SAFETY VIOLATION: expected 0 delete calls, got %v", fake.Calls)
	}
	if res.Skipped != 1 || res.Removed != 0 {
		t.Errorf("unexpected result: %+v", res)
	}
}

// TestRemoveSetCancelled proves a cancelled context stops before deleting
func TestRemoveSetCancelled(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "logs/a.log")
	logs := scan.LogFileSet(root)

	fake := &fsops.FakeDeleter{}
	cleaner := NewCleaner(log.Default(), nil, logs)
	cleaner.SetDeleter(fake)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := cleaner.RemoveSet(ctx, logs); !errors.Is(err, context.Canceled) {
		t.Fatalf("RemoveSet = %v, want context.Canceled", err)
	}
	if len(fake.Calls) != 0 {
		t.Errorf("expected no delete calls after cancel, got %v", fake.Calls)
	}
}

// TestRemoveSetRecordsHistory proves every attempt lands in the database
func TestRemoveSetRecordsHistory(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "logs/a.log", "logs/b.log")
	logs := scan.LogFileSet(root)

	db, err := database.NewDeletionDB(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	runID, err := db.BeginRun(time.Now(), 2, 0)
	if err != nil {
		t.Fatalf("BeginRun failed: %v", err)
	}

	fake := &fsops.FakeDeleter{Errs: map[string]error{
		filepath.Join(logs.Dir, "b.log"): errors.New("busy"),
	}}
	cleaner := NewCleaner(log.Default(), db, logs)
	cleaner.SetDeleter(fake)
	cleaner.SetRun(runID)

	if _, err := cleaner.RemoveSet(context.Background(), logs); err != nil {
		t.Fatalf("RemoveSet failed: %v", err)
	}

	records, err := db.GetDeletionsByRun(runID)
	if err != nil {
		t.Fatalf("GetDeletionsByRun failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].Action != database.ActionDelete || records[1].Action != database.ActionError {
		t.Errorf("unexpected actions: %s, %s", records[0].Action, records[1].Action)
	}
	if records[1].ErrorMessage != "busy" {
		t.Errorf("ErrorMessage = %q, want busy", records[1].ErrorMessage)
	}
}
