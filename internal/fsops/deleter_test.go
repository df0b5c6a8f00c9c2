package fsops

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

func TestForceDeleterIgnoresMissing(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "gone.log")

	if err := (OSDeleter{}).Remove(missing); !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("OSDeleter.Remove(missing) = %v, want ErrNotExist", err)
	}
	if err := (ForceDeleter{OSDeleter{}}).Remove(missing); err != nil {
		t.Fatalf("ForceDeleter.Remove(missing) = %v, want nil", err)
	}
}

func TestForceDeleterRemovesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.log")
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	if err := (ForceDeleter{OSDeleter{}}).Remove(path); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("Expected %s to be removed, stat err = %v", path, err)
	}
}

func TestForceDeleterPassesOtherErrors(t *testing.T) {
	denied := errors.New("permission denied")
	fake := &FakeDeleter{Errs: map[string]error{"/x/a.log": denied}}

	err := (ForceDeleter{fake}).Remove("/x/a.log")
	if !errors.Is(err, denied) {
		t.Fatalf("Remove = %v, want %v", err, denied)
	}
	if len(fake.Calls) != 1 || fake.Calls[0] != "rm:/x/a.log" {
		t.Errorf("Unexpected calls: %v", fake.Calls)
	}
}
