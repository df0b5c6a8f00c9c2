package scan

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, root string, rel ...string) {
	t.Helper()
	for _, r := range rel {
		p := filepath.Join(root, filepath.FromSlash(r))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte("data"), 0o644))
	}
}

func TestFileSets(t *testing.T) {
	root := "/srv/app"

	logs := LogFileSet(root)
	assert.Equal(t, SetLogs, logs.Name)
	assert.Equal(t, "/srv/app/logs", logs.Dir)
	assert.Equal(t, "*.log", logs.Pattern())

	outputs := OutputFileSet(root)
	assert.Equal(t, SetOutputs, outputs.Name)
	assert.Equal(t, "/srv/app/data/output", outputs.Dir)
	assert.Equal(t, "/srv/app/data/output/*.csv", outputs.String())
}

func TestCountMissingDirectoryIsZero(t *testing.T) {
	s := NewScanner(nil)
	root := t.TempDir()

	assert.Equal(t, 0, s.Count(LogFileSet(root)))
	assert.Equal(t, 0, s.Count(OutputFileSet(root)))
}

func TestCountIsRecursive(t *testing.T) {
	root := t.TempDir()
	touch(t, root,
		"logs/a.log",
		"logs/b.log",
		"logs/.hidden.log",
		"logs/notes.txt",
		"logs/2024/old.log",
		"logs/2024/deep/older.log",
		"data/output/r.csv",
		"data/output/r.csv.bak",
		"data/output/archive/q.csv",
	)
	// Directory names never count
	require.NoError(t, os.MkdirAll(filepath.Join(root, "logs", "dir.log"), 0o755))

	s := NewScanner(nil)
	assert.Equal(t, 5, s.Count(LogFileSet(root)))
	assert.Equal(t, 2, s.Count(OutputFileSet(root)))
}

func TestMatchIsShallowAndSkipsHidden(t *testing.T) {
	root := t.TempDir()
	touch(t, root,
		"logs/a.log",
		"logs/b.log",
		"logs/.hidden.log",
		"logs/notes.txt",
		"logs/2024/old.log",
	)
	require.NoError(t, os.MkdirAll(filepath.Join(root, "logs", "dir.log"), 0o755))

	s := NewScanner(nil)
	got, err := s.Match(LogFileSet(root))
	require.NoError(t, err)

	var paths []string
	for _, c := range got {
		assert.Equal(t, SetLogs, c.Set)
		assert.EqualValues(t, 4, c.Size)
		paths = append(paths, c.Path)
	}
	assert.Equal(t, []string{
		filepath.Join(root, "logs", "a.log"),
		filepath.Join(root, "logs", "b.log"),
	}, paths)
}

func TestMatchMissingDirectoryIsEmpty(t *testing.T) {
	s := NewScanner(nil)

	got, err := s.Match(OutputFileSet(t.TempDir()))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestMatchRootWithGlobMetacharacters(t *testing.T) {
	root := filepath.Join(t.TempDir(), "run[1]")
	touch(t, root, "data/output/r.csv")

	got, err := NewScanner(nil).Match(OutputFileSet(root))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, filepath.Join(root, "data", "output", "r.csv"), got[0].Path)
}

func TestFileSetHolds(t *testing.T) {
	logs := LogFileSet("/srv/app")
	outputs := OutputFileSet("/srv/app")

	tests := []struct {
		set  FileSet
		path string
		want bool
	}{
		{logs, "/srv/app/logs/sweep.log", true},
		{logs, "/srv/app/logs/2024/deep/sweep.log", true},
		{logs, "/srv/app/logs/.sweep.log", true},
		{logs, "/srv/app/logs/sweep.txt", false},
		{logs, "/srv/app/logs", false},
		{logs, "/srv/app/top.log", false},
		{logs, "/srv/app/logs-old/sweep.log", false},
		{outputs, "/srv/app/data/output/m.csv", true},
		{outputs, "/srv/app/data/output/run1/m.csv", true},
		{outputs, "/srv/app/data/m.csv", false},
		{outputs, "/srv/app/data/output/history.db", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.set.Holds(tt.path))
		})
	}
}
