package scan

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"logsweep/internal/logging"
)

const (
	LogsDir    = "logs"
	OutputsDir = "data/output"

	SetLogs    = "logs"
	SetOutputs = "outputs"
)

// FileSet is one family of files the sweep manages: every file matching
// *<Ext> under Dir. It carries no list of its own; members are read from
// the filesystem each time they are needed.
type FileSet struct {
	Name string
	Dir  string
	Ext  string
}

// LogFileSet is *.log under <root>/logs
func LogFileSet(root string) FileSet {
	return FileSet{Name: SetLogs, Dir: filepath.Join(root, LogsDir), Ext: ".log"}
}

// OutputFileSet is *.csv under <root>/data/output
func OutputFileSet(root string) FileSet {
	return FileSet{Name: SetOutputs, Dir: filepath.Join(root, filepath.FromSlash(OutputsDir)), Ext: ".csv"}
}

// Pattern is the shell pattern for members of the set
func (s FileSet) Pattern() string {
	return "*" + s.Ext
}

func (s FileSet) String() string {
	return filepath.Join(s.Dir, s.Pattern())
}

// Holds reports whether path is one Count would count: a name matching the
// pattern at any depth below Dir. Both paths are expected to be absolute.
func (s FileSet) Holds(path string) bool {
	rel, err := filepath.Rel(s.Dir, path)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return false
	}
	return matchName(s, filepath.Base(path))
}

type Candidate struct {
	Path    string
	Set     string
	Size    int64
	ModTime time.Time
}

// Scanner counts and lists file set members
type Scanner struct {
	logger *logging.Leveled
}

// NewScanner creates a new Scanner with the given logger
func NewScanner(logger *log.Logger) *Scanner {
	return &Scanner{logger: logging.NewLeveled(logger)}
}

// Count walks the set directory recursively and counts non-directory entries
// whose name matches the pattern, hidden names included. A missing
// directory counts zero. Unreadable subtrees are skipped.
func (s *Scanner) Count(set FileSet) int {
	count := 0

	err := filepath.WalkDir(set.Dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) && path == set.Dir {
				return nil
			}
			s.logger.Warn("Skipping unreadable path", "set", set.Name, "path", path, "error", err)
			if d != nil && d.IsDir() && path != set.Dir {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if matchName(set, d.Name()) {
			count++
		}
		return nil
	})
	if err != nil {
		s.logger.Warn("Count walk aborted", "set", set.Name, "error", err)
	}

	s.logger.Info("Counted file set", "set", set.Name, "dir", set.Dir, "count", count)
	return count
}

// Match lists the direct children of the set directory that the shell glob
// <dir>/*<ext> would expand to: hidden names are excluded, directories are
// excluded. No match (or no directory) is an empty result, not an error.
func (s *Scanner) Match(set FileSet) ([]Candidate, error) {
	entries, err := os.ReadDir(set.Dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read %s: %w", set.Dir, err)
	}

	var candidates []Candidate
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, ".") || !matchName(set, name) {
			continue
		}
		if entry.IsDir() {
			continue
		}

		cand := Candidate{Path: filepath.Join(set.Dir, name), Set: set.Name}
		if info, err := entry.Info(); err == nil {
			cand.Size = info.Size()
			cand.ModTime = info.ModTime()
		}
		candidates = append(candidates, cand)
	}

	return candidates, nil
}

func matchName(set FileSet, name string) bool {
	ok, err := filepath.Match(set.Pattern(), name)
	return err == nil && ok
}
