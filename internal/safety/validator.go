package safety

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

var (
	ErrInvalidPath    = errors.New("invalid path")
	ErrOutsideAllowed = errors.New("outside allowed roots")
	ErrTraversal      = errors.New("path traversal detected")
	ErrNotDirectChild = errors.New("not a direct child of an allowed root")
	ErrIsDirectory    = errors.New("target is a directory")
)

// Validator enforces the safety contract for all delete operations
type Validator struct {
	AllowedRoots []string
}

// NewValidator creates a validator for the given set roots
func NewValidator(allowed []string) *Validator {
	return &Validator{
		AllowedRoots: normalizeRoots(allowed),
	}
}

// ValidateDeleteTarget is the single-source-of-truth for delete authorization
// Returns typed error on safety violation. A target that no longer exists
// passes: removing it is a no-op under force-delete.
func (v *Validator) ValidateDeleteTarget(path string) error {
	// 1. Detect path traversal in raw input
	if DetectTraversal(path) {
		return ErrTraversal
	}

	// 2. Normalize path to absolute, cleaned form
	p, err := NormalizePath(path)
	if err != nil {
		return err
	}

	// 3. Ensure within allowed roots, one level deep
	root, ok := allowedRootOf(p, v.AllowedRoots)
	if !ok {
		return ErrOutsideAllowed
	}
	if filepath.Dir(p) != root {
		return ErrNotDirectChild
	}

	// 4. Never remove directories. Lstat so a symlink is judged as itself.
	info, err := os.Lstat(p)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if info.IsDir() {
		return ErrIsDirectory
	}

	return nil
}

// NormalizePath converts path to absolute, cleaned form
func NormalizePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", ErrInvalidPath
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", ErrInvalidPath
	}
	return filepath.Clean(abs), nil
}

// DetectTraversal blocks any ".." segment in raw input
func DetectTraversal(raw string) bool {
	parts := strings.Split(filepath.ToSlash(raw), "/")
	for _, p := range parts {
		if p == ".." {
			return true
		}
	}
	return false
}

// IsWithinAllowedRoots checks if path is within any allowed root
func IsWithinAllowedRoots(path string, allowedRoots []string) bool {
	_, ok := allowedRootOf(path, allowedRoots)
	return ok
}

func allowedRootOf(path string, allowedRoots []string) (string, bool) {
	p := filepath.Clean(path)
	for _, r := range allowedRoots {
		if hasPathPrefix(p, r) && p != filepath.Clean(r) {
			return filepath.Clean(r), true
		}
	}
	return "", false
}

// hasPathPrefix checks if path has the given prefix
func hasPathPrefix(path, prefix string) bool {
	path = filepath.Clean(path)
	prefix = filepath.Clean(prefix)

	if prefix == string(os.PathSeparator) {
		return filepath.IsAbs(path)
	}
	if path == prefix {
		return true
	}
	return strings.HasPrefix(path, prefix+string(os.PathSeparator))
}

// normalizeRoots converts slice of roots to absolute, cleaned paths
func normalizeRoots(roots []string) []string {
	out := make([]string, 0, len(roots))
	for _, r := range roots {
		if strings.TrimSpace(r) == "" {
			continue
		}
		abs, err := filepath.Abs(r)
		if err != nil {
			continue
		}
		out = append(out, filepath.Clean(abs))
	}
	return out
}
