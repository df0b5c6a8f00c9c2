package fsops

import (
	"errors"
	"io/fs"
	"os"
)

// OSDeleter implements Deleter using real os package calls
type OSDeleter struct{}

func (OSDeleter) Remove(path string) error {
	return os.Remove(path)
}

// ForceDeleter wraps a Deleter with rm -f semantics: a target that is
// already gone counts as removed.
type ForceDeleter struct {
	Deleter
}

func (f ForceDeleter) Remove(path string) error {
	err := f.Deleter.Remove(path)
	if err != nil && errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
