// Package disk reports filesystem capacity for the tree being swept.
package disk

import (
	"fmt"
	"syscall"
)

// Usage describes the filesystem holding a path
type Usage struct {
	TotalBytes  int64
	FreeBytes   int64 // Available to unprivileged users
	UsedPercent float64
}

// Stat returns the usage of the filesystem that contains path
func Stat(path string) (Usage, error) {
	var stat syscall.Statfs_t
	if err := syscall.Statfs(path, &stat); err != nil {
		return Usage{}, fmt.Errorf("statfs %s: %w", path, err)
	}

	u := Usage{
		TotalBytes: int64(stat.Blocks) * int64(stat.Bsize),
		FreeBytes:  int64(stat.Bavail) * int64(stat.Bsize),
	}
	if u.TotalBytes > 0 {
		u.UsedPercent = float64(u.TotalBytes-u.FreeBytes) / float64(u.TotalBytes) * 100.0
	}
	return u, nil
}
