package cleanup

import (
	"context"
	"fmt"
	"log"

	"logsweep/internal/database"
	"logsweep/internal/fsops"
	"logsweep/internal/logging"
	"logsweep/internal/metrics"
	"logsweep/internal/safety"
	"logsweep/internal/scan"
)

// Result summarizes one RemoveSet call. Callers report success to the user
// regardless of Failed or Skipped.
type Result struct {
	Set        string
	Matched    int
	Removed    int
	Failed     int
	Skipped    int
	BytesFreed int64
}

// Cleaner removes file set members with rm -f semantics
type Cleaner struct {
	logger    *logging.Leveled
	scanner   *scan.Scanner
	deleter   fsops.Deleter
	validator *safety.Validator
	db        *database.DeletionDB // Optional deletion history
	runID     int64
}

// NewCleaner creates a Cleaner allowed to delete inside the given sets only
func NewCleaner(logger *log.Logger, db *database.DeletionDB, sets ...scan.FileSet) *Cleaner {
	metrics.Init()

	roots := make([]string, 0, len(sets))
	for _, s := range sets {
		roots = append(roots, s.Dir)
	}
	return &Cleaner{
		logger:    logging.NewLeveled(logger),
		scanner:   scan.NewScanner(logger),
		deleter:   fsops.OSDeleter{},
		validator: safety.NewValidator(roots),
		db:        db,
	}
}

// SetDeleter replaces the filesystem deleter (tests use fsops.FakeDeleter)
func (c *Cleaner) SetDeleter(d fsops.Deleter) {
	c.deleter = d
}

// SetValidator replaces the safety validator
func (c *Cleaner) SetValidator(v *safety.Validator) {
	c.validator = v
}

// SetRun sets the history run id removal attempts are recorded under
func (c *Cleaner) SetRun(runID int64) {
	c.runID = runID
}

// RemoveSet deletes every member of set the shell glob <dir>/*<ext> would
// match. Missing files count as removed, an empty match is a no-op, and
// individual failures are logged and counted but never returned. The
// returned error is non-nil only when the directory could not be listed or
// ctx was cancelled.
func (c *Cleaner) RemoveSet(ctx context.Context, set scan.FileSet) (Result, error) {
	res := Result{Set: set.Name}

	candidates, err := c.scanner.Match(set)
	if err != nil {
		c.logger.Error("Failed to list file set", "set", set.Name, "error", err)
		return res, fmt.Errorf("list %s: %w", set.Name, err)
	}
	res.Matched = len(candidates)

	if len(candidates) == 0 {
		c.logger.Info("Nothing to remove", "set", set.Name, "pattern", set.String())
		return res, nil
	}

	c.logger.Info("Starting removal", "set", set.Name, "candidates", len(candidates))

	force := fsops.ForceDeleter{Deleter: c.deleter}

	for _, cand := range candidates {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		if err := c.validator.ValidateDeleteTarget(cand.Path); err != nil {
			c.logger.Warn("Skipping unsafe target", "path", cand.Path, "reason", err)
			c.record(database.ActionSkip, cand, err.Error())
			metrics.RecordSkip(set.Name, err.Error())
			res.Skipped++
			continue
		}

		if err := force.Remove(cand.Path); err != nil {
			c.logger.Error("Failed to delete", "path", cand.Path, "error", err)
			c.record(database.ActionError, cand, err.Error())
			metrics.RecordRemoveError(set.Name)
			res.Failed++
			continue
		}

		c.record(database.ActionDelete, cand, "")
		metrics.RecordRemoval(set.Name, cand.Size)
		res.Removed++
		res.BytesFreed += cand.Size
	}

	c.logger.Info("Removal complete",
		"set", set.Name,
		"removed", res.Removed,
		"failed", res.Failed,
		"skipped", res.Skipped,
		"bytes_freed", res.BytesFreed,
	)

	return res, nil
}

// record writes one attempt to the history database, if configured.
// History failures never affect the sweep.
func (c *Cleaner) record(action string, cand scan.Candidate, errMsg string) {
	if c.db == nil {
		return
	}
	if err := c.db.RecordDeletion(c.runID, action, cand, errMsg); err != nil {
		c.logger.Error("Failed to record to database", "path", cand.Path, "error", err)
	}
}
