// Package sweep runs one interactive cleanup pass over the logs and
// data/output directories of a working tree.
package sweep

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"time"

	"logsweep/internal/cleanup"
	"logsweep/internal/config"
	"logsweep/internal/console"
	"logsweep/internal/database"
	"logsweep/internal/disk"
	"logsweep/internal/fsops"
	"logsweep/internal/logging"
	"logsweep/internal/metrics"
	"logsweep/internal/prompt"
	"logsweep/internal/scan"
)

// ErrArtifactInFileSet reports a configured log, history or metrics file
// that the sweep would itself count or remove.
var ErrArtifactInFileSet = errors.New("configured file lies inside a swept file set")

// CheckArtifacts rejects configured files under root that match either file
// set. Relative paths are taken relative to root.
func CheckArtifacts(root string, cfg *config.Config) error {
	if cfg == nil {
		return nil
	}
	sets := []scan.FileSet{scan.LogFileSet(root), scan.OutputFileSet(root)}
	artifacts := []struct{ key, path string }{
		{"log_file", cfg.LogFile},
		{"database_path", cfg.DatabasePath},
		{"metrics_textfile", cfg.MetricsTextfile},
	}

	for _, a := range artifacts {
		if a.path == "" {
			continue
		}
		p := a.path
		if !filepath.IsAbs(p) {
			p = filepath.Join(root, p)
		}
		for _, set := range sets {
			if set.Holds(p) {
				return fmt.Errorf("%w: %s %s matches %s", ErrArtifactInFileSet, a.key, a.path, set.String())
			}
		}
	}
	return nil
}

// Options configures a Tool. Only Root, In and Out are required.
type Options struct {
	Root    string
	In      io.Reader
	Out     io.Writer
	Config  *config.Config
	Logger  *log.Logger
	DB      *database.DeletionDB // Optional deletion history
	Deleter fsops.Deleter        // Optional, defaults to the real filesystem
}

// Outcome describes what a run did
type Outcome struct {
	LogsFound    int
	OutputsFound int
	Prompted     bool
	Attempts     int
	Choice       prompt.Choice
	Message      string
	Results      []cleanup.Result
}

// Tool is the interactive cleanup flow: count, prompt, dispatch, report
type Tool struct {
	root    string
	cfg     *config.Config
	logger  *logging.Leveled
	in      *bufio.Reader
	out     *console.Console
	db      *database.DeletionDB
	scanner *scan.Scanner
	cleaner *cleanup.Cleaner
	logs    scan.FileSet
	outputs scan.FileSet
}

// New creates a Tool for the tree rooted at opts.Root
func New(opts Options) *Tool {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}

	logs := scan.LogFileSet(opts.Root)
	outputs := scan.OutputFileSet(opts.Root)

	cleaner := cleanup.NewCleaner(opts.Logger, opts.DB, logs, outputs)
	if opts.Deleter != nil {
		cleaner.SetDeleter(opts.Deleter)
	}

	return &Tool{
		root:    opts.Root,
		cfg:     cfg,
		logger:  logging.NewLeveled(opts.Logger),
		in:      bufio.NewReader(opts.In),
		out:     console.New(opts.Out, cfg.Color),
		db:      opts.DB,
		scanner: scan.NewScanner(opts.Logger),
		cleaner: cleaner,
		logs:    logs,
		outputs: outputs,
	}
}

// Run performs one pass. Every branch the user can reach, invalid input
// included, returns a nil error. A non-nil error means ctx was cancelled or
// the configuration points an artifact into a file set (ErrArtifactInFileSet,
// checked before anything is counted or written).
func (t *Tool) Run(ctx context.Context) (*Outcome, error) {
	if err := CheckArtifacts(t.root, t.cfg); err != nil {
		return nil, err
	}

	start := time.Now()
	metrics.Init()
	defer t.finishMetrics(start)

	out := &Outcome{
		LogsFound:    t.scanner.Count(t.logs),
		OutputsFound: t.scanner.Count(t.outputs),
	}
	metrics.RecordFound(t.logs.Name, out.LogsFound)
	metrics.RecordFound(t.outputs.Name, out.OutputsFound)

	runID := t.beginRun(start, out)

	if out.LogsFound == 0 && out.OutputsFound == 0 {
		out.Choice = prompt.None
		out.Message = prompt.MsgNothingFound
		t.out.Notice(out.Message)
		t.finishRun(runID, "nothing_found", out.Message)
		return out, nil
	}

	t.printMenu(out)
	out.Prompted = true

	choice, warned, err := t.ask(ctx, out)
	if err != nil {
		t.finishRun(runID, "interrupted", "")
		return out, err
	}
	out.Choice = choice
	metrics.SetLastChoice(choice.String())

	removeLogs, removeOutputs := choice.Removes()
	if removeLogs {
		if err := t.remove(ctx, out, t.logs); err != nil {
			t.finishRun(runID, "interrupted", "")
			return out, err
		}
	}
	if removeOutputs {
		if err := t.remove(ctx, out, t.outputs); err != nil {
			t.finishRun(runID, "interrupted", "")
			return out, err
		}
	}

	out.Message = choice.Message()
	if !warned {
		t.report(choice, out.Message)
	}
	t.finishRun(runID, choice.String(), out.Message)

	t.logger.Info("Sweep complete", "choice", choice, "logs_found", out.LogsFound, "outputs_found", out.OutputsFound)
	return out, nil
}

func (t *Tool) printMenu(out *Outcome) {
	t.out.Heading("Cleanup options:")
	t.out.Println("  y or Enter  remove logs and output files")
	t.out.Println("  n           remove nothing")
	t.out.Println("  l           remove logs only")
	t.out.Println("  o           remove output files only")
	t.out.Info(fmt.Sprintf("Number of log files: %d", out.LogsFound))
	t.out.Info(fmt.Sprintf("Number of output files: %d", out.OutputsFound))
}

// ask prompts until a valid choice is read, the attempt budget is used up,
// or input ends. With the default budget of one attempt this is a single
// read whatever the answer. warned is true when input ended right after the
// invalid message was printed, so the caller must not print it again.
func (t *Tool) ask(ctx context.Context, out *Outcome) (choice prompt.Choice, warned bool, err error) {
	attempts := t.cfg.Attempts()

	for {
		out.Attempts++
		t.out.Prompt("Remove files? [Y/n/l/o]: ")

		choice, err := t.read(ctx)
		if err != nil {
			if !errors.Is(err, io.EOF) {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return prompt.Invalid, false, ctxErr
				}
				t.logger.Error("Failed to read input", "error", err)
			}
			// Input ended without an answer: finish the prompt line
			t.out.Println("")
			return prompt.Invalid, out.Attempts > 1, nil
		}

		if choice != prompt.Invalid || out.Attempts >= attempts {
			return choice, false, nil
		}
		t.out.Failure(prompt.MsgInvalid)
	}
}

type readResult struct {
	choice prompt.Choice
	err    error
}

// read waits for one line, giving up when ctx is cancelled
func (t *Tool) read(ctx context.Context) (prompt.Choice, error) {
	ch := make(chan readResult, 1)
	go func() {
		c, err := prompt.ReadChoice(t.in)
		ch <- readResult{choice: c, err: err}
	}()

	select {
	case <-ctx.Done():
		return prompt.Invalid, ctx.Err()
	case r := <-ch:
		return r.choice, r.err
	}
}

func (t *Tool) remove(ctx context.Context, out *Outcome, set scan.FileSet) error {
	res, err := t.cleaner.RemoveSet(ctx, set)
	out.Results = append(out.Results, res)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		// Listing failures behave like an empty glob under rm -f
		t.logger.Warn("Removal skipped", "set", set.Name, "error", err)
	}
	return nil
}

func (t *Tool) report(choice prompt.Choice, msg string) {
	switch choice {
	case prompt.Invalid:
		t.out.Failure(msg)
	case prompt.None:
		t.out.Notice(msg)
	default:
		t.out.Success(msg)
	}
}

func (t *Tool) beginRun(start time.Time, out *Outcome) int64 {
	if t.db == nil {
		return 0
	}
	runID, err := t.db.BeginRun(start, out.LogsFound, out.OutputsFound)
	if err != nil {
		t.logger.Error("Failed to record run start", "error", err)
		return 0
	}
	t.cleaner.SetRun(runID)
	return runID
}

func (t *Tool) finishRun(runID int64, choice, msg string) {
	if t.db == nil || runID == 0 {
		return
	}
	if err := t.db.FinishRun(runID, choice, msg); err != nil {
		t.logger.Error("Failed to record run outcome", "error", err)
	}
}

func (t *Tool) finishMetrics(start time.Time) {
	metrics.SweepDuration.Observe(time.Since(start).Seconds())
	metrics.RecordSweepRun()

	if u, err := disk.Stat(t.root); err != nil {
		t.logger.Warn("Disk usage unavailable", "path", t.root, "error", err)
	} else {
		metrics.RecordDiskUsage(u.FreeBytes, u.UsedPercent)
		t.logger.Info("Disk usage", "free_bytes", u.FreeBytes, "used_percent", u.UsedPercent)
	}

	if t.cfg.MetricsTextfile == "" {
		return
	}
	if err := metrics.WriteTextfile(t.cfg.MetricsTextfile); err != nil {
		t.logger.Error("Failed to write metrics", "error", err)
	}
}
