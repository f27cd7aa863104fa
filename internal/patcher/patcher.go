// Package patcher runs the full patch pipeline against an archive file:
//
//	lock → backup → load → apply → flush → unlock → verify
//
// Every stage fails loudly. Nothing is retried, and the archive on disk is
// only ever replaced as a whole by the flush stage, after every write of the
// patch has landed in memory.
package patcher

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/joshuapare/regpatch/internal/archive"
	"github.com/joshuapare/regpatch/internal/backup"
	"github.com/joshuapare/regpatch/internal/layout"
	"github.com/joshuapare/regpatch/internal/lock"
	"github.com/joshuapare/regpatch/internal/patch"
	"github.com/joshuapare/regpatch/internal/verify"
)

// Stage names used in errors and logs.
const (
	StageLock   = "lock"
	StageBackup = "backup"
	StageLoad   = "load"
	StageApply  = "apply"
	StageFlush  = "flush"
	StageVerify = "verify"
)

// Options configures a pipeline run. The zero value patches with the
// built-in layout and spec, takes no lock and verifies fail-fast.
type Options struct {
	Table        *layout.Table // nil means layout.Default()
	Spec         *patch.Spec   // nil means patch.DefaultSpec()
	BackupSuffix string        // empty means backup.DefaultSuffix
	Lock         bool
	DryRun       bool // apply to a copy; no backup, lock, flush or verify
	SkipVerify   bool
	VerifyAll    bool
	Tolerance    float64
	Logger       *slog.Logger
}

// Result describes what a run did. It is returned even on failure, filled in
// up to the failing stage.
type Result struct {
	ArchivePath string
	ArchiveSize int
	Backup      backup.Result
	Journal     *patch.Journal
	Report      *verify.Report
	DryRun      bool
	Flushed     bool
	StartTime   time.Time
	EndTime     time.Time
	Duration    time.Duration
}

// StageError ties a failure to the pipeline stage it came from.
type StageError struct {
	Stage string
	Err   error
}

// Error implements the error interface.
func (e *StageError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Stage, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *StageError) Unwrap() error { return e.Err }

// Patcher holds the resolved options for repeated runs.
type Patcher struct {
	opts   Options
	table  *layout.Table
	spec   patch.Spec
	engine *patch.Engine
	log    *slog.Logger
}

// New resolves defaults in opts.
func New(opts Options) *Patcher {
	p := &Patcher{opts: opts, table: opts.Table, log: opts.Logger}
	if p.table == nil {
		p.table = layout.Default()
	}
	if opts.Spec != nil {
		p.spec = *opts.Spec
	} else {
		p.spec = patch.DefaultSpec()
	}
	if p.log == nil {
		p.log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	p.engine = patch.NewEngine(patch.EngineConfig{Table: p.table, Logger: p.log})
	return p
}

// Spec returns the spec the patcher applies.
func (p *Patcher) Spec() patch.Spec { return p.spec }

// Table returns the layout table in use.
func (p *Patcher) Table() *layout.Table { return p.table }

// Run executes the pipeline against the archive at path.
func (p *Patcher) Run(ctx context.Context, path string) (res *Result, err error) {
	res = &Result{ArchivePath: path, DryRun: p.opts.DryRun, StartTime: time.Now()}
	defer func() {
		res.EndTime = time.Now()
		res.Duration = res.EndTime.Sub(res.StartTime)
		if err != nil {
			p.log.Debug("patch failed", "archive", path, "error", err)
		}
	}()

	if p.opts.DryRun {
		return res, p.dryRun(ctx, path, res)
	}

	if err := p.mutate(ctx, path, res); err != nil {
		return res, err
	}

	if p.opts.SkipVerify {
		return res, nil
	}
	if err := ctx.Err(); err != nil {
		return res, &StageError{Stage: StageVerify, Err: err}
	}
	rep, err := p.Verify(path)
	res.Report = rep
	return res, err
}

// mutate covers lock through flush; the lock is released before returning.
func (p *Patcher) mutate(ctx context.Context, path string, res *Result) (err error) {
	if p.opts.Lock {
		l, lockErr := lock.Acquire(path)
		if lockErr != nil {
			return &StageError{Stage: StageLock, Err: lockErr}
		}
		p.log.Debug("lock acquired", "path", l.Path())
		defer func() {
			if relErr := l.Release(); relErr != nil && err == nil {
				err = &StageError{Stage: StageLock, Err: relErr}
			}
		}()
	}

	if err := ctx.Err(); err != nil {
		return &StageError{Stage: StageBackup, Err: err}
	}
	res.Backup, err = backup.Ensure(path, p.opts.BackupSuffix)
	if err != nil {
		return &StageError{Stage: StageBackup, Err: err}
	}
	p.log.Info("backup ready", "path", res.Backup.Path, "created", res.Backup.Created)

	b, err := archive.Load(path)
	if err != nil {
		return &StageError{Stage: StageLoad, Err: err}
	}
	res.ArchiveSize = b.Len()

	res.Journal, err = p.engine.Apply(b, p.spec)
	if err != nil {
		return &StageError{Stage: StageApply, Err: err}
	}
	if err := ctx.Err(); err != nil {
		return &StageError{Stage: StageFlush, Err: err}
	}

	if err := b.Flush(path); err != nil {
		return &StageError{Stage: StageFlush, Err: err}
	}
	res.Flushed = true
	p.log.Info("archive flushed", "path", path, "bytes", b.Len(), "changed", len(res.Journal.Changed()))
	return nil
}

func (p *Patcher) dryRun(ctx context.Context, path string, res *Result) error {
	if err := ctx.Err(); err != nil {
		return &StageError{Stage: StageLoad, Err: err}
	}
	b, err := archive.Load(path)
	if err != nil {
		return &StageError{Stage: StageLoad, Err: err}
	}
	res.ArchiveSize = b.Len()
	res.Journal, err = p.engine.Simulate(b, p.spec)
	if err != nil {
		return &StageError{Stage: StageApply, Err: err}
	}
	return nil
}

// Verify checks the archive on disk against the patcher's spec.
func (p *Patcher) Verify(path string) (*verify.Report, error) {
	rep, err := verify.File(path, p.table, p.spec, verify.Options{
		Tolerance: p.opts.Tolerance,
		All:       p.opts.VerifyAll,
		Logger:    p.log,
	})
	if err != nil {
		return rep, &StageError{Stage: StageVerify, Err: err}
	}
	p.log.Info("verification passed", "path", path, "checks", len(rep.Checks))
	return rep, nil
}
