// Package verify re-reads a patched archive from disk and confirms every
// field of a patch spec holds its expected value.
//
// Verification deliberately ignores the buffer the patch engine wrote from;
// it maps the file afresh so that a flush that silently lost data is caught.
// Integers must match exactly; floats must lie within Options.Tolerance.
//
// By default the check stops at the first mismatch. Options.All keeps going
// and reports every failing field.
package verify

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/joshuapare/regpatch/internal/archive"
	"github.com/joshuapare/regpatch/internal/format"
	"github.com/joshuapare/regpatch/internal/layout"
	"github.com/joshuapare/regpatch/internal/patch"
)

// DefaultTolerance is the absolute tolerance used for float fields.
const DefaultTolerance = 0.01

// Options controls a verification run.
type Options struct {
	Tolerance float64 // zero means DefaultTolerance
	All       bool    // report every mismatch instead of stopping at the first
	Logger    *slog.Logger
}

// Check is the outcome for a single field.
type Check struct {
	Step     string
	Record   string
	Field    string
	Offset   int
	Expected format.Value
	Actual   format.Value
	OK       bool
}

// Report lists the checks that were performed, in spec order.
type Report struct {
	Path     string
	Checks   []Check
	Failures []*format.VerificationFailure
}

// OK reports whether every performed check passed.
func (r *Report) OK() bool { return len(r.Failures) == 0 }

// StepOK reports whether every check of the named step ran and passed.
func (r *Report) StepOK(step string) bool {
	seen := false
	for _, c := range r.Checks {
		if c.Step != step {
			continue
		}
		if !c.OK {
			return false
		}
		seen = true
	}
	return seen
}

// File maps the archive at path and checks it against spec.
func File(path string, table *layout.Table, spec patch.Spec, opts Options) (*Report, error) {
	v, err := archive.Open(path)
	if err != nil {
		return nil, err
	}
	defer v.Close()

	rep, err := Reader(v, table, spec, opts)
	if rep != nil {
		rep.Path = path
	}
	return rep, err
}

// Reader checks an already opened archive against spec. A non-nil error
// wrapping format.ErrVerification means the archive was read successfully but
// at least one field did not match; the report is returned alongside it.
func Reader(r archive.Reader, table *layout.Table, spec patch.Spec, opts Options) (*Report, error) {
	if table == nil {
		table = layout.Default()
	}
	tol := opts.Tolerance
	if tol <= 0 {
		tol = DefaultTolerance
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	rep := &Report{}
	for _, st := range spec.Steps {
		for _, w := range st.Writes {
			off, f, err := table.Resolve(w.Record, w.Field, r.Len())
			if err != nil {
				return rep, fmt.Errorf("step %s: %w", st.Name, err)
			}
			actual, err := r.ReadValue(off, f.Type)
			if err != nil {
				return rep, fmt.Errorf("%s.%s: %w", w.Record, w.Field, err)
			}

			c := Check{
				Step:     st.Name,
				Record:   w.Record,
				Field:    w.Field,
				Offset:   off,
				Expected: w.Value,
				Actual:   actual,
				OK:       actual.Matches(w.Value, tol),
			}
			rep.Checks = append(rep.Checks, c)
			if c.OK {
				continue
			}

			failure := &format.VerificationFailure{
				Record:   w.Record,
				Field:    w.Field,
				Offset:   off,
				Expected: w.Value,
				Actual:   actual,
			}
			rep.Failures = append(rep.Failures, failure)
			logger.Warn("verification mismatch",
				"record", w.Record,
				"field", w.Field,
				"offset", fmt.Sprintf("0x%X", off),
				"expected", w.Value.String(),
				"actual", actual.String())

			if !opts.All {
				return rep, failure
			}
		}
	}

	if !rep.OK() {
		errs := make([]error, len(rep.Failures))
		for i, f := range rep.Failures {
			errs[i] = f
		}
		return rep, errors.Join(errs...)
	}
	return rep, nil
}
