// Package patch applies a Spec to an in-memory archive buffer.
//
// Apply works in two phases. Planning resolves every write against the layout
// table and checks its type before a single byte changes; an archive that is
// too short for any target record is rejected as a whole. Applying then
// performs the typed writes in order, journaling old and new bytes. If a write
// fails the journal rolls the buffer back, and the caller must not flush it.
package patch

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/joshuapare/regpatch/internal/archive"
	"github.com/joshuapare/regpatch/internal/format"
	"github.com/joshuapare/regpatch/internal/layout"
)

// Engine applies patch specs using a layout table.
type Engine struct {
	table  *layout.Table
	logger *slog.Logger
}

// EngineConfig configures an Engine.
type EngineConfig struct {
	// Table resolves record and field names. Nil means layout.Default().
	Table *layout.Table
	// Logger receives one debug line per write. Nil discards.
	Logger *slog.Logger
}

// NewEngine creates an engine.
func NewEngine(cfg EngineConfig) *Engine {
	e := &Engine{table: cfg.Table, logger: cfg.Logger}
	if e.table == nil {
		e.table = layout.Default()
	}
	if e.logger == nil {
		e.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return e
}

// Table returns the layout table in use.
func (e *Engine) Table() *layout.Table { return e.table }

// Planned is a write with its resolved absolute offset.
type Planned struct {
	Step   string
	Write  Write
	Offset int
	Field  layout.Field
}

// Plan resolves every write in spec against an archive of bufLen bytes.
func (e *Engine) Plan(spec Spec, bufLen int) ([]Planned, error) {
	plan := make([]Planned, 0, spec.Len())
	for _, st := range spec.Steps {
		for _, w := range st.Writes {
			off, f, err := e.table.Resolve(w.Record, w.Field, bufLen)
			if err != nil {
				return nil, fmt.Errorf("step %s: %w", st.Name, err)
			}
			if f.Type != w.Value.Type {
				return nil, fmt.Errorf("step %s: %w: %s.%s is %s, value is %s",
					st.Name, format.ErrTypeMismatch, w.Record, w.Field, f.Type, w.Value.Type)
			}
			plan = append(plan, Planned{Step: st.Name, Write: w, Offset: off, Field: f})
		}
	}
	return plan, nil
}

// Apply writes spec into b. On error b is restored to its prior contents.
func (e *Engine) Apply(b *archive.Buffer, spec Spec) (*Journal, error) {
	plan, err := e.Plan(spec, b.Len())
	if err != nil {
		return nil, err
	}

	j := NewJournal()
	data := b.Bytes()
	for _, p := range plan {
		width := p.Field.Type.Width()
		before := append([]byte(nil), data[p.Offset:p.Offset+width]...)

		if err := b.WriteValue(p.Offset, p.Write.Value); err != nil {
			rolled, rbErr := j.Rollback(data)
			if rbErr != nil {
				return j, fmt.Errorf("%s.%s: %w (rollback stopped after %d writes: %v)",
					p.Write.Record, p.Write.Field, err, rolled, rbErr)
			}
			return j, fmt.Errorf("%s.%s: %w", p.Write.Record, p.Write.Field, err)
		}

		j.Add(p.Step, p.Write, p.Offset, before, data[p.Offset:p.Offset+width])
		if err := j.MarkApplied(); err != nil {
			return j, err
		}
		e.logger.Debug("field written",
			"step", p.Step,
			"record", p.Write.Record,
			"field", p.Write.Field,
			"offset", fmt.Sprintf("0x%X", p.Offset),
			"value", p.Write.Value.String())
	}
	return j, nil
}

// Simulate applies spec to a copy of b and returns the journal. b is not modified.
func (e *Engine) Simulate(b *archive.Buffer, spec Spec) (*Journal, error) {
	return e.Apply(b.Clone(), spec)
}
