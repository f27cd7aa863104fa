// Package layout describes where the patchable records live inside a
// regulation archive.
//
// A record instance starts at BaseOffset + Index*Stride; each field sits at a
// fixed offset from that start. The Default table is the single source of
// truth for every address the patcher touches and matches what the game's
// own param loader reads at runtime.
package layout

import (
	"fmt"

	"github.com/joshuapare/regpatch/internal/buf"
	"github.com/joshuapare/regpatch/internal/format"
)

// Field is one typed slot inside a record.
type Field struct {
	Name   string
	Offset int // relative to the record start
	Type   format.FieldType
}

// Record locates a single record instance within its region.
type Record struct {
	Name       string
	BaseOffset int // start of the region holding records of this kind
	Stride     int // bytes per record
	Index      int // zero-based instance within the region
	Fields     []Field
}

// Start returns the absolute offset of the record instance.
func (r Record) Start() (int, bool) {
	return buf.RecordOffset(r.BaseOffset, r.Index, r.Stride, 0)
}

// Field looks up a field by name.
func (r Record) Field(name string) (Field, bool) {
	for _, f := range r.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// FieldOffset returns the absolute offset of f within the archive.
func (r Record) FieldOffset(f Field) (int, bool) {
	return buf.RecordOffset(r.BaseOffset, r.Index, r.Stride, f.Offset)
}

func (r Record) validate() error {
	if r.Name == "" {
		return fmt.Errorf("layout: record with empty name")
	}
	if r.Stride <= 0 {
		return fmt.Errorf("layout: record %s: stride must be positive, got %d", r.Name, r.Stride)
	}
	if r.BaseOffset < 0 || r.Index < 0 {
		return fmt.Errorf("layout: record %s: negative base offset or index", r.Name)
	}
	if len(r.Fields) == 0 {
		return fmt.Errorf("layout: record %s has no fields", r.Name)
	}
	seen := make(map[string]struct{}, len(r.Fields))
	for _, f := range r.Fields {
		if _, dup := seen[f.Name]; dup {
			return fmt.Errorf("layout: record %s: duplicate field %q", r.Name, f.Name)
		}
		seen[f.Name] = struct{}{}
		if f.Type.Width() == 0 {
			return fmt.Errorf("layout: %s.%s: invalid field type", r.Name, f.Name)
		}
		if err := buf.CheckRange(r.Stride, f.Offset, f.Type.Width()); err != nil {
			return fmt.Errorf("layout: %s.%s does not fit in stride 0x%X: %w", r.Name, f.Name, r.Stride, err)
		}
		if _, ok := r.FieldOffset(f); !ok {
			return fmt.Errorf("layout: %s.%s: absolute offset overflows", r.Name, f.Name)
		}
	}
	return nil
}

// Table is an immutable, validated set of records keyed by name.
type Table struct {
	records []Record
	byName  map[string]int
}

// NewTable validates records and builds a table. Record order is preserved.
func NewTable(records ...Record) (*Table, error) {
	t := &Table{
		records: make([]Record, 0, len(records)),
		byName:  make(map[string]int, len(records)),
	}
	for _, r := range records {
		if err := r.validate(); err != nil {
			return nil, err
		}
		if _, dup := t.byName[r.Name]; dup {
			return nil, fmt.Errorf("layout: duplicate record %q", r.Name)
		}
		r.Fields = append([]Field(nil), r.Fields...)
		t.byName[r.Name] = len(t.records)
		t.records = append(t.records, r)
	}
	return t, nil
}

// Records returns the records in declaration order.
func (t *Table) Records() []Record {
	return append([]Record(nil), t.records...)
}

// Record looks up a record by name.
func (t *Table) Record(name string) (Record, error) {
	i, ok := t.byName[name]
	if !ok {
		return Record{}, fmt.Errorf("%w: %q", format.ErrUnknownRecord, name)
	}
	return t.records[i], nil
}

// Resolve returns the absolute offset of record.field and checks that the
// field's bytes fit in an archive of bufLen bytes.
func (t *Table) Resolve(record, field string, bufLen int) (int, Field, error) {
	r, err := t.Record(record)
	if err != nil {
		return 0, Field{}, err
	}
	f, ok := r.Field(field)
	if !ok {
		return 0, Field{}, fmt.Errorf("%w: %s.%s", format.ErrUnknownField, record, field)
	}
	// validate() guarantees the sum does not overflow.
	off, _ := r.FieldOffset(f)
	if buf.CheckRange(bufLen, off, f.Type.Width()) != nil {
		return 0, Field{}, &format.OutOfRangeError{
			Record: record,
			Field:  field,
			Offset: off,
			Width:  f.Type.Width(),
			Len:    bufLen,
		}
	}
	return off, f, nil
}

// MinArchiveSize returns the smallest archive length that holds every field.
func (t *Table) MinArchiveSize() int {
	size := 0
	for _, r := range t.records {
		for _, f := range r.Fields {
			off, _ := r.FieldOffset(f)
			if end := off + f.Type.Width(); end > size {
				size = end
			}
		}
	}
	return size
}
