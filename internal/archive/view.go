package archive

import (
	"github.com/joshuapare/regpatch/internal/format"
	"github.com/joshuapare/regpatch/internal/mmfile"
)

// View is a read-only, memory-mapped archive. It reflects the file as it is
// on disk, independent of any Buffer.
type View struct {
	path string
	m    *mmfile.Mapping
}

// Open maps the archive at path for reading.
func Open(path string) (*View, error) {
	m, err := mmfile.Map(path)
	if err != nil {
		return nil, &format.IOError{Op: "open", Path: path, Err: err}
	}
	return &View{path: path, m: m}, nil
}

// Path returns the mapped file.
func (v *View) Path() string { return v.path }

// Len returns the archive length in bytes.
func (v *View) Len() int { return len(v.m.Data) }

// ReadValue reads a field of type t at off.
func (v *View) ReadValue(off int, t format.FieldType) (format.Value, error) {
	return readValue(v.m.Data, off, t)
}

// Close unmaps the archive.
func (v *View) Close() error { return v.m.Close() }

// Reader is satisfied by both Buffer and View.
type Reader interface {
	Len() int
	ReadValue(off int, t format.FieldType) (format.Value, error)
}

var (
	_ Reader = (*Buffer)(nil)
	_ Reader = (*View)(nil)
)
