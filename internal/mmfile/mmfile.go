// Package mmfile opens archives as read-only byte views, memory-mapped where
// the platform allows it.
package mmfile

// Mapping is a read-only view of a file's contents. Data must not be written
// to and must not be used after Close.
type Mapping struct {
	Data    []byte
	release func() error
}

// Close releases the view. Calling Close more than once is a no-op.
func (m *Mapping) Close() error {
	if m == nil || m.release == nil {
		return nil
	}
	release := m.release
	m.release = nil
	m.Data = nil
	return release()
}

func noRelease() error { return nil }
