package writer

// MemWriter captures archive bytes in memory.
type MemWriter struct {
	Buf    []byte
	Writes int
	// Err, when set, is returned instead of storing the data.
	Err error
}

// WriteArchive copies data into Buf.
func (w *MemWriter) WriteArchive(data []byte) error {
	if w.Err != nil {
		return w.Err
	}
	w.Buf = append(w.Buf[:0], data...)
	w.Writes++
	return nil
}
