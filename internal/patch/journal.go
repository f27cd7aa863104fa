package patch

import (
	"fmt"
	"strings"
)

// Journal records every write the engine performs, so that a failed patch can
// be rolled back in memory and a successful one can be shown to the operator.
type Journal struct {
	entries []Entry
}

// Entry is one field write.
type Entry struct {
	Step    string
	Record  string
	Field   string
	Offset  int
	Old     []byte
	New     []byte
	Applied bool
}

// NewJournal creates an empty journal.
func NewJournal() *Journal {
	return &Journal{entries: make([]Entry, 0, 16)}
}

// Add records a write before it is marked applied.
func (j *Journal) Add(step string, w Write, offset int, oldData, newData []byte) {
	j.entries = append(j.entries, Entry{
		Step:   step,
		Record: w.Record,
		Field:  w.Field,
		Offset: offset,
		Old:    append([]byte(nil), oldData...),
		New:    append([]byte(nil), newData...),
	})
}

// MarkApplied marks the most recent entry as applied.
func (j *Journal) MarkApplied() error {
	if len(j.entries) == 0 {
		return fmt.Errorf("journal: mark applied on empty journal")
	}
	j.entries[len(j.entries)-1].Applied = true
	return nil
}

// Rollback restores the old bytes of every applied entry, newest first.
// It returns how many entries were reverted.
func (j *Journal) Rollback(data []byte) (int, error) {
	rolled := 0
	for i := len(j.entries) - 1; i >= 0; i-- {
		e := j.entries[i]
		if !e.Applied {
			continue
		}
		if e.Offset < 0 || e.Offset+len(e.Old) > len(data) {
			return rolled, fmt.Errorf("journal: entry %d (%s.%s) at 0x%X outside buffer of %d bytes",
				i, e.Record, e.Field, e.Offset, len(data))
		}
		copy(data[e.Offset:], e.Old)
		j.entries[i].Applied = false
		rolled++
	}
	return rolled, nil
}

// Entries returns a copy of the entries.
func (j *Journal) Entries() []Entry {
	return append([]Entry(nil), j.entries...)
}

// AppliedCount returns the number of applied entries.
func (j *Journal) AppliedCount() int {
	n := 0
	for _, e := range j.entries {
		if e.Applied {
			n++
		}
	}
	return n
}

// Changed returns the applied entries whose bytes actually differ.
func (j *Journal) Changed() []Entry {
	var out []Entry
	for _, e := range j.entries {
		if e.Applied && string(e.Old) != string(e.New) {
			out = append(out, e)
		}
	}
	return out
}

// Export renders the journal for verbose and dry-run output.
func (j *Journal) Export() string {
	if len(j.entries) == 0 {
		return "Patch journal: empty"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Patch journal: %d writes (%d applied, %d changed)\n",
		len(j.entries), j.AppliedCount(), len(j.Changed()))
	sb.WriteString(strings.Repeat("=", 72))
	sb.WriteString("\n")

	for i, e := range j.entries {
		status := "PENDING"
		if e.Applied {
			status = "APPLIED"
		}
		fmt.Fprintf(&sb, "[%2d] %-7s %-16s %s.%s\n", i+1, status, e.Step, e.Record, e.Field)
		fmt.Fprintf(&sb, "     Offset: 0x%08X\n", e.Offset)
		fmt.Fprintf(&sb, "     Before: % X\n", e.Old)
		fmt.Fprintf(&sb, "     After:  % X\n", e.New)
	}
	return sb.String()
}
