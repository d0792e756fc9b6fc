// Package logview holds rendered log rows and the visibility filter applied
// to them.
package logview

import "github.com/modoterra/logpanel/pkg/core"

// Row is one rendered record.
type Row struct {
	Record core.LogRecord
	Hidden bool
}

// List is the ordered set of rendered rows. A positive max caps its length,
// dropping the oldest rows first.
type List struct {
	rows []Row
	max  int
}

// NewList creates an empty list. max <= 0 means unbounded.
func NewList(max int) *List {
	return &List{max: max}
}

// Append renders records at the end of the list, evaluating each new row
// against c.
func (l *List) Append(c Criteria, records ...core.LogRecord) {
	for _, r := range records {
		l.rows = append(l.rows, Row{Record: r, Hidden: !c.Match(r)})
	}
	if l.max > 0 && len(l.rows) > l.max {
		l.rows = append(l.rows[:0:0], l.rows[len(l.rows)-l.max:]...)
	}
}

// Clear removes all rows.
func (l *List) Clear() {
	l.rows = nil
}

// Len returns the number of rendered rows, hidden ones included.
func (l *List) Len() int { return len(l.rows) }

// Rows returns the rendered rows. The slice must not be modified.
func (l *List) Rows() []Row { return l.rows }

// Visible returns the records of rows not hidden by the filter.
func (l *List) Visible() []core.LogRecord {
	out := make([]core.LogRecord, 0, len(l.rows))
	for _, r := range l.rows {
		if !r.Hidden {
			out = append(out, r.Record)
		}
	}
	return out
}
