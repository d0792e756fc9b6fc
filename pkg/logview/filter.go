package logview

import (
	"strings"

	"github.com/modoterra/logpanel/pkg/core"
)

// Criteria are the active filter predicates. The date range is enforced by
// the fetch itself and has no client-side predicate.
type Criteria struct {
	Type    string // core.SelectAll, core.SelectMisc or a record type
	Keyword string // case-sensitive substring, empty disables
}

// Match reports whether r passes every active predicate.
func (c Criteria) Match(r core.LogRecord) bool {
	return c.matchType(r.Type) && c.matchKeyword(r.Content)
}

func (c Criteria) matchType(t string) bool {
	switch c.Type {
	case "", core.SelectAll:
		return true
	case core.SelectMisc:
		return t == core.TypeInfo || t == core.TypeMessage
	default:
		return t == c.Type
	}
}

func (c Criteria) matchKeyword(content string) bool {
	if c.Keyword == "" {
		return true
	}
	return strings.Contains(content, c.Keyword)
}

// Apply re-shows every row, then hides the rows failing c. It returns the
// number of visible rows.
func Apply(l *List, c Criteria) int {
	visible := 0
	for i := range l.rows {
		l.rows[i].Hidden = false
		if !c.Match(l.rows[i].Record) {
			l.rows[i].Hidden = true
			continue
		}
		visible++
	}
	return visible
}
