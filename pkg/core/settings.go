package core

import "time"

// Instance sentinels.
const (
	// InstanceNone is the placeholder shown before an instance is chosen.
	InstanceNone = "none"
	// InstanceLocal names the daemon host itself; date filtering does not apply.
	InstanceLocal = "local"
)

// DefaultUpdateDelay is the live polling interval used when none is configured.
const DefaultUpdateDelay = 2000 * time.Millisecond

// Settings is the user's current fetch selection.
type Settings struct {
	InstanceName string
	FromDate     int64 // unix seconds
	ToDate       int64 // unix seconds, 0 = open range
	LiveUpdate   bool
	UpdateDelay  time.Duration
}

// Valid reports whether a fetch may be issued for these settings.
func (s Settings) Valid() bool {
	return s.InstanceName != "" && s.InstanceName != InstanceNone
}

// ClosedRange reports whether a fixed end date is set.
func (s Settings) ClosedRange() bool {
	return s.ToDate > 0
}

// Polls reports whether a completed fetch should schedule another one.
func (s Settings) Polls() bool {
	return s.LiveUpdate && !s.ClosedRange()
}

// Delay returns the polling interval, falling back to DefaultUpdateDelay.
func (s Settings) Delay() time.Duration {
	if s.UpdateDelay <= 0 {
		return DefaultUpdateDelay
	}
	return s.UpdateDelay
}

// QueryMode selects how a logs request is parameterized.
type QueryMode int

const (
	// ModeRange fetches every record between two dates.
	ModeRange QueryMode = iota
	// ModeIncremental fetches records newer than a cursor.
	ModeIncremental
)

func (m QueryMode) String() string {
	switch m {
	case ModeRange:
		return "range"
	case ModeIncremental:
		return "incremental"
	default:
		return "unknown"
	}
}

// Query is one logs request.
type Query struct {
	Mode       QueryMode
	FromDate   int64
	ToDate     int64 // 0 = open
	LastUpdate int64
}

// RangeQuery builds a range-mode query.
func RangeQuery(from, to int64) Query {
	return Query{Mode: ModeRange, FromDate: from, ToDate: to}
}

// IncrementalQuery builds a query for records newer than cursor.
func IncrementalQuery(cursor int64) Query {
	return Query{Mode: ModeIncremental, LastUpdate: cursor}
}
