// Package settings holds the dashboard's fetch selection as typed state.
package settings

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/modoterra/logpanel/pkg/core"
)

// dateLayouts are tried in order when parsing a date input.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// Store is updated by input handlers and read by value on submit.
type Store struct {
	current core.Settings
	loc     *time.Location
}

// NewStore creates a store seeded with defaults. A nil loc means time.Local.
func NewStore(defaults core.Settings, loc *time.Location) *Store {
	if loc == nil {
		loc = time.Local
	}
	if defaults.InstanceName == "" {
		defaults.InstanceName = core.InstanceNone
	}
	return &Store{current: defaults, loc: loc}
}

// SetInstance selects the instance to fetch from.
func (s *Store) SetInstance(name string) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = core.InstanceNone
	}
	s.current.InstanceName = name
}

// SetFromDate parses and stores the range start. Empty input clears it.
func (s *Store) SetFromDate(text string) error {
	ts, err := ParseDate(text, s.loc)
	if err != nil {
		return fmt.Errorf("from date: %w", err)
	}
	s.current.FromDate = ts
	return nil
}

// SetToDate parses and stores the range end. Empty input reopens the range.
func (s *Store) SetToDate(text string) error {
	ts, err := ParseDate(text, s.loc)
	if err != nil {
		return fmt.Errorf("to date: %w", err)
	}
	s.current.ToDate = ts
	return nil
}

// SetLive toggles live polling.
func (s *Store) SetLive(live bool) {
	s.current.LiveUpdate = live
}

// SetDelay stores the polling delay given in milliseconds.
func (s *Store) SetDelay(text string) {
	s.current.UpdateDelay = ParseDelay(text)
}

// Snapshot returns the settings to submit. The local instance carries no
// date range.
func (s *Store) Snapshot() core.Settings {
	out := s.current
	if out.InstanceName == core.InstanceLocal {
		out.FromDate = 0
		out.ToDate = 0
	}
	return out
}

// ParseDelay converts a millisecond count to a duration. Anything that is
// not a positive integer yields core.DefaultUpdateDelay.
func ParseDelay(text string) time.Duration {
	ms, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil || ms <= 0 {
		return core.DefaultUpdateDelay
	}
	return time.Duration(ms) * time.Millisecond
}

// ParseDate accepts unix seconds or one of the supported layouts and returns
// unix seconds. Empty input returns 0.
func ParseDate(text string, loc *time.Location) (int64, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, nil
	}
	if n, err := strconv.ParseInt(text, 10, 64); err == nil {
		if n < 0 {
			return 0, fmt.Errorf("negative timestamp %d", n)
		}
		return n, nil
	}
	if loc == nil {
		loc = time.Local
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, text, loc); err == nil {
			return t.Unix(), nil
		}
	}
	return 0, fmt.Errorf("unrecognized date %q", text)
}

// FormatDate renders unix seconds for an input field. Zero renders empty.
func FormatDate(ts int64, loc *time.Location) string {
	if ts == 0 {
		return ""
	}
	if loc == nil {
		loc = time.Local
	}
	return time.Unix(ts, 0).In(loc).Format("2006-01-02 15:04")
}
