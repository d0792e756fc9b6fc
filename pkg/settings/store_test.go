package settings

import (
	"testing"
	"time"

	"github.com/modoterra/logpanel/pkg/core"
)

func TestParseDelay(t *testing.T) {
	tests := []struct {
		input string
		want  time.Duration
	}{
		{"500", 500 * time.Millisecond},
		{" 1500 ", 1500 * time.Millisecond},
		{"", core.DefaultUpdateDelay},
		{"abc", core.DefaultUpdateDelay},
		{"2s", core.DefaultUpdateDelay},
		{"0", core.DefaultUpdateDelay},
		{"-10", core.DefaultUpdateDelay},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseDelay(tt.input); got != tt.want {
				t.Errorf("ParseDelay(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseDate(t *testing.T) {
	utc := time.UTC
	tests := []struct {
		input   string
		want    int64
		wantErr bool
	}{
		{"", 0, false},
		{"1700000000", 1700000000, false},
		{"2024-01-02", time.Date(2024, 1, 2, 0, 0, 0, 0, utc).Unix(), false},
		{"2024-01-02 03:04", time.Date(2024, 1, 2, 3, 4, 0, 0, utc).Unix(), false},
		{"2024-01-02T03:04", time.Date(2024, 1, 2, 3, 4, 0, 0, utc).Unix(), false},
		{"2024-01-02T03:04:05Z", time.Date(2024, 1, 2, 3, 4, 5, 0, utc).Unix(), false},
		{"yesterday", 0, true},
		{"-5", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseDate(tt.input, utc)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error for %q", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseDate(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestFormatDateRoundTrip(t *testing.T) {
	ts := time.Date(2024, 5, 6, 7, 8, 0, 0, time.UTC).Unix()
	text := FormatDate(ts, time.UTC)
	got, err := ParseDate(text, time.UTC)
	if err != nil {
		t.Fatal(err)
	}
	if got != ts {
		t.Errorf("round-trip: got %d, want %d", got, ts)
	}
	if FormatDate(0, time.UTC) != "" {
		t.Error("zero timestamp should render empty")
	}
}

func TestStoreDefaultsToNone(t *testing.T) {
	s := NewStore(core.Settings{}, time.UTC)
	snap := s.Snapshot()
	if snap.InstanceName != core.InstanceNone {
		t.Errorf("instance: got %q, want %q", snap.InstanceName, core.InstanceNone)
	}
	if snap.Valid() {
		t.Error("default settings should not be valid")
	}
}

func TestStoreSnapshotIsCopy(t *testing.T) {
	s := NewStore(core.Settings{}, time.UTC)
	s.SetInstance("web-1")
	snap := s.Snapshot()
	s.SetInstance("web-2")
	if snap.InstanceName != "web-1" {
		t.Errorf("snapshot mutated: %q", snap.InstanceName)
	}
}

func TestStoreLocalDropsDates(t *testing.T) {
	s := NewStore(core.Settings{}, time.UTC)
	if err := s.SetFromDate("1000"); err != nil {
		t.Fatal(err)
	}
	if err := s.SetToDate("2000"); err != nil {
		t.Fatal(err)
	}
	s.SetInstance(core.InstanceLocal)
	snap := s.Snapshot()
	if snap.FromDate != 0 || snap.ToDate != 0 {
		t.Errorf("local instance kept dates: from=%d to=%d", snap.FromDate, snap.ToDate)
	}

	s.SetInstance("web-1")
	snap = s.Snapshot()
	if snap.FromDate != 1000 || snap.ToDate != 2000 {
		t.Errorf("remote instance lost dates: from=%d to=%d", snap.FromDate, snap.ToDate)
	}
}

func TestStoreInvalidDateKeepsPrevious(t *testing.T) {
	s := NewStore(core.Settings{}, time.UTC)
	if err := s.SetFromDate("1000"); err != nil {
		t.Fatal(err)
	}
	if err := s.SetFromDate("not a date"); err == nil {
		t.Fatal("expected error")
	}
	if got := s.Snapshot().FromDate; got != 1000 {
		t.Errorf("from date: got %d, want 1000", got)
	}
}

func TestStoreDelayAndLive(t *testing.T) {
	s := NewStore(core.Settings{}, time.UTC)
	s.SetDelay("nope")
	s.SetLive(true)
	snap := s.Snapshot()
	if snap.UpdateDelay != core.DefaultUpdateDelay {
		t.Errorf("delay: got %v", snap.UpdateDelay)
	}
	if !snap.LiveUpdate {
		t.Error("expected live update")
	}
}
