package fetcher

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/modoterra/logpanel/pkg/core"
	"github.com/modoterra/logpanel/pkg/transport/httplogs"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSubmitWithoutInstanceIssuesNothing(t *testing.T) {
	for _, name := range []string{"", core.InstanceNone} {
		t.Run(name, func(t *testing.T) {
			f := New(testLogger())
			if _, ok := f.Submit(core.Settings{InstanceName: name, LiveUpdate: true}); ok {
				t.Errorf("expected no request for instance %q", name)
			}
			if f.Live() {
				t.Error("fetcher should not be live")
			}
		})
	}
}

func TestSubmitBuildsRangeQuery(t *testing.T) {
	f := New(testLogger())
	req, ok := f.Submit(core.Settings{InstanceName: "web", FromDate: 100, ToDate: 200})
	if !ok {
		t.Fatal("expected request")
	}
	if req.Instance != "web" {
		t.Errorf("instance: got %q", req.Instance)
	}
	if req.Query != core.RangeQuery(100, 200) {
		t.Errorf("query: got %+v", req.Query)
	}
	if req.Delay != 0 {
		t.Errorf("first fetch should not be delayed, got %v", req.Delay)
	}
}

func TestClosedRangeDoesNotRearm(t *testing.T) {
	f := New(testLogger())
	req, _ := f.Submit(core.Settings{InstanceName: "web", FromDate: 1, ToDate: 2, LiveUpdate: true})

	_, rearm, current := f.Complete(req.Gen, core.Batch{LastUpdate: 2})
	if !current {
		t.Fatal("batch should be current")
	}
	if rearm {
		t.Error("closed range must not schedule another fetch")
	}
	if f.Live() {
		t.Error("fetcher should not be live after a closed range")
	}
}

func TestNotLiveDoesNotRearm(t *testing.T) {
	f := New(testLogger())
	req, _ := f.Submit(core.Settings{InstanceName: "web"})
	if _, rearm, _ := f.Complete(req.Gen, core.Batch{LastUpdate: 5}); rearm {
		t.Error("non-live cycle must not re-arm")
	}
}

func TestLiveRearmsOnceWithCursor(t *testing.T) {
	f := New(testLogger())
	s := core.Settings{InstanceName: "web", LiveUpdate: true, UpdateDelay: 750 * time.Millisecond}
	req, _ := f.Submit(s)

	next, rearm, current := f.Complete(req.Gen, core.Batch{LastUpdate: 1000})
	if !current || !rearm {
		t.Fatalf("expected re-arm, got rearm=%v current=%v", rearm, current)
	}
	if next.Query != core.IncrementalQuery(1000) {
		t.Errorf("next query: got %+v", next.Query)
	}
	if next.Delay != 750*time.Millisecond {
		t.Errorf("delay: got %v", next.Delay)
	}
	if f.Cursor() != 1000 {
		t.Errorf("cursor: got %d", f.Cursor())
	}

	next, rearm, _ = f.Complete(next.Gen, core.Batch{LastUpdate: 1004})
	if !rearm || next.Query.LastUpdate != 1004 {
		t.Errorf("second re-arm: rearm=%v query=%+v", rearm, next.Query)
	}
}

func TestLiveUsesDefaultDelay(t *testing.T) {
	f := New(testLogger())
	req, _ := f.Submit(core.Settings{InstanceName: "web", LiveUpdate: true})
	next, _, _ := f.Complete(req.Gen, core.Batch{LastUpdate: 1})
	if next.Delay != core.DefaultUpdateDelay {
		t.Errorf("delay: got %v, want %v", next.Delay, core.DefaultUpdateDelay)
	}
}

func TestCursorNeverMovesBackwards(t *testing.T) {
	f := New(testLogger())
	req, _ := f.Submit(core.Settings{InstanceName: "web", LiveUpdate: true})
	next, _, _ := f.Complete(req.Gen, core.Batch{LastUpdate: 500})
	next, _, _ = f.Complete(next.Gen, core.Batch{LastUpdate: 400})
	if f.Cursor() != 500 {
		t.Errorf("cursor: got %d, want 500", f.Cursor())
	}
	if next.Query.LastUpdate != 500 {
		t.Errorf("next cursor: got %d", next.Query.LastUpdate)
	}
}

func TestResubmitDuringLiveCycleDefersRangeFetch(t *testing.T) {
	f := New(testLogger())
	s := core.Settings{InstanceName: "web", LiveUpdate: true, UpdateDelay: time.Second}
	first, _ := f.Submit(s)
	if _, rearm, _ := f.Complete(first.Gen, core.Batch{LastUpdate: 10}); !rearm {
		t.Fatal("expected live cycle")
	}

	second, ok := f.Submit(s)
	if !ok {
		t.Fatal("expected request")
	}
	if second.Delay != time.Second {
		t.Errorf("deferred range fetch: got delay %v, want 1s", second.Delay)
	}
	if second.Query.Mode != core.ModeRange {
		t.Errorf("resubmit should start with a range fetch, got %v", second.Query.Mode)
	}
	if f.Cursor() != 0 {
		t.Errorf("cursor should reset on submit, got %d", f.Cursor())
	}

	// The superseded cycle's response is dropped.
	if _, _, current := f.Complete(first.Gen, core.Batch{LastUpdate: 99}); current {
		t.Error("stale batch reported as current")
	}
	if f.Cursor() != 0 {
		t.Errorf("stale batch moved cursor to %d", f.Cursor())
	}
}

func TestResubmitAfterOneShotIsImmediate(t *testing.T) {
	f := New(testLogger())
	s := core.Settings{InstanceName: "web"}
	first, _ := f.Submit(s)
	f.Complete(first.Gen, core.Batch{})
	second, _ := f.Submit(s)
	if second.Delay != 0 {
		t.Errorf("expected immediate fetch, got %v", second.Delay)
	}
}

func TestFailEndsCycle(t *testing.T) {
	f := New(testLogger())
	req, _ := f.Submit(core.Settings{InstanceName: "web", LiveUpdate: true})
	if !f.Fail(req.Gen, &httplogs.StatusError{Code: 500, URL: "http://x"}) {
		t.Fatal("fail should apply to the current cycle")
	}
	if f.Live() {
		t.Error("fetcher should stop after a failure")
	}
	if f.Fail(req.Gen-1, errors.New("old")) {
		t.Error("stale failure reported as current")
	}
}

func TestStopMakesRequestsStale(t *testing.T) {
	f := New(testLogger())
	req, _ := f.Submit(core.Settings{InstanceName: "web", LiveUpdate: true})
	f.Stop()
	if f.Current(req.Gen) {
		t.Error("request should be stale after Stop")
	}
	if _, rearm, current := f.Complete(req.Gen, core.Batch{LastUpdate: 1}); rearm || current {
		t.Error("stopped cycle must not re-arm")
	}
}

// scriptedSource replays batches and records queries.
type scriptedSource struct {
	batches []core.Batch
	errs    []error
	queries []core.Query
	onFetch func(n int)
}

func (s *scriptedSource) Fetch(_ context.Context, _ string, q core.Query) (core.Batch, error) {
	n := len(s.queries)
	s.queries = append(s.queries, q)
	if s.onFetch != nil {
		s.onFetch(n)
	}
	if n < len(s.errs) && s.errs[n] != nil {
		return core.Batch{}, s.errs[n]
	}
	if n < len(s.batches) {
		return s.batches[n], nil
	}
	return core.Batch{}, nil
}

func instantRunner(src core.Source) (*Runner, *[]time.Duration) {
	r := NewRunner(src, testLogger())
	var waits []time.Duration
	r.after = func(d time.Duration) <-chan time.Time {
		waits = append(waits, d)
		ch := make(chan time.Time, 1)
		ch <- time.Now()
		return ch
	}
	return r, &waits
}

func TestRunnerNoInstance(t *testing.T) {
	src := &scriptedSource{}
	r, _ := instantRunner(src)
	err := r.Run(context.Background(), core.Settings{InstanceName: core.InstanceNone}, nil)
	if !errors.Is(err, ErrNoInstance) {
		t.Fatalf("expected ErrNoInstance, got %v", err)
	}
	if len(src.queries) != 0 {
		t.Errorf("expected no requests, got %d", len(src.queries))
	}
}

func TestRunnerOneShot(t *testing.T) {
	src := &scriptedSource{batches: []core.Batch{{
		LastUpdate: 1000,
		Logs: []core.LogRecord{
			{Type: core.TypeError, Content: "x"},
			{Type: core.TypeInfo, Content: "y"},
		},
	}}}
	r, _ := instantRunner(src)

	var got []core.LogRecord
	err := r.Run(context.Background(), core.Settings{InstanceName: "web", FromDate: 1, ToDate: 2, LiveUpdate: true}, func(recs []core.LogRecord) {
		got = append(got, recs...)
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(src.queries) != 1 {
		t.Fatalf("expected exactly one request, got %d", len(src.queries))
	}
	if len(got) != 2 {
		t.Errorf("rendered %d records, want 2", len(got))
	}
	if r.Fetcher().Cursor() != 1000 {
		t.Errorf("cursor: got %d", r.Fetcher().Cursor())
	}
}

func TestRunnerLivePollsUntilCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	src := &scriptedSource{
		batches: []core.Batch{{LastUpdate: 10}, {LastUpdate: 20}, {LastUpdate: 30}},
	}
	src.onFetch = func(n int) {
		if n == 2 {
			cancel()
		}
	}
	r, waits := instantRunner(src)

	err := r.Run(ctx, core.Settings{InstanceName: "web", LiveUpdate: true, UpdateDelay: 300 * time.Millisecond}, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}

	want := []core.Query{core.RangeQuery(0, 0), core.IncrementalQuery(10), core.IncrementalQuery(20)}
	if len(src.queries) != len(want) {
		t.Fatalf("queries: got %+v", src.queries)
	}
	for i := range want {
		if src.queries[i] != want[i] {
			t.Errorf("query %d: got %+v, want %+v", i, src.queries[i], want[i])
		}
	}
	for _, w := range *waits {
		if w != 300*time.Millisecond {
			t.Errorf("wait: got %v", w)
		}
	}
}

func TestRunnerStopsOnFailure(t *testing.T) {
	boom := &httplogs.StatusError{Code: 502, URL: "http://x/logs/web"}
	src := &scriptedSource{
		batches: []core.Batch{{LastUpdate: 10}},
		errs:    []error{nil, boom},
	}
	r, _ := instantRunner(src)

	err := r.Run(context.Background(), core.Settings{InstanceName: "web", LiveUpdate: true}, nil)
	if !errors.Is(err, boom) {
		t.Fatalf("expected status error, got %v", err)
	}
	if len(src.queries) != 2 {
		t.Errorf("expected no retry, got %d requests", len(src.queries))
	}
	if r.Fetcher().Live() {
		t.Error("fetcher should not be live after failure")
	}
}
