package httplogs

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/modoterra/logpanel/pkg/core"
)

type fakeBackend struct {
	mu        sync.Mutex
	instances []string
	batches   map[string]core.Batch
	queries   []core.Query
}

func (f *fakeBackend) Instances() []string { return f.instances }

func (f *fakeBackend) Query(instance string, q core.Query, _ time.Time) (core.Batch, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.batches[instance]
	if !ok {
		return core.Batch{}, false
	}
	f.queries = append(f.queries, q)
	return b, true
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServer(t *testing.T, b Backend) (*httptest.Server, *Client) {
	t.Helper()
	srv := httptest.NewServer(NewRouter(b, testLogger()))
	t.Cleanup(srv.Close)
	return srv, NewClient(srv.URL+PathPrefix, 2*time.Second, testLogger())
}

func TestQueryURL(t *testing.T) {
	tests := []struct {
		name string
		q    core.Query
		want string
	}{
		{"range open", core.RangeQuery(100, 0), "http://h/logs/web?from_date=100"},
		{"range closed", core.RangeQuery(100, 200), "http://h/logs/web?from_date=100&to_date=200"},
		{"incremental", core.IncrementalQuery(1000), "http://h/logs/web?last_update=1000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := QueryURL("http://h/logs/", "web", tt.q); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestQueryURLEscapesInstance(t *testing.T) {
	got := QueryURL("http://h/logs", "a b", core.IncrementalQuery(1))
	if got != "http://h/logs/a%20b?last_update=1" {
		t.Errorf("got %q", got)
	}
}

func TestParseQuery(t *testing.T) {
	tests := []struct {
		raw     string
		want    core.Query
		wantErr bool
	}{
		{"", core.RangeQuery(0, 0), false},
		{"from_date=10", core.RangeQuery(10, 0), false},
		{"from_date=10&to_date=20", core.RangeQuery(10, 20), false},
		{"from_date=10.75", core.RangeQuery(10, 0), false},
		{"last_update=99&from_date=1", core.IncrementalQuery(99), false},
		{"from_date=x", core.Query{}, true},
		{"last_update=-1", core.Query{}, true},
		{"from_date=20&to_date=10", core.Query{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			v, err := url.ParseQuery(tt.raw)
			if err != nil {
				t.Fatal(err)
			}
			got, err := ParseQuery(v)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error, got %+v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestClientFetchRoundTrip(t *testing.T) {
	b := &fakeBackend{
		batches: map[string]core.Batch{
			"web": {LastUpdate: 1000, Logs: []core.LogRecord{
				{Type: core.TypeError, Content: "x"},
				{Type: core.TypeInfo, Content: "y"},
			}},
		},
	}
	_, client := newTestServer(t, b)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	batch, err := client.Fetch(ctx, "web", core.RangeQuery(5, 50))
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if batch.LastUpdate != 1000 || len(batch.Logs) != 2 {
		t.Fatalf("unexpected batch: %+v", batch)
	}
	if batch.Logs[0].Type != core.TypeError || batch.Logs[1].Content != "y" {
		t.Errorf("unexpected records: %+v", batch.Logs)
	}

	if _, err := client.Fetch(ctx, "web", core.IncrementalQuery(1000)); err != nil {
		t.Fatalf("incremental fetch: %v", err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.queries) != 2 {
		t.Fatalf("expected 2 queries, got %d", len(b.queries))
	}
	if b.queries[0] != core.RangeQuery(5, 50) {
		t.Errorf("range query reached backend as %+v", b.queries[0])
	}
	if b.queries[1] != core.IncrementalQuery(1000) {
		t.Errorf("incremental query reached backend as %+v", b.queries[1])
	}
}

func TestClientUnknownInstanceIsStatusError(t *testing.T) {
	_, client := newTestServer(t, &fakeBackend{})

	_, err := client.Fetch(context.Background(), "missing", core.RangeQuery(0, 0))
	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if se.Code != http.StatusNotFound {
		t.Errorf("code: got %d, want 404", se.Code)
	}
}

func TestServerRejectsBadParams(t *testing.T) {
	srv, _ := newTestServer(t, &fakeBackend{batches: map[string]core.Batch{"web": {}}})

	resp, err := http.Get(srv.URL + PathPrefix + "/web?from_date=abc")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status: got %d, want 400", resp.StatusCode)
	}
}

func TestServerEmptyBatchHasLogsArray(t *testing.T) {
	srv, _ := newTestServer(t, &fakeBackend{batches: map[string]core.Batch{"web": {LastUpdate: 7}}})

	resp, err := http.Get(srv.URL + PathPrefix + "/web?last_update=3")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if string(body) != "{\"last_update\":7,\"logs\":[]}\n" {
		t.Errorf("body: got %q", body)
	}
}

func TestClientInstances(t *testing.T) {
	_, client := newTestServer(t, &fakeBackend{instances: []string{"local", "web"}})

	names, err := client.Instances(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 2 || names[0] != "local" || names[1] != "web" {
		t.Errorf("got %v", names)
	}
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t, &fakeBackend{})
	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status: got %d", resp.StatusCode)
	}
}
