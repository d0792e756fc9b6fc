package daemon

import (
	"sync"
	"time"

	"github.com/modoterra/logpanel/pkg/core"
)

const defaultHubCapacity = 2000

type entry struct {
	ts  int64 // unix seconds
	rec core.LogRecord
}

// Hub keeps a ring buffer of recent records for one instance.
type Hub struct {
	mu      sync.Mutex
	ring    []entry
	cap     int
	nextPos int
	count   int
	now     func() int64
}

// NewHub creates a hub holding up to capacity records.
func NewHub(capacity int) *Hub {
	if capacity <= 0 {
		capacity = defaultHubCapacity
	}
	return &Hub{
		ring: make([]entry, capacity),
		cap:  capacity,
		now:  func() int64 { return time.Now().Unix() },
	}
}

// Append stores r stamped with the current second. The stamp is taken under
// the lock, so a query at now already holds every record with ts <= now-1.
func (h *Hub) Append(r core.LogRecord) int64 {
	h.mu.Lock()
	defer h.mu.Unlock()

	ts := h.now()
	h.insert(ts, r)
	return ts
}

// Add stores a record observed at ts, evicting the oldest when full.
func (h *Hub) Add(ts int64, r core.LogRecord) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.insert(ts, r)
}

func (h *Hub) insert(ts int64, r core.LogRecord) {
	h.ring[h.nextPos] = entry{ts: ts, rec: r}
	h.nextPos = (h.nextPos + 1) % h.cap
	if h.count < h.cap {
		h.count++
	}
}

// Len returns the number of buffered records.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.count
}

// Query answers q at now (unix seconds). Only completed seconds are served,
// so a record is never returned by two consecutive polls and never skipped.
func (h *Hub) Query(q core.Query, now int64) core.Batch {
	upper := now - 1
	lower := q.FromDate // inclusive
	inclusive := true

	var last int64
	switch q.Mode {
	case core.ModeIncremental:
		lower = q.LastUpdate
		inclusive = false
		last = max(q.LastUpdate, upper)
	default:
		if q.ToDate > 0 && q.ToDate < upper {
			upper = q.ToDate
		}
		last = upper
	}

	out := []core.LogRecord{}
	for _, e := range h.snapshot() {
		if e.ts > upper {
			continue
		}
		if e.ts < lower || (!inclusive && e.ts == lower) {
			continue
		}
		out = append(out, e.rec)
	}
	return core.Batch{LastUpdate: last, Logs: out}
}

// snapshot returns the buffered entries oldest first.
func (h *Hub) snapshot() []entry {
	h.mu.Lock()
	defer h.mu.Unlock()

	start := h.nextPos - h.count
	if start < 0 {
		start += h.cap
	}
	out := make([]entry, 0, h.count)
	for i := 0; i < h.count; i++ {
		out = append(out, h.ring[(start+i)%h.cap])
	}
	return out
}
