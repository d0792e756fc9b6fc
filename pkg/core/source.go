package core

import "context"

// Source answers log queries for named instances.
type Source interface {
	// Fetch runs one query against the given instance.
	Fetch(ctx context.Context, instance string, q Query) (Batch, error)
}

// Tailer streams raw lines from one configured log source.
type Tailer interface {
	// Name returns a short identifier used in logs and metrics.
	Name() string

	// Tail starts streaming. The channel is closed when the source ends
	// or ctx is cancelled.
	Tail(ctx context.Context) (<-chan LogLine, error)
}
