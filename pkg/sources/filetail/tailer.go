// Package filetail follows a log file by polling, surviving truncation and
// rename-based rotation.
package filetail

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/modoterra/logpanel/pkg/core"
)

const defaultPoll = 250 * time.Millisecond

// Tailer follows one file for an instance.
type Tailer struct {
	instance  string
	path      string
	fromStart bool
	poll      time.Duration
	logger    *slog.Logger
}

// New creates a tailer. With fromStart the existing content is emitted
// first, otherwise tailing starts at the end of the file.
func New(instance, path string, fromStart bool, logger *slog.Logger) *Tailer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tailer{
		instance:  instance,
		path:      path,
		fromStart: fromStart,
		poll:      defaultPoll,
		logger:    logger,
	}
}

// Name identifies the tailer in logs and metrics.
func (t *Tailer) Name() string { return "file:" + t.path }

// Tail opens the file and streams its lines until ctx is done.
func (t *Tailer) Tail(ctx context.Context) (<-chan core.LogLine, error) {
	f, err := os.Open(t.path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", t.path, err)
	}
	if !t.fromStart {
		if _, err := f.Seek(0, io.SeekEnd); err != nil {
			f.Close()
			return nil, fmt.Errorf("seek %s: %w", t.path, err)
		}
	}

	ch := make(chan core.LogLine, 100)
	go t.run(ctx, f, ch)
	t.logger.Info("tailing file", "path", t.path, "instance", t.instance)
	return ch, nil
}

func (t *Tailer) run(ctx context.Context, f *os.File, ch chan<- core.LogLine) {
	defer close(ch)
	defer func() { f.Close() }()

	reader := bufio.NewReader(f)
	var partial strings.Builder

	for {
		if ctx.Err() != nil {
			return
		}

		chunk, err := reader.ReadString('\n')
		partial.WriteString(chunk)
		if err == nil {
			line := strings.TrimRight(partial.String(), "\r\n")
			partial.Reset()
			entry := core.LogLine{
				Instance: t.instance,
				TsUnixMs: time.Now().UnixMilli(),
				Stream:   "file",
				Line:     line,
			}
			select {
			case ch <- entry:
			case <-ctx.Done():
				return
			}
			continue
		}
		if !errors.Is(err, io.EOF) {
			t.logger.Warn("read failed", "path", t.path, "err", err)
			return
		}

		// No new data, poll
		select {
		case <-ctx.Done():
			return
		case <-time.After(t.poll):
		}

		next, reopened := t.reopenIfRotated(f)
		if reopened {
			f = next
			reader.Reset(f)
			partial.Reset()
			continue
		}

		// Check for truncation
		info, serr := f.Stat()
		if serr != nil {
			continue
		}
		pos, _ := f.Seek(0, io.SeekCurrent)
		if info.Size() < pos {
			t.logger.Info("file truncated", "path", t.path)
			f.Seek(0, io.SeekStart)
			reader.Reset(f)
			partial.Reset()
		}
	}
}

// reopenIfRotated opens the path again when it now names a different file.
func (t *Tailer) reopenIfRotated(f *os.File) (*os.File, bool) {
	cur, err := f.Stat()
	if err != nil {
		return nil, false
	}
	onDisk, err := os.Stat(t.path)
	if err != nil || os.SameFile(cur, onDisk) {
		return nil, false
	}
	next, err := os.Open(t.path)
	if err != nil {
		return nil, false
	}
	f.Close()
	t.logger.Info("file rotated", "path", t.path)
	return next, true
}
