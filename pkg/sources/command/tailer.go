// Package command streams the output of a long-running command, such as
// journalctl or docker logs, as log lines.
package command

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/google/shlex"

	"github.com/modoterra/logpanel/pkg/core"
)

const maxLineBytes = 1 << 20

// Tailer runs a command and emits each stdout and stderr line.
type Tailer struct {
	instance string
	name     string
	args     []string
	stream   string // overrides the stdout stream label when set
	logger   *slog.Logger
}

// New parses a shell-quoted command line.
func New(instance, commandLine string, logger *slog.Logger) (*Tailer, error) {
	args, err := shlex.Split(commandLine)
	if err != nil {
		return nil, fmt.Errorf("parse command %q: %w", commandLine, err)
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("empty command")
	}
	return newTailer(instance, "command:"+args[0], args, "", logger), nil
}

// Journal follows a systemd unit through journalctl.
func Journal(instance, unit string, logger *slog.Logger) *Tailer {
	args := []string{"journalctl", "-f", "-u", unit, "-o", "cat", "-n", "50"}
	return newTailer(instance, "journal:"+unit, args, "journal", logger)
}

func newTailer(instance, name string, args []string, stream string, logger *slog.Logger) *Tailer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tailer{
		instance: instance,
		name:     name,
		args:     args,
		stream:   stream,
		logger:   logger,
	}
}

// Name identifies the tailer in logs and metrics.
func (t *Tailer) Name() string { return t.name }

// Args returns the argv the tailer runs.
func (t *Tailer) Args() []string { return t.args }

// Tail starts the command. The channel closes when the command exits or
// ctx is done.
func (t *Tailer) Tail(ctx context.Context) (<-chan core.LogLine, error) {
	cmd := exec.CommandContext(ctx, t.args[0], t.args[1:]...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("%s stdout pipe: %w", t.args[0], err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("%s stderr pipe: %w", t.args[0], err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%s start: %w", t.args[0], err)
	}

	outStream := "stdout"
	if t.stream != "" {
		outStream = t.stream
	}

	ch := make(chan core.LogLine, 100)
	var wg sync.WaitGroup
	wg.Add(2)
	go t.scan(ctx, stdout, outStream, ch, &wg)
	go t.scan(ctx, stderr, "stderr", ch, &wg)

	go func() {
		wg.Wait()
		if err := cmd.Wait(); err != nil && ctx.Err() == nil {
			t.logger.Warn("command exited", "name", t.name, "err", err)
		}
		close(ch)
	}()

	t.logger.Info("started command", "name", t.name, "instance", t.instance, "pid", cmd.Process.Pid)
	return ch, nil
}

func (t *Tailer) scan(ctx context.Context, r io.Reader, stream string, ch chan<- core.LogLine, wg *sync.WaitGroup) {
	defer wg.Done()

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)
	for scanner.Scan() {
		line := core.LogLine{
			Instance: t.instance,
			TsUnixMs: time.Now().UnixMilli(),
			Stream:   stream,
			Line:     strings.TrimRight(scanner.Text(), "\r"),
		}
		select {
		case ch <- line:
		case <-ctx.Done():
			// Drain so the child is not blocked on a full pipe.
			io.Copy(io.Discard, r)
			return
		}
	}
}
