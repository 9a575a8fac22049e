package workbench

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// logHandler formats records as Logs tab lines and offers them to a
// bounded channel. Lines are dropped when the channel is full. When tee is
// set every record is also written there in slog's text format.
type logHandler struct {
	level   slog.Leveler
	out     chan<- string
	tee     slog.Handler
	attrs   []slog.Attr
	groups  []string
	dropped *atomic.Int64
}

// newLogger returns a logger feeding out and, optionally, tee.
func newLogger(out chan<- string, tee io.Writer, level slog.Leveler) (*slog.Logger, *atomic.Int64) {
	h := &logHandler{level: level, out: out, dropped: new(atomic.Int64)}
	if tee != nil {
		h.tee = slog.NewTextHandler(&lockedWriter{w: tee}, &slog.HandlerOptions{Level: level})
	}
	return slog.New(h), h.dropped
}

func (h *logHandler) Enabled(_ context.Context, l slog.Level) bool {
	return l >= h.level.Level()
}

func (h *logHandler) Handle(ctx context.Context, r slog.Record) error {
	if h.tee != nil {
		if err := h.tee.Handle(ctx, r); err != nil {
			return fmt.Errorf("log tee: %w", err)
		}
	}
	if h.out == nil {
		return nil
	}
	select {
	case h.out <- h.format(r):
	default:
		h.dropped.Add(1)
	}
	return nil
}

func (h *logHandler) format(r slog.Record) string {
	var sb strings.Builder
	if !r.Time.IsZero() {
		sb.WriteString(r.Time.Format(time.TimeOnly))
		sb.WriteByte(' ')
	}
	sb.WriteString(r.Level.String())
	sb.WriteByte(' ')
	sb.WriteString(r.Message)
	prefix := strings.Join(h.groups, ".")
	write := func(a slog.Attr) bool {
		a.Value = a.Value.Resolve()
		if a.Equal(slog.Attr{}) {
			return true
		}
		sb.WriteByte(' ')
		if prefix != "" {
			sb.WriteString(prefix)
			sb.WriteByte('.')
		}
		sb.WriteString(a.Key)
		sb.WriteByte('=')
		sb.WriteString(a.Value.String())
		return true
	}
	for _, a := range h.attrs {
		write(a)
	}
	r.Attrs(write)
	return sb.String()
}

func (h *logHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := *h
	c.attrs = append(append([]slog.Attr(nil), h.attrs...), attrs...)
	if h.tee != nil {
		c.tee = h.tee.WithAttrs(attrs)
	}
	return &c
}

func (h *logHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	c := *h
	c.groups = append(append([]string(nil), h.groups...), name)
	if h.tee != nil {
		c.tee = h.tee.WithGroup(name)
	}
	return &c
}

// lockedWriter serialises writes from concurrent adapters.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}
