package logger

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Entry is a captured log record. Attrs include both handler-scoped and
// record-scoped attributes, flattened in order.
type Entry struct {
	Time    time.Time
	Level   slog.Level
	Message string
	Attrs   []slog.Attr
}

// ringCore is the shared fixed-size buffer behind RingHandler copies.
type ringCore struct {
	mu       sync.Mutex
	buf      []Entry
	next     int
	wrapped  bool
	capacity int
}

// RingHandler is a slog.Handler that retains the most recent records in a
// fixed-size in-memory buffer. It keeps everything regardless of level so a
// diagnostics dump includes debug context that never reached the primary
// output.
type RingHandler struct {
	core  *ringCore
	attrs []slog.Attr
}

// NewRingHandler creates a ring buffer retaining up to capacity records.
// Capacity must be positive, otherwise it panics.
func NewRingHandler(capacity int) *RingHandler {
	if capacity <= 0 {
		panic("ring buffer capacity must be positive")
	}
	return &RingHandler{
		core: &ringCore{
			buf:      make([]Entry, capacity),
			capacity: capacity,
		},
	}
}

func (h *RingHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *RingHandler) Handle(_ context.Context, rec slog.Record) error {
	attrs := make([]slog.Attr, 0, len(h.attrs)+rec.NumAttrs())
	attrs = append(attrs, h.attrs...)
	rec.Attrs(func(a slog.Attr) bool {
		attrs = append(attrs, a)
		return true
	})

	c := h.core
	c.mu.Lock()
	c.buf[c.next] = Entry{Time: rec.Time, Level: rec.Level, Message: rec.Message, Attrs: attrs}
	c.next = (c.next + 1) % c.capacity
	if c.next == 0 {
		c.wrapped = true
	}
	c.mu.Unlock()
	return nil
}

// WithAttrs returns a handler sharing the same buffer with extra static attrs.
func (h *RingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &RingHandler{core: h.core, attrs: merged}
}

// WithGroup is accepted but flattened; the ring exists for humans reading a
// dump, not for structured consumers.
func (h *RingHandler) WithGroup(string) slog.Handler { return h }

// Records returns the retained records, oldest first.
func (h *RingHandler) Records() []Entry {
	c := h.core
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.wrapped {
		out := make([]Entry, c.next)
		copy(out, c.buf[:c.next])
		return out
	}

	out := make([]Entry, 0, c.capacity)
	out = append(out, c.buf[c.next:]...)
	out = append(out, c.buf[:c.next]...)
	return out
}

// Len returns the number of retained records.
func (h *RingHandler) Len() int {
	c := h.core
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.wrapped {
		return c.capacity
	}
	return c.next
}

// Reset discards all retained records.
func (h *RingHandler) Reset() {
	c := h.core
	c.mu.Lock()
	defer c.mu.Unlock()
	c.next = 0
	c.wrapped = false
}
