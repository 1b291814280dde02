package logger

import (
	"sync"
	"time"

	"go.uber.org/zap/zapcore"
)

// Entry is one captured log line, kept for on-screen display.
type Entry struct {
	Time      time.Time
	Level     zapcore.Level
	Message   string
	Component string
}

// Ring is a thread-safe fixed-size buffer of recent log entries. The
// dashboard renders it in the logs pane, so zap output never has to fight
// the terminal with the TUI.
type Ring struct {
	mu      sync.Mutex
	entries []Entry
	next    int
	wrapped bool
	seq     uint64
}

// NewRing creates a ring holding at most size entries.
func NewRing(size int) *Ring {
	if size <= 0 {
		size = 128
	}
	return &Ring{entries: make([]Entry, size)}
}

func (r *Ring) append(e Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[r.next] = e
	r.next++
	r.seq++
	if r.next == len(r.entries) {
		r.next = 0
		r.wrapped = true
	}
}

// Recent returns up to n entries, oldest first.
func (r *Ring) Recent(n int) []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()

	size := r.next
	if r.wrapped {
		size = len(r.entries)
	}
	if n > size {
		n = size
	}
	out := make([]Entry, 0, n)
	start := r.next - n
	if start < 0 {
		start += len(r.entries)
	}
	for i := 0; i < n; i++ {
		out = append(out, r.entries[(start+i)%len(r.entries)])
	}
	return out
}

// Seq returns a counter that increments on every append, letting the UI
// detect new entries without copying the buffer.
func (r *Ring) Seq() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.seq
}

// ringCore is a zapcore.Core that mirrors entries into a Ring.
type ringCore struct {
	zapcore.LevelEnabler
	ring      *Ring
	component string
}

func newRingCore(ring *Ring, enab zapcore.LevelEnabler) zapcore.Core {
	return &ringCore{LevelEnabler: enab, ring: ring}
}

func (c *ringCore) With(fields []zapcore.Field) zapcore.Core {
	clone := *c
	for _, f := range fields {
		if f.Key == "component" && f.Type == zapcore.StringType {
			clone.component = f.String
		}
	}
	return &clone
}

func (c *ringCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(ent.Level) {
		return ce.AddCore(ent, c)
	}
	return ce
}

func (c *ringCore) Write(ent zapcore.Entry, fields []zapcore.Field) error {
	component := c.component
	for _, f := range fields {
		if f.Key == "component" && f.Type == zapcore.StringType {
			component = f.String
		}
	}
	c.ring.append(Entry{
		Time:      ent.Time,
		Level:     ent.Level,
		Message:   ent.Message,
		Component: component,
	})
	return nil
}

func (c *ringCore) Sync() error { return nil }
