package testing

import (
	"context"
	"log/slog"
	"slices"
	"sync"
)

type logStore struct {
	mu      sync.Mutex
	records []slog.Record
}

// LogCollector is a slog.Handler that keeps every record, including debug.
// Handlers derived with WithAttrs share the same store.
type LogCollector struct {
	store *logStore
	attrs []slog.Attr
}

func NewLogCollector() *LogCollector {
	return &LogCollector{store: &logStore{}}
}

// Logger returns a logger writing into the collector.
func (c *LogCollector) Logger() *slog.Logger {
	return slog.New(c)
}

func (c *LogCollector) Enabled(context.Context, slog.Level) bool { return true }

func (c *LogCollector) Handle(_ context.Context, record slog.Record) error {
	record = record.Clone()
	record.AddAttrs(c.attrs...)
	c.store.mu.Lock()
	c.store.records = append(c.store.records, record)
	c.store.mu.Unlock()
	return nil
}

func (c *LogCollector) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &LogCollector{store: c.store, attrs: append(slices.Clone(c.attrs), attrs...)}
}

// WithGroup ignores groups; attribute keys are recorded unqualified.
func (c *LogCollector) WithGroup(string) slog.Handler { return c }

func (c *LogCollector) snapshot() []slog.Record {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()
	return slices.Clone(c.store.records)
}

// Messages lists record messages in arrival order.
func (c *LogCollector) Messages() []string {
	records := c.snapshot()
	out := make([]string, len(records))
	for i, rec := range records {
		out[i] = rec.Message
	}
	return out
}

func (c *LogCollector) HasMessage(msg string) bool {
	return slices.Contains(c.Messages(), msg)
}

// Attr looks up key on the first record whose message is msg.
func (c *LogCollector) Attr(msg, key string) (slog.Value, bool) {
	for _, rec := range c.snapshot() {
		if rec.Message != msg {
			continue
		}
		var (
			value slog.Value
			found bool
		)
		rec.Attrs(func(a slog.Attr) bool {
			if a.Key != key {
				return true
			}
			value, found = a.Value, true
			return false
		})
		return value, found
	}
	return slog.Value{}, false
}

func (c *LogCollector) Count() int {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()
	return len(c.store.records)
}

// Reset drops everything collected so far.
func (c *LogCollector) Reset() {
	c.store.mu.Lock()
	c.store.records = nil
	c.store.mu.Unlock()
}
