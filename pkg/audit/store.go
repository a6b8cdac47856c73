// Package audit records skill execution attempts.
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

// Record is one execution attempt as seen by the executor.
type Record struct {
	ID         string
	Skill      string
	Success    bool
	Error      string
	Args       map[string]any
	Data       any
	StartedAt  time.Time
	FinishedAt time.Time
}

// Store persists execution records.
type Store interface {
	Record(ctx context.Context, record Record) error
	List(ctx context.Context, filter Filter) ([]Record, error)
}

// Filter limits record queries. Success filters only when non-nil.
type Filter struct {
	Skill   string
	Success *bool
	Limit   int
}

// MemoryStore keeps records in memory.
type MemoryStore struct {
	mu      sync.Mutex
	records []Record
}

// NewMemoryStore returns an in-memory audit store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Record appends a record.
func (s *MemoryStore) Record(_ context.Context, record Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, record)
	return nil
}

// List returns filtered records in insertion order.
func (s *MemoryStore) List(_ context.Context, filter Filter) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Record, 0, len(s.records))
	for _, rec := range s.records {
		if !filter.matches(rec) {
			continue
		}
		out = append(out, rec)
		if filter.Limit > 0 && len(out) >= filter.Limit {
			break
		}
	}
	return out, nil
}

func (f Filter) matches(rec Record) bool {
	if f.Skill != "" && rec.Skill != f.Skill {
		return false
	}
	if f.Success != nil && rec.Success != *f.Success {
		return false
	}
	return true
}

// encodeJSON marshals a payload; nil becomes JSON null. Values JSON cannot
// represent, such as NaN or channels, are kept as their printed form.
func encodeJSON(value any) []byte {
	if value == nil {
		return []byte("null")
	}
	raw, err := json.Marshal(value)
	if err != nil {
		raw, _ = json.Marshal(fmt.Sprint(value))
	}
	return raw
}

func decodeJSON(raw []byte) (any, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// normalizeTime ensures timestamps are in UTC.
func normalizeTime(value time.Time) time.Time {
	if value.IsZero() {
		return value
	}
	return value.UTC()
}
