package store

import (
	"sync"

	"github.com/google/uuid"
)

// Memory is an in-memory journal for testing.
type Memory struct {
	mu      sync.RWMutex
	records []Record
}

// NewMemory creates a new in-memory journal.
func NewMemory() *Memory {
	return &Memory{}
}

// Put appends a record.
func (m *Memory) Put(r *Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	rec := *r
	rec.Faults = append([]FaultEntry(nil), r.Faults...)
	m.records = append(m.records, rec)
	return nil
}

// Recent returns the newest records first.
func (m *Memory) Recent(limit int) ([]Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := len(m.records)
	if limit > 0 && limit < n {
		n = limit
	}
	if n == 0 {
		return nil, nil
	}
	out := make([]Record, 0, n)
	for i := len(m.records) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, m.records[i])
	}
	return out, nil
}

// Close is a no-op for memory store.
func (m *Memory) Close() error {
	return nil
}
