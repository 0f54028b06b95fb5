package eventstore

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps events in process memory.
type MemoryStore struct {
	mu     sync.RWMutex
	events map[string][]Event
	now    func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		events: make(map[string][]Event),
		now:    time.Now,
	}
}

func (m *MemoryStore) Append(ctx context.Context, aggregateID string, expectedSeq int64, drafts ...Draft) ([]Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	stream := m.events[aggregateID]
	if err := checkAppend(aggregateID, expectedSeq, int64(len(stream)), drafts); err != nil {
		return nil, err
	}
	events := build(aggregateID, int64(len(stream)), drafts, m.now())
	m.events[aggregateID] = append(stream, events...)
	return events, nil
}

func (m *MemoryStore) List(ctx context.Context, aggregateID string, afterSeq int64, limit int) ([]Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	stream := m.events[aggregateID]
	start := int(max(afterSeq, 0))
	if start >= len(stream) {
		return nil, nil
	}
	end := len(stream)
	if limit > 0 {
		end = min(end, start+limit)
	}
	return append([]Event(nil), stream[start:end]...), nil
}

func (m *MemoryStore) LastSeq(ctx context.Context, aggregateID string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.events[aggregateID])), nil
}

func (m *MemoryStore) Close() error {
	return nil
}

var _ Store = (*MemoryStore)(nil)
