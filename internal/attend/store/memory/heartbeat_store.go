package memory

import (
	"context"
	"sync"
	"time"

	"github.com/facewarden/server/internal/attend/store"
)

type HeartbeatStore struct {
	mu   sync.RWMutex
	data map[string]store.HeartbeatRecord
}

func NewHeartbeatStore() *HeartbeatStore {
	return &HeartbeatStore{
		data: make(map[string]store.HeartbeatRecord),
	}
}

func (s *HeartbeatStore) UpsertHeartbeat(_ context.Context, kioskID string, rec store.HeartbeatRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec.ReceivedAt.IsZero() {
		rec.ReceivedAt = time.Now().UTC()
	}
	s.data[kioskID] = rec
	return nil
}

func (s *HeartbeatStore) PruneOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted int64
	for id, rec := range s.data {
		if rec.ReceivedAt.Before(cutoff) {
			delete(s.data, id)
			deleted++
		}
	}
	return deleted, nil
}
