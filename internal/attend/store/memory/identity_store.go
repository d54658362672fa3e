package memory

import (
	"context"
	"sync"
	"time"

	"github.com/facewarden/server/internal/attend/store"
)

type IdentityStore struct {
	mu     sync.Mutex
	nextID int64
	rows   []store.Identity
}

func NewIdentityStore() *IdentityStore {
	return &IdentityStore{nextID: 1}
}

func (s *IdentityStore) Insert(_ context.Context, nameCiphertext string, createdAt time.Time) (store.Identity, error) {
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := store.Identity{
		ID:             s.nextID,
		NameCiphertext: nameCiphertext,
		CreatedAt:      createdAt,
	}
	s.nextID++
	s.rows = append(s.rows, id)
	return id, nil
}

func (s *IdentityStore) All(_ context.Context) ([]store.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]store.Identity, len(s.rows))
	copy(out, s.rows)
	return out, nil
}

func (s *IdentityStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, row := range s.rows {
		if row.ID == id {
			s.rows = append(s.rows[:i], s.rows[i+1:]...)
			return nil
		}
	}
	return nil
}
