package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/facewarden/server/internal/attend/store"
	"github.com/facewarden/server/internal/ledger"
)

// LedgerStore is an in-memory append-only attendance chain.  Intended for
// tests and dev environments.
type LedgerStore struct {
	mu     sync.Mutex
	nextID int64
	rows   []store.LedgerRecord

	// FailAppends forces Append to return an error.  Test-only knob for
	// exercising the recorder's rollback path.
	FailAppends bool
}

var ErrAppendFailed = errors.New("append failed")

func NewLedgerStore() *LedgerStore {
	return &LedgerStore{nextID: 1}
}

func (s *LedgerStore) Append(_ context.Context, rec store.LedgerRecord) (store.LedgerRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailAppends {
		return store.LedgerRecord{}, ErrAppendFailed
	}

	if rec.RecordedAt.IsZero() {
		rec.RecordedAt = time.Now().UTC()
	}
	rec.ID = s.nextID
	s.nextID++
	s.rows = append(s.rows, rec)
	return rec, nil
}

func (s *LedgerStore) LastHash(_ context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.rows) == 0 {
		return ledger.Genesis, nil
	}
	return s.rows[len(s.rows)-1].CurrentHash, nil
}

func (s *LedgerStore) All(_ context.Context) ([]store.LedgerRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]store.LedgerRecord, len(s.rows))
	copy(out, s.rows)
	return out, nil
}

func (s *LedgerStore) Get(_ context.Context, id int64) (store.LedgerRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, row := range s.rows {
		if row.ID == id {
			return row, true, nil
		}
	}
	return store.LedgerRecord{}, false, nil
}

func (s *LedgerStore) Delete(_ context.Context, id int64) error {
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
