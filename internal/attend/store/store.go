package store

import (
	"context"
	"time"

	"github.com/facewarden/server/internal/attend/types"
)

// Identity is a durable enrolled person.  The display name is stored
// encrypted; it is never persisted in cleartext on this table.
type Identity struct {
	ID             int64
	NameCiphertext string
	CreatedAt      time.Time
}

type IdentityStore interface {
	Insert(ctx context.Context, nameCiphertext string, createdAt time.Time) (Identity, error)
	// All returns every identity, ascending by id.  The resolver scans
	// this to map a vector-index label back to an identity.
	All(ctx context.Context) ([]Identity, error)
	Delete(ctx context.Context, id int64) error
}

// LedgerRecord is one accepted attendance event.  DisplayName is a
// cleartext copy for operational readability; ProofCiphertext is opaque
// vault output.  PrevHash/CurrentHash chain the record to its predecessor.
type LedgerRecord struct {
	ID              int64
	IdentityID      int64
	DisplayName     string
	Confidence      float64
	RecordedAt      time.Time
	ProofCiphertext string
	Status          string
	PrevHash        string
	CurrentHash     string
}

// LedgerStore persists the append-only attendance chain.
type LedgerStore interface {
	// Append inserts rec as a single transaction and returns the stored
	// record with its assigned id.
	Append(ctx context.Context, rec LedgerRecord) (LedgerRecord, error)
	// LastHash returns the chain tail's current_hash, or the genesis
	// sentinel when the table is empty.  Callers must hold the recorder's
	// critical section across LastHash and the Append that depends on it.
	LastHash(ctx context.Context) (string, error)
	// All returns records ascending by id — the stored chain order the
	// verifier walks.
	All(ctx context.Context) ([]LedgerRecord, error)
	Get(ctx context.Context, id int64) (LedgerRecord, bool, error)
	// Delete removes one record.  Destructive: chain verification fails
	// from the deleted position onward.
	Delete(ctx context.Context, id int64) error
}

type KioskStore interface {
	IsKnown(ctx context.Context, kioskID string) (bool, error)
	MarkSeen(ctx context.Context, kioskID string, t time.Time) error
}

type HeartbeatRecord struct {
	ReceivedAt time.Time
	Request    types.HeartbeatRequest
}

type HeartbeatStore interface {
	UpsertHeartbeat(ctx context.Context, kioskID string, rec HeartbeatRecord) error
	PruneOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
