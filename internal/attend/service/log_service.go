package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/facewarden/server/internal/attend/store"
	"github.com/facewarden/server/internal/attend/types"
	"github.com/facewarden/server/internal/ledger"
	"github.com/facewarden/server/internal/vault"
)

var (
	ErrRecordNotFound = errors.New("record not found")
)

// AttendanceLog serves read and administrative operations over the ledger:
// decrypted listing, full-chain verification, and destructive deletion.
type AttendanceLog struct {
	records store.LedgerStore
	gate    *DebounceGate
	vault   *vault.Vault
	logger  *log.Logger
}

func NewAttendanceLog(records store.LedgerStore, gate *DebounceGate, v *vault.Vault, logger *log.Logger) *AttendanceLog {
	return &AttendanceLog{records: records, gate: gate, vault: v, logger: logger}
}

// List returns every record newest-first with the proof payload decrypted
// for display.  Rows whose proof cannot be decrypted come back with the
// corruption sentinel in place of the payload — the listing never fails
// because of one unreadable field.
func (s *AttendanceLog) List(ctx context.Context) ([]types.AttendanceEntry, error) {
	all, err := s.records.All(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]types.AttendanceEntry, 0, len(all))
	for i := len(all) - 1; i >= 0; i-- {
		rec := all[i]

		proof := s.vault.Decrypt(rec.ProofCiphertext)
		if proof == vault.CorruptionSentinel {
			s.logger.Printf("record %d: undecryptable proof payload", rec.ID)
		}

		out = append(out, types.AttendanceEntry{
			ID:          rec.ID,
			IdentityID:  rec.IdentityID,
			DisplayName: rec.DisplayName,
			Confidence:  rec.Confidence,
			Timestamp:   rec.RecordedAt.Format(time.RFC3339Nano),
			Proof:       proof,
			Status:      rec.Status,
			PrevHash:    rec.PrevHash,
			CurrentHash: rec.CurrentHash,
		})
	}
	return out, nil
}

// Verify walks the full chain in stored order and reports whether it is
// intact, plus the number of records inspected.
func (s *AttendanceLog) Verify(ctx context.Context) (bool, int, error) {
	all, err := s.records.All(ctx)
	if err != nil {
		return false, 0, err
	}

	chain := make([]ledger.Record, 0, len(all))
	for _, rec := range all {
		chain = append(chain, ledger.Record{
			Fields: ledger.Fields{
				IdentityID: rec.IdentityID,
				Timestamp:  rec.RecordedAt,
				Confidence: rec.Confidence,
				Status:     rec.Status,
			},
			PrevHash:    rec.PrevHash,
			CurrentHash: rec.CurrentHash,
		})
	}

	return ledger.VerifyChain(chain), len(chain), nil
}

// Delete removes one record by id and clears its identity's debounce entry
// so the person is immediately eligible for a fresh scan.
//
// Destructive: if any record was appended after the deleted one,
// chain verification fails from the deleted position onward.  The returned
// chainBroken flag reports exactly that case (deleting the tail leaves the
// remaining prefix verifiable).
func (s *AttendanceLog) Delete(ctx context.Context, id int64) (chainBroken bool, err error) {
	rec, found, err := s.records.Get(ctx, id)
	if err != nil {
		return false, err
	}
	if !found {
		return false, ErrRecordNotFound
	}

	tail, err := s.records.LastHash(ctx)
	if err != nil {
		return false, err
	}
	chainBroken = tail != rec.CurrentHash

	if err := s.records.Delete(ctx, id); err != nil {
		return false, err
	}

	s.gate.Clear(rec.IdentityID)
	s.logger.Printf("record %d deleted (identity=%d, chain_broken=%v)", id, rec.IdentityID, chainBroken)
	return chainBroken, nil
}
