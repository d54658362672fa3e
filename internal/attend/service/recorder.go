package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/facewarden/server/internal/attend/store"
	"github.com/facewarden/server/internal/ledger"
	"github.com/facewarden/server/internal/recog"
	"github.com/facewarden/server/internal/vault"
)

const (
	StatusOnTime = "On Time"
	StatusLate   = "Late"
)

// OutcomeKind classifies the terminal result of one recognition
// transaction.  Denied and Spoof are ordinary negative results;
// CachedSuccess is a debounce hit with no new record; only storage
// failures surface as errors.
type OutcomeKind int

const (
	OutcomeDenied OutcomeKind = iota
	OutcomeSpoof
	OutcomeCachedSuccess
	OutcomeSuccess
)

// Outcome is the structured result of AttendanceRecorder.Record.
type Outcome struct {
	Kind          OutcomeKind
	User          string
	Status        string // On Time / Late; empty for non-success outcomes
	IntegrityHash string // truncated chain hash for display; success only
}

// RecognizeInput is one recognition event after transport decoding.
type RecognizeInput struct {
	Embedding []float32
	Liveness  recog.LivenessResult
	Proof     string    // cleartext proof payload; encrypted before persist
	Now       time.Time // zero means time.Now
}

// RecorderConfig carries the recorder's policy knobs.
type RecorderConfig struct {
	Cooldown   time.Duration
	ShiftStart string // "HH:MM"; events after this clock time are Late
}

// AttendanceRecorder runs the end-to-end transaction: resolve identity,
// debounce, build, chain-link, encrypt, persist.
//
// The chain tail and the debounce map are shared mutable state.  One mutex
// serializes the read-tail / check-debounce / append / record-debounce
// sequence; everything slow or stateless (vector search, identity
// resolution, proof encryption) runs before the lock is taken.  Two
// concurrent requests can therefore never compute records against the same
// prev_hash, and never both pass the debounce check.
type AttendanceRecorder struct {
	resolver *IdentityResolver
	gate     *DebounceGate
	records  store.LedgerStore
	vault    *vault.Vault
	cooldown time.Duration
	cutoff   dayClock
	logger   *log.Logger

	mu sync.Mutex
}

// dayClock is a wall-clock cutoff within a day.
type dayClock struct {
	hour, minute int
}

func parseDayClock(s string) (dayClock, error) {
	parts := strings.SplitN(strings.TrimSpace(s), ":", 2)
	if len(parts) != 2 {
		return dayClock{}, fmt.Errorf("bad clock %q: want HH:MM", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return dayClock{}, fmt.Errorf("bad clock hour %q", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return dayClock{}, fmt.Errorf("bad clock minute %q", s)
	}
	return dayClock{hour: h, minute: m}, nil
}

// after reports whether t's wall-clock time is strictly past the cutoff.
func (c dayClock) after(t time.Time) bool {
	return t.Hour()*60+t.Minute() > c.hour*60+c.minute
}

func NewAttendanceRecorder(
	resolver *IdentityResolver,
	gate *DebounceGate,
	records store.LedgerStore,
	v *vault.Vault,
	cfg RecorderConfig,
	logger *log.Logger,
) (*AttendanceRecorder, error) {
	cutoff, err := parseDayClock(cfg.ShiftStart)
	if err != nil {
		return nil, err
	}
	cooldown := cfg.Cooldown
	if cooldown <= 0 {
		cooldown = time.Minute
	}

	return &AttendanceRecorder{
		resolver: resolver,
		gate:     gate,
		records:  records,
		vault:    v,
		cooldown: cooldown,
		cutoff:   cutoff,
		logger:   logger,
	}, nil
}

// Gate exposes the debounce gate so the administrative delete path can
// clear entries.
func (r *AttendanceRecorder) Gate() *DebounceGate { return r.gate }

// Record executes one recognition transaction.  Returned errors are
// transient storage failures; every policy result (denied, spoof, cached,
// success) arrives as an Outcome.
func (r *AttendanceRecorder) Record(ctx context.Context, in RecognizeInput) (Outcome, error) {
	now := in.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	// Anti-spoofing.  Unavailable passes: the liveness model is optional
	// and its absence must not block the pipeline (fail-open policy).
	if in.Liveness == recog.LivenessFake {
		r.logger.Printf("spoofing detected, rejecting scan")
		return Outcome{Kind: OutcomeSpoof}, nil
	}

	resolved, err := r.resolver.Resolve(ctx, in.Embedding)
	if errors.Is(err, ErrNoMatch) {
		return Outcome{Kind: OutcomeDenied}, nil
	}
	if err != nil {
		return Outcome{}, err
	}

	// Proof encryption is stateless; keep it outside the critical section.
	proofCiphertext, err := r.vault.Encrypt(in.Proof)
	if err != nil {
		return Outcome{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.gate.ShouldAccept(resolved.Identity.ID, now, r.cooldown) {
		r.logger.Printf("identity %d scanned recently, returning cached result", resolved.Identity.ID)
		return Outcome{
			Kind: OutcomeCachedSuccess,
			User: resolved.Label,
		}, nil
	}

	prevHash, err := r.records.LastHash(ctx)
	if err != nil {
		return Outcome{}, err
	}

	status := StatusOnTime
	if r.cutoff.after(now) {
		status = StatusLate
	}

	fields := ledger.Fields{
		IdentityID: resolved.Identity.ID,
		Timestamp:  now,
		Confidence: resolved.Score,
		Status:     status,
	}
	currentHash := ledger.ComputeHash(prevHash, fields)

	rec, err := r.records.Append(ctx, store.LedgerRecord{
		IdentityID:      resolved.Identity.ID,
		DisplayName:     resolved.Label,
		Confidence:      resolved.Score,
		RecordedAt:      now,
		ProofCiphertext: proofCiphertext,
		Status:          status,
		PrevHash:        prevHash,
		CurrentHash:     currentHash,
	})
	if err != nil {
		// Rolled back: the debounce entry stays untouched so the caller
		// can retry the whole scan.
		return Outcome{}, err
	}

	// Debounce acceptance commits together with the append, under the
	// same lock hold.
	r.gate.Record(resolved.Identity.ID, now)

	r.logger.Printf("attendance recorded for %q (id=%d, status=%s, hash=%s...)",
		resolved.Label, resolved.Identity.ID, status, rec.CurrentHash[:10])

	return Outcome{
		Kind:          OutcomeSuccess,
		User:          resolved.Label,
		Status:        status,
		IntegrityHash: truncateHash(rec.CurrentHash),
	}, nil
}

func truncateHash(h string) string {
	if len(h) <= 10 {
		return h
	}
	return h[:10] + "..."
}
