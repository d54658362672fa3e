package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/facewarden/server/internal/attend/service"
	"github.com/facewarden/server/internal/recog"
	"github.com/facewarden/server/internal/vault"
)

func newTestLog(t *testing.T, e *engine) *service.AttendanceLog {
	t.Helper()
	return service.NewAttendanceLog(e.records, e.gate, sharedVault(t), discardLogger())
}

// scanAs drives one successful recognition through the engine.
func scanAs(t *testing.T, e *engine, embedding []float32, proof string, now time.Time) {
	t.Helper()
	out, err := e.recorder.Record(context.Background(), service.RecognizeInput{
		Embedding: embedding,
		Liveness:  recog.LivenessReal,
		Proof:     proof,
		Now:       now,
	})
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if out.Kind != service.OutcomeSuccess {
		t.Fatalf("expected success, got %v", out.Kind)
	}
}

func TestList_DecryptsProofNewestFirst(t *testing.T) {
	e := newTestEngine(t, 0.5, time.Minute)
	e.enroll(t, "alice", []float32{1, 0})
	e.enroll(t, "bob", []float32{0, 1})
	logsvc := newTestLog(t, e)
	ctx := context.Background()

	scanAs(t, e, []float32{1, 0}, "proof-alice", onTimeAt(0))
	scanAs(t, e, []float32{0, 1}, "proof-bob", onTimeAt(1))

	entries, err := logsvc.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].DisplayName != "bob" {
		t.Errorf("expected newest first, got %q", entries[0].DisplayName)
	}
	if entries[0].Proof != "proof-bob" || entries[1].Proof != "proof-alice" {
		t.Errorf("proofs not decrypted: %q / %q", entries[0].Proof, entries[1].Proof)
	}
}

func TestList_MasksUndecryptableProof(t *testing.T) {
	e := newTestEngine(t, 0.5, time.Minute)
	e.enroll(t, "alice", []float32{1, 0})
	logsvc := newTestLog(t, e)
	ctx := context.Background()

	scanAs(t, e, []float32{1, 0}, "proof-alice", onTimeAt(0))

	// Corrupt the stored ciphertext in place.
	all, _ := e.records.All(ctx)
	rec := all[0]
	if err := e.records.Delete(ctx, rec.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	rec.ProofCiphertext = "corrupted-ciphertext"
	if _, err := e.records.Append(ctx, rec); err != nil {
		t.Fatalf("Append: %v", err)
	}

	entries, err := logsvc.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].Proof != vault.CorruptionSentinel {
		t.Errorf("proof = %q, want corruption sentinel", entries[0].Proof)
	}
}

func TestVerify_IntactAndTampered(t *testing.T) {
	e := newTestEngine(t, 0.5, time.Minute)
	e.enroll(t, "alice", []float32{1, 0})
	e.enroll(t, "bob", []float32{0, 1})
	logsvc := newTestLog(t, e)
	ctx := context.Background()

	scanAs(t, e, []float32{1, 0}, "", onTimeAt(0))
	scanAs(t, e, []float32{0, 1}, "", onTimeAt(1))

	intact, n, err := logsvc.Verify(ctx)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if !intact || n != 2 {
		t.Errorf("expected intact chain of 2, got intact=%v n=%d", intact, n)
	}

	// Tamper with the first record's status.
	all, _ := e.records.All(ctx)
	first := all[0]
	if err := e.records.Delete(ctx, first.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	first.Status = service.StatusLate
	if _, err := e.records.Append(ctx, first); err != nil {
		t.Fatalf("Append: %v", err)
	}

	intact, _, err = logsvc.Verify(ctx)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if intact {
		t.Error("tampered chain reported intact")
	}
}

func TestDelete_ClearsDebounceAndFlagsBreak(t *testing.T) {
	e := newTestEngine(t, 0.5, time.Minute)
	e.enroll(t, "alice", []float32{1, 0})
	e.enroll(t, "bob", []float32{0, 1})
	logsvc := newTestLog(t, e)
	ctx := context.Background()

	t0 := onTimeAt(0)
	scanAs(t, e, []float32{1, 0}, "", t0)
	scanAs(t, e, []float32{0, 1}, "", t0)

	all, _ := e.records.All(ctx)
	aliceRec := all[0]

	// Deleting a non-tail record breaks the chain onward.
	chainBroken, err := logsvc.Delete(ctx, aliceRec.ID)
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if !chainBroken {
		t.Error("expected chain_broken=true for non-tail delete")
	}

	intact, _, err := logsvc.Verify(ctx)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if intact {
		t.Error("chain should not verify after mid-chain delete")
	}

	// Alice is immediately eligible again despite the cooldown.
	out, err := e.recorder.Record(ctx, service.RecognizeInput{
		Embedding: []float32{1, 0},
		Liveness:  recog.LivenessReal,
		Now:       t0.Add(5 * time.Second),
	})
	if err != nil {
		t.Fatalf("Record after delete: %v", err)
	}
	if out.Kind != service.OutcomeSuccess {
		t.Errorf("expected fresh scan to succeed after delete, got %v", out.Kind)
	}
}

func TestDelete_TailLeavesPrefixVerifiable(t *testing.T) {
	e := newTestEngine(t, 0.5, time.Minute)
	e.enroll(t, "alice", []float32{1, 0})
	e.enroll(t, "bob", []float32{0, 1})
	logsvc := newTestLog(t, e)
	ctx := context.Background()

	scanAs(t, e, []float32{1, 0}, "", onTimeAt(0))
	scanAs(t, e, []float32{0, 1}, "", onTimeAt(1))

	all, _ := e.records.All(ctx)
	tail := all[len(all)-1]

	chainBroken, err := logsvc.Delete(ctx, tail.ID)
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if chainBroken {
		t.Error("tail delete should not flag a break")
	}

	intact, n, err := logsvc.Verify(ctx)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if !intact || n != 1 {
		t.Errorf("prefix should verify after tail delete, got intact=%v n=%d", intact, n)
	}
}

func TestDelete_MissingRecord(t *testing.T) {
	e := newTestEngine(t, 0.5, time.Minute)
	logsvc := newTestLog(t, e)

	_, err := logsvc.Delete(context.Background(), 42)
	if !errors.Is(err, service.ErrRecordNotFound) {
		t.Errorf("expected ErrRecordNotFound, got %v", err)
	}
}
