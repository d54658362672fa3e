package service_test

import (
	"context"
	"io"
	"log"
	"sync"
	"testing"
	"time"

	"github.com/facewarden/server/internal/attend/service"
	"github.com/facewarden/server/internal/attend/store/memory"
	"github.com/facewarden/server/internal/recog/memindex"
	"github.com/facewarden/server/internal/vault"
)

var (
	testVaultOnce sync.Once
	testVault     *vault.Vault
)

// sharedVault derives the test vault key once; PBKDF2 at production
// iteration counts is too slow to repeat per test.
func sharedVault(t *testing.T) *vault.Vault {
	t.Helper()
	testVaultOnce.Do(func() {
		v, err := vault.New("test-passphrase")
		if err != nil {
			t.Fatalf("vault.New: %v", err)
		}
		testVault = v
	})
	return testVault
}

func discardLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

// engine bundles the full in-memory decision pipeline for tests.
type engine struct {
	recorder   *service.AttendanceRecorder
	resolver   *service.IdentityResolver
	index      *memindex.Index
	identities *memory.IdentityStore
	records    *memory.LedgerStore
	gate       *service.DebounceGate
}

func newTestEngine(t *testing.T, threshold float64, cooldown time.Duration) *engine {
	t.Helper()

	v := sharedVault(t)
	logger := discardLogger()

	index := memindex.New()
	identities := memory.NewIdentityStore()
	records := memory.NewLedgerStore()
	gate := service.NewDebounceGate()

	resolver := service.NewIdentityResolver(index, v, identities, threshold, logger)
	recorder, err := service.NewAttendanceRecorder(resolver, gate, records, v, service.RecorderConfig{
		Cooldown:   cooldown,
		ShiftStart: "09:00",
	}, logger)
	if err != nil {
		t.Fatalf("NewAttendanceRecorder: %v", err)
	}

	return &engine{
		recorder:   recorder,
		resolver:   resolver,
		index:      index,
		identities: identities,
		records:    records,
		gate:       gate,
	}
}

// enroll adds one embedding for label directly to the index.
func (e *engine) enroll(t *testing.T, label string, embedding []float32) {
	t.Helper()
	if err := e.index.Add(context.Background(), label, embedding); err != nil {
		t.Fatalf("index.Add(%q): %v", label, err)
	}
}

// onTimeAt is a timestamp safely before the 09:00 test shift start.
func onTimeAt(minuteOffset int) time.Time {
	return time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC).Add(time.Duration(minuteOffset) * time.Minute)
}
