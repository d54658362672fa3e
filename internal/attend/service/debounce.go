package service

import (
	"sync"
	"time"
)

// DebounceGate tracks the last accepted scan per identity so the same
// person standing in front of a kiosk does not generate a ledger record per
// frame.  State is process-lifetime only; it is not persisted.
//
// The gate's own mutex makes individual calls safe from any goroutine
// (the administrative delete path clears entries concurrently), but the
// check-then-record sequence is only atomic under the recorder's critical
// section — callers deciding an append must hold that lock across both.
type DebounceGate struct {
	mu   sync.Mutex
	last map[int64]time.Time
}

func NewDebounceGate() *DebounceGate {
	return &DebounceGate{last: make(map[int64]time.Time)}
}

// ShouldAccept reports whether an event for identityID at now is outside
// the cooldown window.  It does not mutate state.
func (g *DebounceGate) ShouldAccept(identityID int64, now time.Time, cooldown time.Duration) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	last, ok := g.last[identityID]
	if !ok {
		return true
	}
	return now.Sub(last) >= cooldown
}

// Record marks now as the last accepted scan for identityID.
func (g *DebounceGate) Record(identityID int64, now time.Time) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.last[identityID] = now
}

// Clear drops the entry for identityID, making it immediately eligible for
// a fresh scan.  Called when the identity's record is administratively
// removed.
func (g *DebounceGate) Clear(identityID int64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.last, identityID)
}
