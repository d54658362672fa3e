package service_test

import (
	"testing"
	"time"

	"github.com/facewarden/server/internal/attend/service"
)

func TestDebounce_FirstScanAccepted(t *testing.T) {
	g := service.NewDebounceGate()
	now := time.Now().UTC()

	if !g.ShouldAccept(1, now, time.Minute) {
		t.Error("first scan should be accepted")
	}
}

func TestDebounce_WithinCooldownRejected(t *testing.T) {
	g := service.NewDebounceGate()
	t0 := time.Now().UTC()

	g.Record(1, t0)

	if g.ShouldAccept(1, t0.Add(30*time.Second), time.Minute) {
		t.Error("scan at t0+30s with 60s cooldown should be rejected")
	}
}

func TestDebounce_AfterCooldownAccepted(t *testing.T) {
	g := service.NewDebounceGate()
	t0 := time.Now().UTC()

	g.Record(1, t0)

	if !g.ShouldAccept(1, t0.Add(61*time.Second), time.Minute) {
		t.Error("scan at t0+61s with 60s cooldown should be accepted")
	}
}

func TestDebounce_IdentitiesIndependent(t *testing.T) {
	g := service.NewDebounceGate()
	t0 := time.Now().UTC()

	g.Record(1, t0)

	if !g.ShouldAccept(2, t0.Add(time.Second), time.Minute) {
		t.Error("a different identity should not be debounced")
	}
}

func TestDebounce_CheckDoesNotMutate(t *testing.T) {
	g := service.NewDebounceGate()
	t0 := time.Now().UTC()

	g.Record(1, t0)

	// A rejected check must leave the original timestamp in place: the
	// window does not slide on duplicate scans.
	_ = g.ShouldAccept(1, t0.Add(30*time.Second), time.Minute)
	if !g.ShouldAccept(1, t0.Add(61*time.Second), time.Minute) {
		t.Error("rejected check must not extend the cooldown window")
	}
}

func TestDebounce_ClearMakesEligible(t *testing.T) {
	g := service.NewDebounceGate()
	t0 := time.Now().UTC()

	g.Record(1, t0)
	g.Clear(1)

	if !g.ShouldAccept(1, t0.Add(time.Second), time.Minute) {
		t.Error("cleared identity should be immediately eligible")
	}
}
