package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/facewarden/server/internal/attend/service"
	"github.com/facewarden/server/internal/attend/store/memory"
	"github.com/facewarden/server/internal/attend/types"
)

func newTestHeartbeatService(knownKiosks []string) *service.HeartbeatService {
	kioskStore := memory.NewKioskStore(knownKiosks)
	registry := service.NewKioskRegistry(kioskStore)
	return service.NewHeartbeatService(memory.NewHeartbeatStore(), registry)
}

func TestHeartbeat_KnownKiosk(t *testing.T) {
	svc := newTestHeartbeatService([]string{"kiosk-001"})

	resp, err := svc.Record(context.Background(), types.HeartbeatRequest{
		KioskID:       "kiosk-001",
		UptimeSeconds: 42,
	})
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if !resp.OK || !resp.Known {
		t.Errorf("expected ok/known, got %+v", resp)
	}
}

func TestHeartbeat_UnknownKioskStillRecorded(t *testing.T) {
	svc := newTestHeartbeatService([]string{"kiosk-001"})

	resp, err := svc.Record(context.Background(), types.HeartbeatRequest{
		KioskID: "rogue-kiosk",
	})
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if !resp.OK {
		t.Error("unknown kiosk heartbeat should still be accepted")
	}
	if resp.Known {
		t.Error("expected known=false for unknown kiosk")
	}
}

func TestHeartbeat_MissingKioskID(t *testing.T) {
	svc := newTestHeartbeatService(nil)

	_, err := svc.Record(context.Background(), types.HeartbeatRequest{})
	if !errors.Is(err, service.ErrInvalidKioskID) {
		t.Errorf("expected ErrInvalidKioskID, got %v", err)
	}
}
