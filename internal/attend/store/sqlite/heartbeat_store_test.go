package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/facewarden/server/internal/attend/store"
	"github.com/facewarden/server/internal/attend/store/sqlite"
	"github.com/facewarden/server/internal/attend/types"
)

func TestUpsertHeartbeat_CreatesKioskRow(t *testing.T) {
	conn := openTestDB(t)
	w := newTestWorker(t, conn)
	hs := sqlite.NewHeartbeatStore(conn, w)
	ks := sqlite.NewKioskStore(conn, w)
	ctx := context.Background()

	ok := true
	err := hs.UpsertHeartbeat(ctx, "kiosk-007", store.HeartbeatRecord{
		ReceivedAt: time.Now().UTC(),
		Request: types.HeartbeatRequest{
			KioskID:         "kiosk-007",
			FirmwareVersion: "1.2.3",
			UptimeSeconds:   90,
			CameraOK:        &ok,
			IP:              "10.0.0.7",
		},
	})
	if err != nil {
		t.Fatalf("UpsertHeartbeat: %v", err)
	}

	// Auto-created kiosks start uncommissioned, so not "known".
	known, err := ks.IsKnown(ctx, "kiosk-007")
	if err != nil {
		t.Fatalf("IsKnown: %v", err)
	}
	if known {
		t.Error("auto-created kiosk should not be known")
	}

	var count int
	if err := conn.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM kiosk_heartbeats WHERE kiosk_id = 'kiosk-007';",
	).Scan(&count); err != nil {
		t.Fatalf("count heartbeats: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 heartbeat row, got %d", count)
	}
}

func TestPruneOlderThan(t *testing.T) {
	conn := openTestDB(t)
	w := newTestWorker(t, conn)
	hs := sqlite.NewHeartbeatStore(conn, w)
	ctx := context.Background()

	now := time.Now().UTC()
	old := now.Add(-48 * time.Hour)

	for _, at := range []time.Time{old, old.Add(time.Hour), now} {
		err := hs.UpsertHeartbeat(ctx, "kiosk-001", store.HeartbeatRecord{
			ReceivedAt: at,
			Request:    types.HeartbeatRequest{KioskID: "kiosk-001"},
		})
		if err != nil {
			t.Fatalf("UpsertHeartbeat: %v", err)
		}
	}

	deleted, err := hs.PruneOlderThan(ctx, now.Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("PruneOlderThan: %v", err)
	}
	if deleted != 2 {
		t.Errorf("expected 2 deleted, got %d", deleted)
	}

	var remaining int
	if err := conn.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM kiosk_heartbeats;",
	).Scan(&remaining); err != nil {
		t.Fatalf("count heartbeats: %v", err)
	}
	if remaining != 1 {
		t.Errorf("expected 1 remaining row, got %d", remaining)
	}
}

func TestKioskStore_MarkSeenThenCommission(t *testing.T) {
	conn := openTestDB(t)
	w := newTestWorker(t, conn)
	ks := sqlite.NewKioskStore(conn, w)
	ctx := context.Background()

	if err := ks.MarkSeen(ctx, "kiosk-002", time.Now().UTC()); err != nil {
		t.Fatalf("MarkSeen: %v", err)
	}

	known, err := ks.IsKnown(ctx, "kiosk-002")
	if err != nil {
		t.Fatalf("IsKnown: %v", err)
	}
	if known {
		t.Error("uncommissioned kiosk should not be known")
	}

	nowMs := time.Now().UTC().UnixMilli()
	if _, err := conn.ExecContext(ctx, `
UPDATE kiosks SET enabled = 1, commissioned_at_ms = ? WHERE kiosk_id = 'kiosk-002';
`, nowMs); err != nil {
		t.Fatalf("commission kiosk: %v", err)
	}

	known, err = ks.IsKnown(ctx, "kiosk-002")
	if err != nil {
		t.Fatalf("IsKnown: %v", err)
	}
	if !known {
		t.Error("commissioned kiosk should be known")
	}
}
