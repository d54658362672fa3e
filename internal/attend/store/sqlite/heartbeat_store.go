package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	dbpkg "github.com/facewarden/server/internal/db"

	"github.com/facewarden/server/internal/attend/store"
)

type HeartbeatStore struct {
	db     *sql.DB
	writer *dbpkg.Worker
}

func NewHeartbeatStore(db *sql.DB, writer *dbpkg.Worker) *HeartbeatStore {
	return &HeartbeatStore{db: db, writer: writer}
}

func (s *HeartbeatStore) UpsertHeartbeat(ctx context.Context, kioskID string, rec store.HeartbeatRecord) error {
	kioskID = strings.TrimSpace(kioskID)
	if kioskID == "" {
		return nil
	}

	if rec.ReceivedAt.IsZero() {
		rec.ReceivedAt = time.Now().UTC()
	}
	recvMs := rec.ReceivedAt.UTC().UnixMilli()

	fw := strings.TrimSpace(rec.Request.FirmwareVersion)
	ip := strings.TrimSpace(rec.Request.IP)

	uptimeMs := any(nil)
	if rec.Request.UptimeSeconds != 0 {
		uptimeMs = int64(rec.Request.UptimeSeconds) * 1000
	}

	var cameraOK any
	if rec.Request.CameraOK != nil {
		if *rec.Request.CameraOK {
			cameraOK = 1
		} else {
			cameraOK = 0
		}
	}

	return s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if err := ensureKiosk(ctx, tx, kioskID, recvMs); err != nil {
			return err
		}

		// Insert heartbeat event (append-only)
		if _, err := tx.ExecContext(ctx, `
INSERT INTO kiosk_heartbeats(
  kiosk_id, received_at_ms, uptime_ms, fw_version, ip, camera_ok
) VALUES (?, ?, ?, ?, ?, ?);
`, kioskID, recvMs, uptimeMs, fw, ip, cameraOK); err != nil {
			return fmt.Errorf("UpsertHeartbeat insert heartbeat: %w", err)
		}

		// Update kiosk snapshot (fast "current status" queries)
		if _, err := tx.ExecContext(ctx, `
UPDATE kiosks
SET last_seen_at_ms = ?,
    last_ip = ?,
    last_fw_version = ?,
    updated_at_ms = ?
WHERE kiosk_id = ?;
`, recvMs, ip, fw, recvMs, kioskID); err != nil {
			return fmt.Errorf("UpsertHeartbeat update kiosk snapshot: %w", err)
		}

		return nil
	})
}

// PruneOlderThan deletes heartbeat rows with received_at_ms before the given
// cutoff time.  Returns the number of rows deleted.
//
// Uses the idx_heartbeats_time index for an efficient range scan.
func (s *HeartbeatStore) PruneOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	cutoffMs := cutoff.UTC().UnixMilli()

	var deleted int64
	err := s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
DELETE FROM kiosk_heartbeats
WHERE received_at_ms < ?;
`, cutoffMs)
		if err != nil {
			return fmt.Errorf("PruneOlderThan: %w", err)
		}
		deleted, _ = res.RowsAffected()
		return nil
	})
	return deleted, err
}
