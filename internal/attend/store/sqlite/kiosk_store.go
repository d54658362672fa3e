package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	dbpkg "github.com/facewarden/server/internal/db"
)

type KioskStore struct {
	db     *sql.DB
	writer *dbpkg.Worker
}

func NewKioskStore(db *sql.DB, writer *dbpkg.Worker) *KioskStore {
	return &KioskStore{db: db, writer: writer}
}

// IsKnown: treat "known" as "commissioned + enabled + not revoked".
// Production kiosks are commissioned by an admin (or the dev seeder).
func (s *KioskStore) IsKnown(ctx context.Context, kioskID string) (bool, error) {
	kioskID = strings.TrimSpace(kioskID)
	if kioskID == "" {
		return false, nil
	}

	var enabled int
	var commissioned sql.NullInt64
	var revoked sql.NullInt64

	err := s.db.QueryRowContext(ctx, `
SELECT enabled, commissioned_at_ms, revoked_at_ms
FROM kiosks
WHERE kiosk_id = ?;
`, kioskID).Scan(&enabled, &commissioned, &revoked)

	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("IsKnown query: %w", err)
	}

	known := enabled == 1 && commissioned.Valid && !revoked.Valid
	return known, nil
}

// MarkSeen: ensure the kiosk row exists (even if unknown) and update
// last_seen.  Unknown kiosks start disabled/uncommissioned.
func (s *KioskStore) MarkSeen(ctx context.Context, kioskID string, t time.Time) error {
	kioskID = strings.TrimSpace(kioskID)
	if kioskID == "" {
		return nil
	}
	if t.IsZero() {
		t = time.Now().UTC()
	}
	ms := t.UTC().UnixMilli()

	return s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if err := ensureKiosk(ctx, tx, kioskID, ms); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, `
UPDATE kiosks
SET last_seen_at_ms = ?,
    updated_at_ms   = ?
WHERE kiosk_id = ?;
`, ms, ms, kioskID); err != nil {
			return fmt.Errorf("MarkSeen update kiosk: %w", err)
		}

		return nil
	})
}
