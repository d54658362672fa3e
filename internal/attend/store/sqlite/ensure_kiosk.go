package sqlite

import (
	"context"
	"database/sql"
	"fmt"
)

// ensureKiosk guarantees a kiosks row exists for the given kioskID so that
// foreign-key constraints from heartbeats are satisfied.
//
// New rows start disabled and uncommissioned — only an admin action (or the
// dev seeder) should set enabled=1 and commissioned_at_ms.
//
// Must be called inside an existing transaction.
func ensureKiosk(ctx context.Context, tx *sql.Tx, kioskID string, nowMs int64) error {
	if _, err := tx.ExecContext(ctx, `
INSERT OR IGNORE INTO kiosks(
  kiosk_id, enabled, created_at_ms, updated_at_ms
) VALUES (?, 0, ?, ?);
`, kioskID, nowMs, nowMs); err != nil {
		return fmt.Errorf("ensureKiosk %s: %w", kioskID, err)
	}
	return nil
}
