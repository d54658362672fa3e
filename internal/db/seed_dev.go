package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

type SeedDevOptions struct {
	// Optional: config-known kiosks to pre-commission in dev.
	KnownKiosks []string
}

func SeedDev(ctx context.Context, db *sql.DB, opt SeedDevOptions) error {
	now := time.Now().UTC().UnixMilli()

	kiosks := opt.KnownKiosks
	if len(kiosks) == 0 {
		kiosks = []string{"kiosk-001"}
	}

	for _, kid := range kiosks {
		kid = strings.TrimSpace(kid)
		if kid == "" {
			continue
		}

		if _, err := db.ExecContext(ctx, `
INSERT INTO kiosks(
  kiosk_id, display_name,
  enabled, commissioned_at_ms,
  created_at_ms, updated_at_ms
) VALUES (?, ?, 1, ?, ?, ?)
ON CONFLICT(kiosk_id) DO UPDATE SET
  enabled = 1,
  commissioned_at_ms = COALESCE(kiosks.commissioned_at_ms, excluded.commissioned_at_ms),
  updated_at_ms = excluded.updated_at_ms;
`, kid, kid, now, now, now); err != nil {
			return fmt.Errorf("seed kiosk %s: %w", kid, err)
		}
	}

	return nil
}
