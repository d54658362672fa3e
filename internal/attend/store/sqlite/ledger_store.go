package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	dbpkg "github.com/facewarden/server/internal/db"

	"github.com/facewarden/server/internal/attend/store"
	"github.com/facewarden/server/internal/ledger"
)

type LedgerStore struct {
	db     *sql.DB
	writer *dbpkg.Worker
}

func NewLedgerStore(db *sql.DB, writer *dbpkg.Worker) *LedgerStore {
	return &LedgerStore{db: db, writer: writer}
}

func (s *LedgerStore) Append(ctx context.Context, rec store.LedgerRecord) (store.LedgerRecord, error) {
	if rec.RecordedAt.IsZero() {
		rec.RecordedAt = time.Now().UTC()
	}
	recordedMs := rec.RecordedAt.UTC().UnixMilli()

	err := s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
INSERT INTO ledger_records(
  identity_id, display_name, confidence, recorded_at_ms,
  proof_ciphertext, status, prev_hash, current_hash
) VALUES (?, ?, ?, ?, ?, ?, ?, ?);
`,
			rec.IdentityID, rec.DisplayName, rec.Confidence, recordedMs,
			rec.ProofCiphertext, rec.Status, rec.PrevHash, rec.CurrentHash,
		)
		if err != nil {
			return fmt.Errorf("Append insert: %w", err)
		}
		rec.ID, err = res.LastInsertId()
		if err != nil {
			return fmt.Errorf("Append id: %w", err)
		}
		return nil
	})
	if err != nil {
		return store.LedgerRecord{}, err
	}

	rec.RecordedAt = time.UnixMilli(recordedMs).UTC()
	return rec, nil
}

func (s *LedgerStore) LastHash(ctx context.Context) (string, error) {
	var h string
	err := s.db.QueryRowContext(ctx, `
SELECT current_hash FROM ledger_records
ORDER BY id DESC LIMIT 1;
`).Scan(&h)
	if err == sql.ErrNoRows {
		return ledger.Genesis, nil
	}
	if err != nil {
		return "", fmt.Errorf("LastHash query: %w", err)
	}
	return h, nil
}

func (s *LedgerStore) All(ctx context.Context) ([]store.LedgerRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, identity_id, display_name, confidence, recorded_at_ms,
       proof_ciphertext, status, prev_hash, current_hash
FROM ledger_records
ORDER BY id ASC;
`)
	if err != nil {
		return nil, fmt.Errorf("All ledger query: %w", err)
	}
	defer rows.Close()

	var out []store.LedgerRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *LedgerStore) Get(ctx context.Context, id int64) (store.LedgerRecord, bool, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT id, identity_id, display_name, confidence, recorded_at_ms,
       proof_ciphertext, status, prev_hash, current_hash
FROM ledger_records
WHERE id = ?;
`, id)

	rec, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return store.LedgerRecord{}, false, nil
	}
	if err != nil {
		return store.LedgerRecord{}, false, err
	}
	return rec, true, nil
}

func (s *LedgerStore) Delete(ctx context.Context, id int64) error {
	return s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
DELETE FROM ledger_records WHERE id = ?;
`, id); err != nil {
			return fmt.Errorf("Delete ledger record: %w", err)
		}
		return nil
	})
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(r rowScanner) (store.LedgerRecord, error) {
	var rec store.LedgerRecord
	var recordedMs int64
	err := r.Scan(
		&rec.ID, &rec.IdentityID, &rec.DisplayName, &rec.Confidence, &recordedMs,
		&rec.ProofCiphertext, &rec.Status, &rec.PrevHash, &rec.CurrentHash,
	)
	if err == sql.ErrNoRows {
		return store.LedgerRecord{}, err
	}
	if err != nil {
		return store.LedgerRecord{}, fmt.Errorf("scan ledger record: %w", err)
	}
	rec.RecordedAt = time.UnixMilli(recordedMs).UTC()
	return rec, nil
}
