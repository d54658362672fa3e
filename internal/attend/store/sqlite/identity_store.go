package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	dbpkg "github.com/facewarden/server/internal/db"

	"github.com/facewarden/server/internal/attend/store"
)

type IdentityStore struct {
	db     *sql.DB
	writer *dbpkg.Worker
}

func NewIdentityStore(db *sql.DB, writer *dbpkg.Worker) *IdentityStore {
	return &IdentityStore{db: db, writer: writer}
}

func (s *IdentityStore) Insert(ctx context.Context, nameCiphertext string, createdAt time.Time) (store.Identity, error) {
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	createdMs := createdAt.UTC().UnixMilli()

	var id int64
	err := s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
INSERT INTO identities(name_ciphertext, created_at_ms)
VALUES (?, ?);
`, nameCiphertext, createdMs)
		if err != nil {
			return fmt.Errorf("Insert identity: %w", err)
		}
		id, err = res.LastInsertId()
		if err != nil {
			return fmt.Errorf("Insert identity id: %w", err)
		}
		return nil
	})
	if err != nil {
		return store.Identity{}, err
	}

	return store.Identity{
		ID:             id,
		NameCiphertext: nameCiphertext,
		CreatedAt:      time.UnixMilli(createdMs).UTC(),
	}, nil
}

func (s *IdentityStore) All(ctx context.Context) ([]store.Identity, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, name_ciphertext, created_at_ms
FROM identities
ORDER BY id ASC;
`)
	if err != nil {
		return nil, fmt.Errorf("All identities query: %w", err)
	}
	defer rows.Close()

	var out []store.Identity
	for rows.Next() {
		var id store.Identity
		var createdMs int64
		if err := rows.Scan(&id.ID, &id.NameCiphertext, &createdMs); err != nil {
			return nil, fmt.Errorf("All identities scan: %w", err)
		}
		id.CreatedAt = time.UnixMilli(createdMs).UTC()
		out = append(out, id)
	}
	return out, rows.Err()
}

func (s *IdentityStore) Delete(ctx context.Context, id int64) error {
	return s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
DELETE FROM identities WHERE id = ?;
`, id); err != nil {
			return fmt.Errorf("Delete identity: %w", err)
		}
		return nil
	})
}
