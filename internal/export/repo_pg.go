package export

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

func (r *PGRepo) Create(ctx context.Context, exp Export) error {
	const query = `
INSERT INTO exports (id, session_id, user_id, format, file_name, storage_key, content_type, size_bytes, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	createdAt := exp.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := r.DB.ExecContext(
		ctx,
		query,
		exp.ID,
		exp.SessionID,
		exp.UserID,
		exp.Format,
		exp.FileName,
		exp.StorageKey,
		exp.ContentType,
		exp.SizeBytes,
		createdAt,
	)
	return err
}

func (r *PGRepo) GetByID(ctx context.Context, userID, exportID string) (Export, error) {
	const query = `
SELECT id, session_id, user_id, format, file_name, storage_key, content_type, size_bytes, created_at
FROM exports
WHERE user_id = $1 AND id = $2
LIMIT 1`

	var exp Export
	err := r.DB.QueryRowContext(ctx, query, userID, exportID).Scan(
		&exp.ID,
		&exp.SessionID,
		&exp.UserID,
		&exp.Format,
		&exp.FileName,
		&exp.StorageKey,
		&exp.ContentType,
		&exp.SizeBytes,
		&exp.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Export{}, ErrNotFound
		}
		return Export{}, err
	}
	return exp, nil
}

func (r *PGRepo) DeleteByUser(ctx context.Context, userID string) (int, error) {
	const query = `DELETE FROM exports WHERE user_id = $1`
	res, err := r.DB.ExecContext(ctx, query, userID)
	if err != nil {
		return 0, err
	}
	removed, _ := res.RowsAffected()
	return int(removed), nil
}

var _ Repo = (*PGRepo)(nil)
