package sessions

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"careplan-backend/internal/recommend"
)

// PGRepo implements Repo using Postgres. Answers, financials, and the stored
// recommendation live in JSONB columns; the flat field maps have no schema of
// their own.
type PGRepo struct {
	DB *sql.DB
}

func (r *PGRepo) Create(ctx context.Context, sess Session) error {
	const query = `
INSERT INTO planning_sessions (id, user_id, answers, financials, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $5)`

	answers, err := marshalMap(sess.Answers)
	if err != nil {
		return fmt.Errorf("marshal answers: %w", err)
	}
	financials, err := marshalMap(sess.Financials)
	if err != nil {
		return fmt.Errorf("marshal financials: %w", err)
	}

	createdAt := sess.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err = r.DB.ExecContext(ctx, query, sess.ID, sess.UserID, answers, financials, createdAt)
	return err
}

func (r *PGRepo) GetByID(ctx context.Context, userID, sessionID string) (Session, error) {
	const query = `
SELECT id, user_id, answers, financials, recommendation, created_at, updated_at
FROM planning_sessions
WHERE user_id = $1 AND id = $2 AND deleted_at IS NULL
LIMIT 1`

	var (
		sess           Session
		answers        []byte
		financials     []byte
		recommendation []byte
	)
	err := r.DB.QueryRowContext(ctx, query, userID, sessionID).Scan(
		&sess.ID,
		&sess.UserID,
		&answers,
		&financials,
		&recommendation,
		&sess.CreatedAt,
		&sess.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Session{}, ErrNotFound
		}
		return Session{}, err
	}
	if err := unmarshalSession(&sess, answers, financials, recommendation); err != nil {
		return Session{}, err
	}
	return sess, nil
}

func (r *PGRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Session, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	const query = `
SELECT id, user_id, answers, financials, recommendation, created_at, updated_at
FROM planning_sessions
WHERE user_id = $1 AND deleted_at IS NULL
ORDER BY created_at DESC
LIMIT $2 OFFSET $3`

	rows, err := r.DB.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Session
	for rows.Next() {
		var (
			sess           Session
			answers        []byte
			financials     []byte
			recommendation []byte
		)
		if err := rows.Scan(
			&sess.ID,
			&sess.UserID,
			&answers,
			&financials,
			&recommendation,
			&sess.CreatedAt,
			&sess.UpdatedAt,
		); err != nil {
			return nil, err
		}
		if err := unmarshalSession(&sess, answers, financials, recommendation); err != nil {
			return nil, err
		}
		out = append(out, sess)
	}
	return out, rows.Err()
}

func (r *PGRepo) SetAnswers(ctx context.Context, userID, sessionID string, answers map[string]any) error {
	payload, err := marshalMap(answers)
	if err != nil {
		return fmt.Errorf("marshal answers: %w", err)
	}
	return r.setColumn(ctx, userID, sessionID, "answers", payload)
}

func (r *PGRepo) SetFinancials(ctx context.Context, userID, sessionID string, financials map[string]any) error {
	payload, err := marshalMap(financials)
	if err != nil {
		return fmt.Errorf("marshal financials: %w", err)
	}
	return r.setColumn(ctx, userID, sessionID, "financials", payload)
}

func (r *PGRepo) SetRecommendation(ctx context.Context, userID, sessionID string, rec recommend.Result) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal recommendation: %w", err)
	}
	return r.setColumn(ctx, userID, sessionID, "recommendation", payload)
}

func (r *PGRepo) SoftDelete(ctx context.Context, userID, sessionID string) error {
	const query = `
UPDATE planning_sessions
SET deleted_at = $1
WHERE user_id = $2 AND id = $3 AND deleted_at IS NULL`
	res, err := r.DB.ExecContext(ctx, query, time.Now().UTC(), userID, sessionID)
	if err != nil {
		return err
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGRepo) DeleteByUser(ctx context.Context, userID string) (int, error) {
	const query = `
UPDATE planning_sessions
SET deleted_at = $1
WHERE user_id = $2 AND deleted_at IS NULL`
	res, err := r.DB.ExecContext(ctx, query, time.Now().UTC(), userID)
	if err != nil {
		return 0, err
	}
	affected, _ := res.RowsAffected()
	return int(affected), nil
}

func (r *PGRepo) ClaimGuest(ctx context.Context, guestUserID, authedUserID string) (int, error) {
	const query = `
UPDATE planning_sessions
SET user_id = $1
WHERE user_id = $2 AND deleted_at IS NULL`
	res, err := r.DB.ExecContext(ctx, query, authedUserID, guestUserID)
	if err != nil {
		return 0, err
	}
	updated, _ := res.RowsAffected()
	return int(updated), nil
}

func (r *PGRepo) setColumn(ctx context.Context, userID, sessionID, column string, payload []byte) error {
	// column is one of a fixed set of names chosen by this file, never input.
	query := fmt.Sprintf(`
UPDATE planning_sessions
SET %s = $1, updated_at = $2
WHERE user_id = $3 AND id = $4 AND deleted_at IS NULL`, column)
	res, err := r.DB.ExecContext(ctx, query, payload, time.Now().UTC(), userID, sessionID)
	if err != nil {
		return err
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrNotFound
	}
	return nil
}

func marshalMap(m map[string]any) ([]byte, error) {
	if m == nil {
		m = map[string]any{}
	}
	return json.Marshal(m)
}

func unmarshalSession(sess *Session, answers, financials, recommendation []byte) error {
	if len(answers) > 0 {
		if err := json.Unmarshal(answers, &sess.Answers); err != nil {
			return fmt.Errorf("unmarshal answers: %w", err)
		}
	}
	if len(financials) > 0 {
		if err := json.Unmarshal(financials, &sess.Financials); err != nil {
			return fmt.Errorf("unmarshal financials: %w", err)
		}
	}
	if len(recommendation) > 0 {
		var rec recommend.Result
		if err := json.Unmarshal(recommendation, &rec); err != nil {
			return fmt.Errorf("unmarshal recommendation: %w", err)
		}
		sess.Recommendation = &rec
	}
	return nil
}

var _ Repo = (*PGRepo)(nil)
