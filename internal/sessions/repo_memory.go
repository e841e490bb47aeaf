package sessions

import (
	"context"
	"sort"
	"sync"
	"time"

	"careplan-backend/internal/recommend"
)

// MemoryRepo is the dev fallback used when no database is configured.
type MemoryRepo struct {
	mu       sync.RWMutex
	sessions map[string]Session
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{sessions: make(map[string]Session)}
}

func (r *MemoryRepo) Create(ctx context.Context, sess Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	sess.CreatedAt = now
	sess.UpdatedAt = now
	r.sessions[sess.ID] = sess
	return nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, userID, sessionID string) (Session, error) {
	if err := ctx.Err(); err != nil {
		return Session{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	sess, ok := r.sessions[sessionID]
	if !ok || sess.UserID != userID {
		return Session{}, ErrNotFound
	}
	return cloneSession(sess), nil
}

func (r *MemoryRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Session
	for _, sess := range r.sessions {
		if sess.UserID == userID {
			out = append(out, cloneSession(sess))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *MemoryRepo) SetAnswers(ctx context.Context, userID, sessionID string, answers map[string]any) error {
	return r.update(ctx, userID, sessionID, func(sess *Session) {
		sess.Answers = cloneMap(answers)
	})
}

func (r *MemoryRepo) SetFinancials(ctx context.Context, userID, sessionID string, financials map[string]any) error {
	return r.update(ctx, userID, sessionID, func(sess *Session) {
		sess.Financials = cloneMap(financials)
	})
}

func (r *MemoryRepo) SetRecommendation(ctx context.Context, userID, sessionID string, rec recommend.Result) error {
	return r.update(ctx, userID, sessionID, func(sess *Session) {
		sess.Recommendation = &rec
	})
}

func (r *MemoryRepo) SoftDelete(ctx context.Context, userID, sessionID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	sess, ok := r.sessions[sessionID]
	if !ok || sess.UserID != userID {
		return ErrNotFound
	}
	delete(r.sessions, sessionID)
	return nil
}

func (r *MemoryRepo) DeleteByUser(ctx context.Context, userID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for id, sess := range r.sessions {
		if sess.UserID == userID {
			delete(r.sessions, id)
			removed++
		}
	}
	return removed, nil
}

func (r *MemoryRepo) ClaimGuest(ctx context.Context, guestUserID, authedUserID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	moved := 0
	for id, sess := range r.sessions {
		if sess.UserID == guestUserID {
			sess.UserID = authedUserID
			sess.UpdatedAt = time.Now().UTC()
			r.sessions[id] = sess
			moved++
		}
	}
	return moved, nil
}

func (r *MemoryRepo) update(ctx context.Context, userID, sessionID string, apply func(*Session)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	sess, ok := r.sessions[sessionID]
	if !ok || sess.UserID != userID {
		return ErrNotFound
	}
	apply(&sess)
	sess.UpdatedAt = time.Now().UTC()
	r.sessions[sessionID] = sess
	return nil
}

func cloneSession(sess Session) Session {
	sess.Answers = cloneMap(sess.Answers)
	sess.Financials = cloneMap(sess.Financials)
	if sess.Recommendation != nil {
		rec := *sess.Recommendation
		sess.Recommendation = &rec
	}
	return sess
}

func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

var _ Repo = (*MemoryRepo)(nil)
