package export

import (
	"context"
	"sync"
	"time"
)

type MemoryRepo struct {
	mu      sync.RWMutex
	exports map[string]Export
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{exports: make(map[string]Export)}
}

func (r *MemoryRepo) Create(ctx context.Context, exp Export) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if exp.CreatedAt.IsZero() {
		exp.CreatedAt = time.Now().UTC()
	}
	r.exports[exp.ID] = exp
	return nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, userID, exportID string) (Export, error) {
	if err := ctx.Err(); err != nil {
		return Export{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	exp, ok := r.exports[exportID]
	if !ok || exp.UserID != userID {
		return Export{}, ErrNotFound
	}
	return exp, nil
}

func (r *MemoryRepo) DeleteByUser(ctx context.Context, userID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for id, exp := range r.exports {
		if exp.UserID == userID {
			delete(r.exports, id)
			removed++
		}
	}
	return removed, nil
}

var _ Repo = (*MemoryRepo)(nil)
