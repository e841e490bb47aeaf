package sessions

import (
	"context"

	"careplan-backend/internal/recommend"
)

var ErrNotFound = errNotFound{}

type errNotFound struct{}

func (errNotFound) Error() string { return "session not found" }

type Repo interface {
	Create(ctx context.Context, sess Session) error
	GetByID(ctx context.Context, userID, sessionID string) (Session, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]Session, error)
	SetAnswers(ctx context.Context, userID, sessionID string, answers map[string]any) error
	SetFinancials(ctx context.Context, userID, sessionID string, financials map[string]any) error
	SetRecommendation(ctx context.Context, userID, sessionID string, rec recommend.Result) error
	SoftDelete(ctx context.Context, userID, sessionID string) error
	DeleteByUser(ctx context.Context, userID string) (int, error)
	ClaimGuest(ctx context.Context, guestUserID, authedUserID string) (int, error)
}
