package sessions

import (
	"time"

	"careplan-backend/internal/recommend"
)

// SessionResponse is the outward-facing representation of a planning session.
type SessionResponse struct {
	SessionID      string            `json:"sessionId"`
	Answers        map[string]any    `json:"answers"`
	Financials     map[string]any    `json:"financials"`
	Recommendation *recommend.Result `json:"recommendation,omitempty"`
	CreatedAt      time.Time         `json:"createdAt"`
	UpdatedAt      time.Time         `json:"updatedAt"`
}

func toResponse(sess Session) SessionResponse {
	answers := sess.Answers
	if answers == nil {
		answers = map[string]any{}
	}
	financials := sess.Financials
	if financials == nil {
		financials = map[string]any{}
	}
	return SessionResponse{
		SessionID:      sess.ID,
		Answers:        answers,
		Financials:     financials,
		Recommendation: sess.Recommendation,
		CreatedAt:      sess.CreatedAt,
		UpdatedAt:      sess.UpdatedAt,
	}
}
