package sessions

import (
	"time"

	"careplan-backend/internal/recommend"
)

// Session is one planning run: the questionnaire answers, the financial
// panel values collected so far, and the last recommendation produced for it.
type Session struct {
	ID             string
	UserID         string
	Answers        map[string]any
	Financials     map[string]any
	Recommendation *recommend.Result
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
