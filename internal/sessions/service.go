package sessions

import (
	"context"
	"errors"
	"math/rand"
	"strings"

	"github.com/google/uuid"

	"careplan-backend/internal/recommend"
	"careplan-backend/internal/totals"
	"careplan-backend/internal/usage"
)

var (
	// ErrNoAnswers means a recommendation was requested before any
	// questionnaire answers were submitted.
	ErrNoAnswers = errors.New("session has no answers")
)

// Service owns planning-session workflows and runs the two engines over a
// session's stored inputs.
type Service struct {
	Repo      Repo
	Questions recommend.QuestionDefs
	Rules     recommend.RuleTable
	Rand      recommend.Rand
	Usage     *usage.Service
}

func NewService(repo Repo, questions recommend.QuestionDefs, rules recommend.RuleTable) *Service {
	return &Service{Repo: repo, Questions: questions, Rules: rules}
}

func (s *Service) Create(ctx context.Context, userID string) (Session, error) {
	if s == nil || s.Repo == nil {
		return Session{}, errors.New("sessions service not configured")
	}
	if strings.TrimSpace(userID) == "" {
		return Session{}, errors.New("user id is required")
	}
	sess := Session{
		ID:         uuid.NewString(),
		UserID:     userID,
		Answers:    map[string]any{},
		Financials: map[string]any{},
	}
	if err := s.Repo.Create(ctx, sess); err != nil {
		return Session{}, err
	}
	return s.Repo.GetByID(ctx, userID, sess.ID)
}

func (s *Service) Get(ctx context.Context, userID, sessionID string) (Session, error) {
	if err := requireIDs(userID, sessionID); err != nil {
		return Session{}, err
	}
	return s.Repo.GetByID(ctx, userID, sessionID)
}

func (s *Service) List(ctx context.Context, userID string, limit, offset int) ([]Session, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, errors.New("user id is required")
	}
	return s.Repo.ListByUser(ctx, userID, limit, offset)
}

// PutAnswers replaces the session's answer set. Answers are free-form and not
// validated against the question definitions; unknown questions simply never
// trigger flags.
func (s *Service) PutAnswers(ctx context.Context, userID, sessionID string, answers map[string]any) (Session, error) {
	if err := requireIDs(userID, sessionID); err != nil {
		return Session{}, err
	}
	if answers == nil {
		answers = map[string]any{}
	}
	if err := s.Repo.SetAnswers(ctx, userID, sessionID, answers); err != nil {
		return Session{}, err
	}
	return s.Repo.GetByID(ctx, userID, sessionID)
}

// MergeFinancials folds one panel's field values into the stored snapshot.
// Panels are edited independently, so writes merge key-by-key instead of
// replacing the whole map.
func (s *Service) MergeFinancials(ctx context.Context, userID, sessionID string, fields map[string]any) (Session, error) {
	if err := requireIDs(userID, sessionID); err != nil {
		return Session{}, err
	}
	sess, err := s.Repo.GetByID(ctx, userID, sessionID)
	if err != nil {
		return Session{}, err
	}
	merged := make(map[string]any, len(sess.Financials)+len(fields))
	for k, v := range sess.Financials {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	if err := s.Repo.SetFinancials(ctx, userID, sessionID, merged); err != nil {
		return Session{}, err
	}
	return s.Repo.GetByID(ctx, userID, sessionID)
}

// RunRecommendation executes the recommendation engine over the session's
// answers, stores the result on the session, and returns it. Each run
// consumes one usage unit.
func (s *Service) RunRecommendation(ctx context.Context, userID, sessionID string) (recommend.Result, error) {
	if err := requireIDs(userID, sessionID); err != nil {
		return recommend.Result{}, err
	}
	sess, err := s.Repo.GetByID(ctx, userID, sessionID)
	if err != nil {
		return recommend.Result{}, err
	}
	if len(sess.Answers) == 0 {
		return recommend.Result{}, ErrNoAnswers
	}

	if s.Usage != nil {
		if _, err := s.Usage.Consume(ctx, userID, 1); err != nil {
			return recommend.Result{}, err
		}
	}

	result, err := recommend.Recommend(recommend.AnswerSet(sess.Answers), s.Questions, s.Rules, s.rng())
	if err != nil {
		return recommend.Result{}, err
	}
	if err := s.Repo.SetRecommendation(ctx, userID, sessionID, result); err != nil {
		return recommend.Result{}, err
	}
	return result, nil
}

// ComputeTotals evaluates the totals engine over the session's financial
// snapshot. The result is recomputed on every call and never stored.
func (s *Service) ComputeTotals(ctx context.Context, userID, sessionID string) (totals.Result, error) {
	if err := requireIDs(userID, sessionID); err != nil {
		return totals.Result{}, err
	}
	sess, err := s.Repo.GetByID(ctx, userID, sessionID)
	if err != nil {
		return totals.Result{}, err
	}
	return totals.Compute(totals.Snapshot(sess.Financials)), nil
}

func (s *Service) Delete(ctx context.Context, userID, sessionID string) error {
	if err := requireIDs(userID, sessionID); err != nil {
		return err
	}
	return s.Repo.SoftDelete(ctx, userID, sessionID)
}

func (s *Service) rng() recommend.Rand {
	if s.Rand != nil {
		return s.Rand
	}
	return globalRand{}
}

// globalRand delegates to the shared math/rand source, which is safe for
// concurrent handlers.
type globalRand struct{}

func (globalRand) Intn(n int) int { return rand.Intn(n) }

func requireIDs(userID, sessionID string) error {
	if strings.TrimSpace(userID) == "" {
		return errors.New("user id is required")
	}
	if strings.TrimSpace(sessionID) == "" {
		return errors.New("session id is required")
	}
	return nil
}
