package sessions

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"careplan-backend/internal/recommend"
)

func newMockRepo(t *testing.T) (*PGRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return &PGRepo{DB: db}, mock
}

func TestPGRepoCreateMarshalsMaps(t *testing.T) {
	repo, mock := newMockRepo(t)

	sess := Session{
		ID:         "sess-1",
		UserID:     "guest:abc",
		Answers:    map[string]any{"mobility_aids": "walker"},
		Financials: map[string]any{"inc_A": 2500},
		CreatedAt:  time.Now().UTC(),
	}

	mock.ExpectExec("INSERT INTO planning_sessions").
		WithArgs(sess.ID, sess.UserID, sqlmock.AnyArg(), sqlmock.AnyArg(), sess.CreatedAt).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.Create(context.Background(), sess); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoGetByIDUnmarshalsRecommendation(t *testing.T) {
	repo, mock := newMockRepo(t)

	rec := recommend.Result{Outcome: "assisted_living", Scores: map[string]int{"assisted_living": 2}}
	recJSON, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("marshal recommendation: %v", err)
	}

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"id", "user_id", "answers", "financials", "recommendation", "created_at", "updated_at"}).
		AddRow("sess-1", "guest:abc", []byte(`{"mobility_aids":"wheelchair"}`), []byte(`{"inc_A":2500}`), recJSON, now, now)

	mock.ExpectQuery("SELECT id, user_id, answers, financials, recommendation, created_at, updated_at").
		WithArgs("guest:abc", "sess-1").
		WillReturnRows(rows)

	sess, err := repo.GetByID(context.Background(), "guest:abc", "sess-1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if sess.Answers["mobility_aids"] != "wheelchair" {
		t.Fatalf("unexpected answers: %v", sess.Answers)
	}
	if sess.Recommendation == nil || sess.Recommendation.Outcome != "assisted_living" {
		t.Fatalf("unexpected recommendation: %+v", sess.Recommendation)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoGetByIDNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("SELECT id, user_id, answers, financials, recommendation, created_at, updated_at").
		WithArgs("guest:abc", "missing").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "answers", "financials", "recommendation", "created_at", "updated_at"}))

	_, err := repo.GetByID(context.Background(), "guest:abc", "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPGRepoSetAnswersScopedToOwner(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec("UPDATE planning_sessions").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), "guest:abc", "sess-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.SetAnswers(context.Background(), "guest:abc", "sess-1", map[string]any{"q": "a"}); err != nil {
		t.Fatalf("SetAnswers: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoSetAnswersReportsMissingSession(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec("UPDATE planning_sessions").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), "guest:abc", "gone").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.SetAnswers(context.Background(), "guest:abc", "gone", map[string]any{"q": "a"})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPGRepoSoftDelete(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec("UPDATE planning_sessions").
		WithArgs(sqlmock.AnyArg(), "guest:abc", "sess-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.SoftDelete(context.Background(), "guest:abc", "sess-1"); err != nil {
		t.Fatalf("SoftDelete: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoClaimGuestCountsRows(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec("UPDATE planning_sessions").
		WithArgs("google:user-1", "guest:abc").
		WillReturnResult(sqlmock.NewResult(0, 3))

	count, err := repo.ClaimGuest(context.Background(), "guest:abc", "google:user-1")
	if err != nil {
		t.Fatalf("ClaimGuest: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected 3 claimed sessions, got %d", count)
	}
}
