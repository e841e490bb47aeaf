package account

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"careplan-backend/internal/export"
	"careplan-backend/internal/sessions"
)

type Service struct {
	SessionRepo sessions.Repo
	ExportRepo  export.Repo
}

type ClaimResult struct {
	MigratedSessions int `json:"migratedSessions"`
}

type DeleteResult struct {
	DeletedSessions int `json:"deletedSessions"`
	DeletedExports  int `json:"deletedExports"`
}

func NewService(sessionRepo sessions.Repo, exportRepo export.Repo) *Service {
	return &Service{SessionRepo: sessionRepo, ExportRepo: exportRepo}
}

// ClaimGuest reassigns a guest's planning sessions to the authenticated user.
func (s *Service) ClaimGuest(ctx context.Context, guestUserID, authedUserID string) (ClaimResult, error) {
	if strings.TrimSpace(guestUserID) == "" || strings.TrimSpace(authedUserID) == "" {
		return ClaimResult{}, errors.New("guestUserID and authedUserID are required")
	}

	if pg, ok := s.SessionRepo.(*sessions.PGRepo); ok && pg != nil && pg.DB != nil {
		return claimWithTx(ctx, pg.DB, guestUserID, authedUserID)
	}

	count, err := s.SessionRepo.ClaimGuest(ctx, guestUserID, authedUserID)
	if err != nil {
		return ClaimResult{}, err
	}
	return ClaimResult{MigratedSessions: count}, nil
}

// DeleteAll erases every planning session and export belonging to the user.
func (s *Service) DeleteAll(ctx context.Context, userID string) (DeleteResult, error) {
	if strings.TrimSpace(userID) == "" {
		return DeleteResult{}, errors.New("userID is required")
	}

	sessionCount, err := s.SessionRepo.DeleteByUser(ctx, userID)
	if err != nil {
		return DeleteResult{}, err
	}
	exportCount := 0
	if s.ExportRepo != nil {
		exportCount, err = s.ExportRepo.DeleteByUser(ctx, userID)
		if err != nil {
			return DeleteResult{}, err
		}
	}
	return DeleteResult{DeletedSessions: sessionCount, DeletedExports: exportCount}, nil
}

func claimWithTx(ctx context.Context, db *sql.DB, guestUserID, authedUserID string) (ClaimResult, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return ClaimResult{}, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `UPDATE planning_sessions SET user_id = $1 WHERE user_id = $2 AND deleted_at IS NULL`, authedUserID, guestUserID)
	if err != nil {
		return ClaimResult{}, err
	}
	count, _ := res.RowsAffected()

	if _, err := tx.ExecContext(ctx, `UPDATE exports SET user_id = $1 WHERE user_id = $2`, authedUserID, guestUserID); err != nil {
		return ClaimResult{}, err
	}

	if err := tx.Commit(); err != nil {
		return ClaimResult{}, err
	}
	return ClaimResult{MigratedSessions: int(count)}, nil
}
