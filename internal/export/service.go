package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"careplan-backend/internal/sessions"
	"careplan-backend/internal/shared/storage/object"
	"careplan-backend/internal/usage"
)

// ErrUnsupportedFormat means the requested format is not csv or pdf.
var ErrUnsupportedFormat = errors.New("unsupported export format")

// Service renders session reports and persists them to the object store.
type Service struct {
	Repo     Repo
	Sessions *sessions.Service
	Store    object.ObjectStore
	Usage    *usage.Service
}

// CreateExport renders the session's totals (recomputed from the current
// snapshot) into the requested format and stores the report.
func (s *Service) CreateExport(ctx context.Context, userID, sessionID, format string) (Export, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format != FormatCSV && format != FormatPDF {
		return Export{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	sess, err := s.Sessions.Get(ctx, userID, sessionID)
	if err != nil {
		return Export{}, err
	}
	tot, err := s.Sessions.ComputeTotals(ctx, userID, sessionID)
	if err != nil {
		return Export{}, err
	}

	if s.Usage != nil {
		if _, err := s.Usage.Consume(ctx, userID, 1); err != nil {
			return Export{}, err
		}
	}

	var (
		body        []byte
		contentType string
	)
	switch format {
	case FormatCSV:
		var buf bytes.Buffer
		if err := WriteCSV(&buf, sess, tot); err != nil {
			return Export{}, err
		}
		body = buf.Bytes()
		contentType = "text/csv"
	case FormatPDF:
		body, err = BuildPDF(sess, tot)
		if err != nil {
			return Export{}, err
		}
		contentType = "application/pdf"
	}

	exp := Export{
		ID:          uuid.NewString(),
		SessionID:   sess.ID,
		UserID:      userID,
		Format:      format,
		FileName:    fmt.Sprintf("care-plan-%s.%s", shortID(sess.ID), format),
		ContentType: contentType,
		CreatedAt:   time.Now().UTC(),
	}

	storageKey, size, _, err := s.Store.Save(ctx, userID, exp.FileName, bytes.NewReader(body))
	if err != nil {
		return Export{}, fmt.Errorf("store export: %w", err)
	}
	exp.StorageKey = storageKey
	exp.SizeBytes = size

	if err := s.Repo.Create(ctx, exp); err != nil {
		return Export{}, err
	}
	return exp, nil
}

// Open returns the stored report body for download.
func (s *Service) Open(ctx context.Context, userID, exportID string) (Export, io.ReadCloser, error) {
	exp, err := s.Repo.GetByID(ctx, userID, exportID)
	if err != nil {
		return Export{}, nil, err
	}
	rc, err := s.Store.Open(ctx, exp.StorageKey)
	if err != nil {
		return Export{}, nil, fmt.Errorf("open export: %w", err)
	}
	return exp, rc, nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
