package export

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"careplan-backend/internal/sessions"
	"careplan-backend/internal/shared/metrics"
	"careplan-backend/internal/shared/server/middleware"
	"careplan-backend/internal/shared/server/respond"
	"careplan-backend/internal/usage"
)

type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/sessions/:id/export", h.create)
	rg.GET("/exports/:id/download", h.download)
}

type exportResponse struct {
	ExportID  string    `json:"exportId"`
	SessionID string    `json:"sessionId"`
	Format    string    `json:"format"`
	FileName  string    `json:"fileName"`
	SizeBytes int64     `json:"sizeBytes"`
	CreatedAt time.Time `json:"createdAt"`
}

func (h *Handler) create(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	format := c.DefaultQuery("format", FormatCSV)

	exp, err := h.Svc.CreateExport(c.Request.Context(), userID, c.Param("id"), format)
	if err != nil {
		switch {
		case errors.Is(err, ErrUnsupportedFormat):
			respond.Error(c, http.StatusBadRequest, "validation_error", "format must be csv or pdf", nil)
		case errors.Is(err, sessions.ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "session not found", nil)
		case errors.Is(err, usage.ErrLimitReached):
			respond.Error(c, http.StatusTooManyRequests, "limit_reached", "You've reached your planning limit for this period.", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to create export", nil)
		}
		return
	}
	metrics.IncExportsCreated()
	c.Set("exportId", exp.ID)

	respond.JSON(c, http.StatusCreated, exportResponse{
		ExportID:  exp.ID,
		SessionID: exp.SessionID,
		Format:    exp.Format,
		FileName:  exp.FileName,
		SizeBytes: exp.SizeBytes,
		CreatedAt: exp.CreatedAt,
	})
}

func (h *Handler) download(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	exp, rc, err := h.Svc.Open(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "export not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to open export", nil)
		return
	}
	defer rc.Close()
	c.Set("exportId", exp.ID)

	c.Header("Content-Disposition", `attachment; filename="`+exp.FileName+`"`)
	c.Header("Content-Type", exp.ContentType)
	c.Status(http.StatusOK)
	_, _ = io.Copy(c.Writer, rc)
}
