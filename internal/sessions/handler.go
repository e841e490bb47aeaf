package sessions

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"careplan-backend/internal/recommend"
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
	rg.POST("/sessions", h.create)
	rg.GET("/sessions", h.list)
	rg.GET("/sessions/:id", h.get)
	rg.PUT("/sessions/:id/answers", h.putAnswers)
	rg.PUT("/sessions/:id/financials", h.putFinancials)
	rg.POST("/sessions/:id/recommendation", h.runRecommendation)
	rg.GET("/sessions/:id/totals", h.getTotals)
	rg.DELETE("/sessions/:id", h.delete)
}

func (h *Handler) create(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	sess, err := h.Svc.Create(c.Request.Context(), userID)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to create session", nil)
		return
	}
	c.Set("sessionId", sess.ID)
	respond.JSON(c, http.StatusCreated, toResponse(sess))
}

func (h *Handler) list(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	items, err := h.Svc.List(c.Request.Context(), userID, limit, offset)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list sessions", nil)
		return
	}
	out := make([]SessionResponse, 0, len(items))
	for _, sess := range items {
		out = append(out, toResponse(sess))
	}
	respond.JSON(c, http.StatusOK, gin.H{"sessions": out})
}

func (h *Handler) get(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	sess, err := h.Svc.Get(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		h.respondError(c, err, "failed to load session")
		return
	}
	respond.JSON(c, http.StatusOK, toResponse(sess))
}

func (h *Handler) putAnswers(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	var body struct {
		Answers map[string]any `json:"answers"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	sess, err := h.Svc.PutAnswers(c.Request.Context(), userID, c.Param("id"), body.Answers)
	if err != nil {
		h.respondError(c, err, "failed to save answers")
		return
	}
	respond.JSON(c, http.StatusOK, toResponse(sess))
}

func (h *Handler) putFinancials(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	var body struct {
		Fields map[string]any `json:"fields"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	if len(body.Fields) == 0 {
		respond.Error(c, http.StatusBadRequest, "validation_error", "fields is required", nil)
		return
	}

	sess, err := h.Svc.MergeFinancials(c.Request.Context(), userID, c.Param("id"), body.Fields)
	if err != nil {
		h.respondError(c, err, "failed to save financials")
		return
	}
	respond.JSON(c, http.StatusOK, toResponse(sess))
}

func (h *Handler) runRecommendation(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	started := metrics.NowMillis()
	result, err := h.Svc.RunRecommendation(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, ErrNoAnswers):
			respond.Error(c, http.StatusBadRequest, "validation_error", "submit answers before requesting a recommendation", nil)
		case errors.Is(err, usage.ErrLimitReached):
			respond.Error(c, http.StatusTooManyRequests, "limit_reached", "You've reached your planning limit for this period.", []map[string]string{
				{"field": "usage", "issue": "limit_reached"},
			})
		case errors.Is(err, recommend.ErrMissingTemplate):
			respond.Error(c, http.StatusInternalServerError, "config_error", "recommendation configuration is incomplete", nil)
		default:
			h.respondError(c, err, "failed to compute recommendation")
		}
		return
	}
	metrics.IncRecommendationRuns()
	metrics.ObserveComputeDurationMs(metrics.NowMillis() - started)

	respond.JSON(c, http.StatusOK, result)
}

func (h *Handler) getTotals(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	result, err := h.Svc.ComputeTotals(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		h.respondError(c, err, "failed to compute totals")
		return
	}
	metrics.IncTotalsComputed()
	respond.JSON(c, http.StatusOK, result)
}

func (h *Handler) delete(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	if err := h.Svc.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		h.respondError(c, err, "failed to delete session")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) respondError(c *gin.Context, err error, msg string) {
	if errors.Is(err, ErrNotFound) {
		respond.Error(c, http.StatusNotFound, "not_found", "session not found", nil)
		return
	}
	respond.Error(c, http.StatusInternalServerError, "internal_error", msg, nil)
}
