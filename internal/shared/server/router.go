package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"careplan-backend/internal/account"
	googleauth "careplan-backend/internal/auth"
	"careplan-backend/internal/export"
	"careplan-backend/internal/sessions"
	"careplan-backend/internal/shared/config"
	"careplan-backend/internal/shared/metrics"
	"careplan-backend/internal/shared/server/middleware"
	"careplan-backend/internal/shared/server/respond"
	"careplan-backend/internal/usage"
	"careplan-backend/internal/users"
)

const computeRateGroup = "COMPUTE"

// RouterDeps are the handlers the router wires up. Bootstrap builds them.
type RouterDeps struct {
	Config         config.Config
	SessionHandler *sessions.Handler
	ExportHandler  *export.Handler
	UsageHandler   *usage.Handler
	UserHandler    *users.Handler
	AccountHandler *account.Handler
	GoogleAuth     *googleauth.GoogleService
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	cfg := deps.Config
	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(cfg.CORSAllowOrigin),
		middleware.Auth(cfg.Env),
	)

	api := r.Group("/api/v1")
	api.Use(middleware.RateLimit(middleware.RateLimitConfig{
		Rules: map[string]middleware.RateLimitRule{
			computeRateGroup: {Rate: 5, Burst: 30},
		},
		GroupFor: computeGroupFor,
	}))

	api.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, gin.H{"ok": true})
	})
	api.GET("/metrics", metrics.Handler())

	if deps.GoogleAuth != nil {
		deps.GoogleAuth.RegisterRoutes(api)
	}
	registerMeRoutes(api)
	if deps.SessionHandler != nil {
		deps.SessionHandler.RegisterRoutes(api)
	}
	if deps.ExportHandler != nil {
		deps.ExportHandler.RegisterRoutes(api)
	}
	if deps.UsageHandler != nil {
		deps.UsageHandler.RegisterRoutes(api)
	}
	if deps.UserHandler != nil {
		deps.UserHandler.RegisterRoutes(api)
	}
	if deps.AccountHandler != nil {
		deps.AccountHandler.RegisterRoutes(api)
	}
	if cfg.Env == "dev" && deps.UsageHandler != nil {
		dev := api.Group("/dev")
		deps.UsageHandler.RegisterDevRoutes(dev)
	}

	return r
}

// computeGroupFor throttles the recommendation, totals, and export
// endpoints; everything else passes through unlimited.
func computeGroupFor(c *gin.Context) string {
	path := c.FullPath()
	switch {
	case c.Request.Method == http.MethodPost && strings.HasSuffix(path, "/recommendation"),
		c.Request.Method == http.MethodGet && strings.HasSuffix(path, "/totals"),
		c.Request.Method == http.MethodPost && strings.HasSuffix(path, "/export"):
		return computeRateGroup
	}
	return ""
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
