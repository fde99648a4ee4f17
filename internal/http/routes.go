package http

import (
	"os"
	"path/filepath"

	"hubcoin/internal/config"
	"hubcoin/internal/http/handlers"
	"hubcoin/internal/http/middleware"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	redis "github.com/redis/go-redis/v9"
)

// Deps is everything the HTTP layer needs from the rest of the app
type Deps struct {
	Handler *handlers.Handler
	Health  *handlers.HealthHandler
	Redis   *redis.Client
}

func RegisterRoutes(r *gin.Engine, deps Deps, cfg *config.Config) {
	r.Use(middleware.RequestID())
	r.Use(middleware.Metrics())
	r.Use(middleware.CORS(cfg.FrontendURL))

	// Health checks (no rate limiting)
	r.GET("/health", deps.Health.Health)
	r.GET("/healthz", deps.Health.Liveness)
	r.GET("/readyz", deps.Health.Readiness)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	limiter := middleware.RateLimit(deps.Redis, cfg.APIRateLimit, cfg.APIRateWindow)

	v1 := r.Group("/api/v1")
	v1.Use(limiter)
	registerAPIRoutes(v1, deps.Handler)

	// Legacy /api routes used by the deployed mini-app
	api := r.Group("/api")
	api.Use(limiter)
	api.GET("/health", deps.Health.Health)
	registerAPIRoutes(api, deps.Handler)

	if cfg.StaticDir != "" {
		registerFrontend(r, cfg.StaticDir)
	}
}

func registerAPIRoutes(api *gin.RouterGroup, h *handlers.Handler) {
	api.POST("/user", h.CreateOrFetchUser)
	api.POST("/claim-gems", h.ClaimGems)
	api.POST("/withdrawal", h.RequestWithdrawal)
	api.GET("/leaderboard", h.GetLeaderboard)
}

// registerFrontend serves the mini-app: existing files as-is, everything else falls back to index.html
func registerFrontend(r *gin.Engine, dir string) {
	index := filepath.Join(dir, "index.html")
	r.NoRoute(func(c *gin.Context) {
		if c.Request.Method != "GET" {
			c.JSON(404, gin.H{"error": "not found"})
			return
		}
		p := filepath.Join(dir, filepath.Clean("/"+c.Request.URL.Path))
		if fi, err := os.Stat(p); err == nil && !fi.IsDir() {
			c.File(p)
			return
		}
		c.File(index)
	})
}
