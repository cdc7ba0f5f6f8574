package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"reviewhub/internal/config"
	"reviewhub/internal/metrics"
	"reviewhub/internal/middleware"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Auth     *AuthHandler
	User     *UserHandler
	Category *CategoryHandler
	Genre    *GenreHandler
	Title    *TitleHandler
	Review   *ReviewHandler
	Comment  *CommentHandler
}

// NewRouter assembles the gin engine: recovery, request logging and
// metrics on every route, then the versioned API surface.
func NewRouter(cfg *config.Config, logger *zap.Logger, h Handlers) *gin.Engine {
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	metrics.Init()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.Metrics())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	v1 := r.Group("/api/v1")
	{
		h.Auth.RegisterRoutes(v1, cfg.SignupRPS)
		h.User.RegisterRoutes(v1, cfg.JWTSecret)
		h.Category.RegisterRoutes(v1, cfg.JWTSecret)
		h.Genre.RegisterRoutes(v1, cfg.JWTSecret)
		h.Title.RegisterRoutes(v1, cfg.JWTSecret)
		h.Review.RegisterRoutes(v1, cfg.JWTSecret)
		h.Comment.RegisterRoutes(v1, cfg.JWTSecret)
	}

	return r
}
