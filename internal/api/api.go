package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/trainlog/trainlog/internal/analysis"
	"github.com/trainlog/trainlog/internal/api/handler"
	"github.com/trainlog/trainlog/internal/auth"
	"github.com/trainlog/trainlog/internal/config"
	"github.com/trainlog/trainlog/internal/database"
	"github.com/trainlog/trainlog/internal/gravatar"
)

type Server struct {
	cfg        *config.Config
	ginEngine  *gin.Engine
	httpServer *http.Server
	auth       *auth.Service
	handler    *handler.Handler
}

// New creates the HTTP server and registers all routes.
func New(cfg *config.Config, db database.DB, authService *auth.Service, analysisService *analysis.Service, debug bool, opts ...handler.Option) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	avatars, err := gravatar.New(cfg.Gravatar)
	if err != nil {
		return nil, fmt.Errorf("failed to configure gravatar: %w", err)
	}

	if !debug && gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}

	ginEngine := gin.New()
	ginEngine.Use(gin.Recovery())
	if debug {
		ginEngine.Use(gin.Logger())
	}
	ginEngine.Use(gzip.Gzip(gzip.DefaultCompression))
	ginEngine.Use(cors.New(corsConfig(cfg.CORSOrigins)))

	s := &Server{
		cfg:       cfg,
		ginEngine: ginEngine,
		auth:      authService,
		handler:   handler.New(authService, db, analysisService, avatars, opts...),
	}
	s.httpServer = &http.Server{
		Addr:              cfg.Listen,
		Handler:           ginEngine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.setupRoutes()

	return s, nil
}

func corsConfig(origins []string) cors.Config {
	c := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{"Authorization", "Content-Type"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = origins
	}
	return c
}

func (s *Server) setupRoutes() {
	h := s.handler

	api := s.ginEngine.Group("/api")
	api.GET("/health", h.Health)

	authGroup := api.Group("/auth")
	authGroup.POST("/register", h.Register)
	authGroup.POST("/login", h.Login)

	protected := api.Group("")
	protected.Use(RequireAuth(s.auth))

	protected.GET("/auth/me", h.Me)
	protected.PUT("/auth/me", h.UpdateMe)

	admin := protected.Group("/auth/users")
	admin.Use(RequireAdmin())
	admin.GET("", h.ListUsers)
	admin.POST("", h.CreateUser)
	admin.PUT("/:id", h.UpdateUser)
	admin.DELETE("/:id", h.DeleteUser)

	trainings := protected.Group("/trainings")
	trainings.GET("", h.ListTrainings)
	trainings.POST("", h.CreateTraining)
	trainings.GET("/:id", h.GetTraining)
	trainings.PUT("/:id", h.UpdateTraining)
	trainings.DELETE("/:id", h.DeleteTraining)

	goals := protected.Group("/goals")
	goals.GET("", h.ListGoals)
	goals.POST("", h.CreateGoal)
	goals.PUT("/:id", h.UpdateGoal)
	goals.DELETE("/:id", h.DeleteGoal)

	statsGroup := protected.Group("/stats")
	statsGroup.GET("/volume", h.Volume)
	statsGroup.GET("/weekly", h.Weekly)

	ai := protected.Group("/ai")
	ai.POST("/analyze", h.Analyze)
	ai.GET("/summaries", h.ListSummaries)
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.ginEngine
}

// Run listens on the configured address until Shutdown is called.
func (s *Server) Run() error {
	log.Info("API server listening", "listen", s.cfg.Listen)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
