package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/ccoveille/go-safecast"
	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/trainlog/trainlog/internal/analysis"
	"github.com/trainlog/trainlog/internal/auth"
	"github.com/trainlog/trainlog/internal/database"
	"github.com/trainlog/trainlog/internal/gravatar"
)

// ContextKeyUser is the gin context key holding the authenticated *database.User.
const ContextKeyUser = "user"

// ContextKeyUserID is the gin context key holding the authenticated user id.
const ContextKeyUserID = "user_id"

type Handler struct {
	auth     *auth.Service
	db       database.DB
	analysis *analysis.Service
	avatars  *gravatar.Resolver
	now      func() time.Time
}

// Option configures a Handler.
type Option func(*Handler)

// WithClock overrides the time source used for stats windows.
func WithClock(now func() time.Time) Option {
	return func(h *Handler) { h.now = now }
}

func New(authService *auth.Service, db database.DB, analysisService *analysis.Service, avatars *gravatar.Resolver, opts ...Option) *Handler {
	h := &Handler{
		auth:     authService,
		db:       db,
		analysis: analysisService,
		avatars:  avatars,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func currentUser(c *gin.Context) *database.User {
	return c.MustGet(ContextKeyUser).(*database.User)
}

func abortWithError(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

func internalError(c *gin.Context, msg string, err error) {
	log.Error(msg, "path", c.FullPath(), "error", err)
	abortWithError(c, http.StatusInternalServerError, msg)
}

// intQuery reads a positive integer query parameter, falling back to def when absent.
func intQuery(c *gin.Context, key string, def, maxValue int) (int, bool) {
	raw := c.Query(key)
	if raw == "" {
		return def, true
	}
	u, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || u == 0 {
		return 0, false
	}
	v, err := safecast.Convert[int](u)
	if err != nil || v > maxValue {
		return 0, false
	}
	return v, true
}
