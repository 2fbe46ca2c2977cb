package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/trainlog/trainlog/internal/analysis"
	"github.com/trainlog/trainlog/internal/api/models"
	"github.com/trainlog/trainlog/internal/database"
)

const (
	defaultSummaryLimit = 12
	maxSummaryLimit     = 100
)

// Analyze generates a coach summary of the caller's last 30 days.
func (h *Handler) Analyze(c *gin.Context) {
	result, err := h.analysis.Analyze(c.Request.Context(), currentUser(c).ID, database.SummarySourceOnDemand)
	if err != nil {
		switch {
		case errors.Is(err, analysis.ErrNotConfigured):
			abortWithError(c, http.StatusServiceUnavailable, analysis.ErrNotConfigured.Error())
		default:
			internalError(c, "Failed to generate analysis", err)
		}
		return
	}
	c.JSON(http.StatusOK, result)
}

// ListSummaries returns the caller's stored summaries, newest first.
func (h *Handler) ListSummaries(c *gin.Context) {
	limit, ok := intQuery(c, "limit", defaultSummaryLimit, maxSummaryLimit)
	if !ok {
		abortWithError(c, http.StatusBadRequest, "limit must be between 1 and 100")
		return
	}

	summaries, err := h.analysis.ListSummaries(c.Request.Context(), currentUser(c).ID, limit)
	if err != nil {
		internalError(c, "Failed to fetch summaries", err)
		return
	}
	c.JSON(http.StatusOK, models.ToSummaries(summaries))
}
