package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/trainlog/trainlog/internal/database"
	"github.com/trainlog/trainlog/internal/stats"
)

// Volume returns one volume/feeling point per day for the last days days.
func (h *Handler) Volume(c *gin.Context) {
	days, ok := intQuery(c, "days", stats.DefaultVolumeDays, stats.MaxVolumeDays)
	if !ok {
		abortWithError(c, http.StatusBadRequest, "days must be between 1 and 366")
		return
	}

	now := h.now().UTC()
	from := stats.Window(now, days, time.UTC)
	trainings, err := h.db.ListTrainings(c.Request.Context(), currentUser(c).ID, database.TrainingFilter{From: &from, Ascending: true})
	if err != nil {
		internalError(c, "Failed to fetch trainings", err)
		return
	}

	c.JSON(http.StatusOK, stats.Volume(trainings, days, now, time.UTC))
}

// Weekly returns the totals of the current Monday-based week.
func (h *Handler) Weekly(c *gin.Context) {
	now := h.now().UTC()
	from := stats.WeekStart(now, time.UTC)
	trainings, err := h.db.ListTrainings(c.Request.Context(), currentUser(c).ID, database.TrainingFilter{From: &from})
	if err != nil {
		internalError(c, "Failed to fetch trainings", err)
		return
	}

	c.JSON(http.StatusOK, stats.Week(trainings, now, time.UTC))
}
