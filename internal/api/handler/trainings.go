package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/trainlog/trainlog/internal/api/models"
	"github.com/trainlog/trainlog/internal/database"
)

const msgTrainingNotFound = "Training not found"

// ListTrainings returns the caller's sessions, newest first. The optional
// from and to query parameters are inclusive dates.
func (h *Handler) ListTrainings(c *gin.Context) {
	var filter database.TrainingFilter
	if from := c.Query("from"); from != "" {
		d, err := models.ParseDate(from)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "Invalid from parameter")
			return
		}
		filter.From = &d
	}
	if to := c.Query("to"); to != "" {
		d, err := models.ParseDate(to)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "Invalid to parameter")
			return
		}
		// a bare date covers the whole day
		if len(strings.TrimSpace(to)) == len(time.DateOnly) {
			d = d.Add(24*time.Hour - time.Nanosecond)
		}
		filter.To = &d
	}

	trainings, err := h.db.ListTrainings(c.Request.Context(), currentUser(c).ID, filter)
	if err != nil {
		internalError(c, "Failed to fetch trainings", err)
		return
	}
	c.JSON(http.StatusOK, models.ToTrainings(trainings))
}

func (h *Handler) GetTraining(c *gin.Context) {
	training, err := h.db.GetTraining(c.Request.Context(), currentUser(c).ID, c.Param("id"))
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			abortWithError(c, http.StatusNotFound, msgTrainingNotFound)
			return
		}
		internalError(c, "Failed to fetch training", err)
		return
	}
	c.JSON(http.StatusOK, models.ToTraining(training))
}

func (h *Handler) CreateTraining(c *gin.Context) {
	var req models.TrainingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	training, err := req.NewTraining(currentUser(c).ID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.db.CreateTraining(c.Request.Context(), training); err != nil {
		internalError(c, "Failed to create training", err)
		return
	}
	c.JSON(http.StatusCreated, models.ToTraining(training))
}

// UpdateTraining changes only the fields present in the body.
func (h *Handler) UpdateTraining(c *gin.Context) {
	var req models.TrainingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	ctx := c.Request.Context()
	training, err := h.db.GetTraining(ctx, currentUser(c).ID, c.Param("id"))
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			abortWithError(c, http.StatusNotFound, msgTrainingNotFound)
			return
		}
		internalError(c, "Failed to update training", err)
		return
	}

	if err := req.Apply(training); err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.db.UpdateTraining(ctx, training); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			abortWithError(c, http.StatusNotFound, msgTrainingNotFound)
			return
		}
		internalError(c, "Failed to update training", err)
		return
	}
	c.JSON(http.StatusOK, models.ToTraining(training))
}

func (h *Handler) DeleteTraining(c *gin.Context) {
	if err := h.db.DeleteTraining(c.Request.Context(), currentUser(c).ID, c.Param("id")); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			abortWithError(c, http.StatusNotFound, msgTrainingNotFound)
			return
		}
		internalError(c, "Failed to delete training", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Training deleted"})
}
