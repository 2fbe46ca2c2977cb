package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/trainlog/trainlog/internal/api/models"
	"github.com/trainlog/trainlog/internal/database"
)

const msgGoalNotFound = "Goal not found"

func (h *Handler) ListGoals(c *gin.Context) {
	goals, err := h.db.ListGoals(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		internalError(c, "Failed to fetch goals", err)
		return
	}
	c.JSON(http.StatusOK, models.ToGoals(goals))
}

func (h *Handler) CreateGoal(c *gin.Context) {
	var req models.GoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	goal, err := req.NewGoal(currentUser(c).ID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.db.CreateGoal(c.Request.Context(), goal); err != nil {
		internalError(c, "Failed to create goal", err)
		return
	}
	c.JSON(http.StatusCreated, models.ToGoal(goal))
}

func (h *Handler) UpdateGoal(c *gin.Context) {
	var req models.GoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	ctx := c.Request.Context()
	goal, err := h.db.GetGoal(ctx, currentUser(c).ID, c.Param("id"))
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			abortWithError(c, http.StatusNotFound, msgGoalNotFound)
			return
		}
		internalError(c, "Failed to update goal", err)
		return
	}

	if err := req.Apply(goal); err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.db.UpdateGoal(ctx, goal); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			abortWithError(c, http.StatusNotFound, msgGoalNotFound)
			return
		}
		internalError(c, "Failed to update goal", err)
		return
	}
	c.JSON(http.StatusOK, models.ToGoal(goal))
}

func (h *Handler) DeleteGoal(c *gin.Context) {
	if err := h.db.DeleteGoal(c.Request.Context(), currentUser(c).ID, c.Param("id")); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			abortWithError(c, http.StatusNotFound, msgGoalNotFound)
			return
		}
		internalError(c, "Failed to delete goal", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Goal deleted"})
}
