package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/trainlog/trainlog/internal/api/models"
	"github.com/trainlog/trainlog/internal/auth"
	"github.com/trainlog/trainlog/internal/database"
)

// ListUsers returns all accounts, newest first. Admin only.
func (h *Handler) ListUsers(c *gin.Context) {
	users, err := h.auth.ListUsers(c.Request.Context())
	if err != nil {
		internalError(c, "Failed to list users", err)
		return
	}
	c.JSON(http.StatusOK, models.ToUsers(users, h.avatars))
}

// CreateUser creates an account on behalf of an admin.
func (h *Handler) CreateUser(c *gin.Context) {
	var req models.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.auth.CreateUser(c.Request.Context(), auth.CreateUserInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
		Username: req.Username,
		Role:     database.Role(req.Role),
	})
	if err != nil {
		h.respondAuthError(c, "Failed to create user", err)
		return
	}

	c.JSON(http.StatusCreated, models.ToUser(user, h.avatars))
}

// UpdateUser changes the provided fields of an account.
func (h *Handler) UpdateUser(c *gin.Context) {
	var req models.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	in := auth.UpdateUserInput{
		Email:    req.Email,
		Name:     req.Name,
		Username: req.Username,
		Password: req.Password,
	}
	if req.Role != nil {
		role := database.Role(*req.Role)
		in.Role = &role
	}

	user, err := h.auth.UpdateUser(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		h.respondAuthError(c, "Failed to update user", err)
		return
	}

	c.JSON(http.StatusOK, models.ToUser(user, h.avatars))
}

// DeleteUser removes an account and everything it owns.
func (h *Handler) DeleteUser(c *gin.Context) {
	if err := h.auth.DeleteUser(c.Request.Context(), currentUser(c).ID, c.Param("id")); err != nil {
		h.respondAuthError(c, "Failed to delete user", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User deleted"})
}
