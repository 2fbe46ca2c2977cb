package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/trainlog/trainlog/internal/api/models"
	"github.com/trainlog/trainlog/internal/auth"
	"github.com/trainlog/trainlog/internal/database"
)

// authErrorStatus maps auth service errors to a status and client message.
func authErrorStatus(err error) (int, string, bool) {
	switch {
	case errors.Is(err, auth.ErrValidation):
		return http.StatusBadRequest, err.Error(), true
	case errors.Is(err, auth.ErrUserExists):
		return http.StatusConflict, "User already exists", true
	case errors.Is(err, auth.ErrUserNotFound):
		return http.StatusNotFound, "User not found", true
	case errors.Is(err, auth.ErrSelfDelete):
		return http.StatusBadRequest, "Cannot delete yourself", true
	case errors.Is(err, auth.ErrWrongPassword):
		return http.StatusBadRequest, "Current password is incorrect", true
	case errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Invalid credentials", true
	}
	return 0, "", false
}

func (h *Handler) respondAuthError(c *gin.Context, msg string, err error) {
	if status, clientMsg, ok := authErrorStatus(err); ok {
		abortWithError(c, status, clientMsg)
		return
	}
	internalError(c, msg, err)
}

func (h *Handler) sessionResponse(s *auth.Session) models.AuthResponse {
	return models.AuthResponse{
		Token:     s.Token,
		ExpiresAt: s.ExpiresAt,
		User:      models.ToUser(s.User, h.avatars),
	}
}

// Register creates an account and returns a token.
func (h *Handler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	session, err := h.auth.Register(c.Request.Context(), auth.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
		Username: req.Username,
	})
	if err != nil {
		h.respondAuthError(c, "Failed to register user", err)
		return
	}

	c.JSON(http.StatusCreated, h.sessionResponse(session))
}

// Login verifies credentials and returns a token.
func (h *Handler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	session, err := h.auth.Login(c.Request.Context(), req.Login(), req.Password)
	if err != nil {
		h.respondAuthError(c, "Failed to log in", err)
		return
	}

	c.JSON(http.StatusOK, h.sessionResponse(session))
}

// Me returns the caller's profile.
func (h *Handler) Me(c *gin.Context) {
	c.JSON(http.StatusOK, models.ToProfile(currentUser(c), h.avatars))
}

// UpdateMe applies profile changes of the caller.
func (h *Handler) UpdateMe(c *gin.Context) {
	var req models.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	in := auth.ProfileInput{
		Name:            req.Name,
		Username:        req.Username,
		Weight:          req.Weight,
		Height:          req.Height,
		BirthDate:       req.BirthDate,
		Password:        req.Password,
		CurrentPassword: req.CurrentPassword,
	}
	if req.Theme != nil {
		theme := database.Theme(*req.Theme)
		in.Theme = &theme
	}

	user, err := h.auth.UpdateProfile(c.Request.Context(), currentUser(c).ID, in)
	if err != nil {
		h.respondAuthError(c, "Failed to update profile", err)
		return
	}

	c.JSON(http.StatusOK, models.ToProfile(user, h.avatars))
}
