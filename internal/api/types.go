package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/socialchat/backend/internal/service"
)

// RegisterRequest is the payload for account registration.
type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required,min=6"`
	Email    string `json:"email" binding:"required,email"`
}

// LoginRequest is the payload for login.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest is the payload for token refresh.
type RefreshRequest struct {
	Refresh string `json:"refresh" binding:"required"`
}

// respondError writes the client-visible error envelope.
func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{
		"success": false,
		"message": message,
	})
}

// serviceError maps service sentinels to HTTP status codes. Unknown
// errors surface as 500 without leaking their text.
func serviceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUserExists):
		respondError(c, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		respondError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrTokenNotFound):
		respondError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrInvalidToken), errors.Is(err, service.ErrTokenExpired):
		respondError(c, http.StatusUnauthorized, err.Error())
	case errors.Is(err, service.ErrForbidden):
		respondError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrMessageNotFound),
		errors.Is(err, service.ErrProfileNotFound),
		errors.Is(err, service.ErrUploadNotFound):
		respondError(c, http.StatusNotFound, err.Error())
	default:
		respondError(c, http.StatusInternalServerError, "internal server error")
	}
}
