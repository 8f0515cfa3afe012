package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/socialchat/backend/internal/models"
)

// UserKey is the gin context key holding the authenticated user.
const UserKey = "auth_user"

// bearerPrefix is the literal prefix before the token, including the space.
const bearerPrefix = "Bearer "

// Authenticator resolves a raw access token to a user.
type Authenticator interface {
	Authenticate(token string) (*models.User, error)
}

// PresenceToucher marks a user as online, best-effort.
type PresenceToucher interface {
	Touch(ctx context.Context, userID uint)
}

// AuthRequired admits requests carrying a valid bearer access token and
// stashes the resolved user in the context. Every failure mode collapses
// into a single 401; the caller never learns whether the token was
// missing, expired or tampered with.
func AuthRequired(auth Authenticator, presence PresenceToucher) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, bearerPrefix) {
			unauthorized(c)
			return
		}

		user, err := auth.Authenticate(header[len(bearerPrefix):])
		if err != nil {
			unauthorized(c)
			return
		}

		if presence != nil {
			presence.Touch(c.Request.Context(), user.ID)
		}

		c.Set(UserKey, user)
		c.Next()
	}
}

// CurrentUser returns the authenticated user stored by AuthRequired.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	v, ok := c.Get(UserKey)
	if !ok {
		return nil, false
	}
	user, ok := v.(*models.User)
	return user, ok
}

func unauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"message": "unauthorized",
	})
}
