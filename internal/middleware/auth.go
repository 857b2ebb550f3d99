package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/solar-admin/internal/handler"
	"github.com/jwalitptl/solar-admin/internal/model"
	"github.com/jwalitptl/solar-admin/pkg/errors"
)

// SessionAuthenticator resolves a dashboard token to a live session.
type SessionAuthenticator interface {
	Authenticate(ctx context.Context, token string) (*model.Session, error)
}

type AuthMiddleware struct {
	sessions SessionAuthenticator
}

func NewAuthMiddleware(sessions SessionAuthenticator) *AuthMiddleware {
	return &AuthMiddleware{sessions: sessions}
}

// Authenticate verifies the bearer token and puts the admin session in context
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, handler.NewErrorResponse("missing authorization header"))
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, handler.NewErrorResponse("invalid authorization format"))
			return
		}

		sess, err := m.sessions.Authenticate(c.Request.Context(), parts[1])
		if err != nil {
			if errors.Is(err, errors.ErrUnauthorized) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, handler.NewErrorResponse("session expired, please sign in again"))
				return
			}
			handler.RespondError(c, err)
			c.Abort()
			return
		}

		handler.SetSession(c, sess)
		c.Next()
	}
}

// RequireRole rejects admins whose role is not listed.
func (m *AuthMiddleware) RequireRole(roles ...model.AdminRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := handler.Session(c)
		if sess == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, handler.NewErrorResponse("unauthorized"))
			return
		}
		for _, r := range roles {
			if sess.Admin.Role == r {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, handler.NewErrorResponse("permission denied"))
	}
}
