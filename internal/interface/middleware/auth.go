package middleware

import (
	"context"
	"errors"
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/library-management/pkg/helpers"
	"github.com/oksasatya/library-management/pkg/response"
)

type TokenVerifier interface {
	Verify(token string) (string, error)
}

type RoleLookup interface {
	RolesOf(ctx context.Context, email string) ([]string, error)
}

// Auth validates the bearer token and binds the identity it carries. Requests
// without a valid token stop here.
func Auth(v TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := BearerToken(c)
		if !ok {
			response.Error[any](c, http.StatusUnauthorized, "missing or invalid Authorization token", nil)
			c.Abort()
			return
		}
		email, err := v.Verify(token)
		if err != nil {
			msg := "invalid token"
			if errors.Is(err, helpers.ErrTokenExpired) {
				msg = "token has expired"
			}
			response.Error[any](c, http.StatusUnauthorized, msg, err.Error())
			c.Abort()
			return
		}
		c.Set(CtxUserEmailKey, email)
		c.Next()
	}
}

// RequireRole lets the request through only when the acting identity holds role.
// It must run after Auth.
func RequireRole(roles RoleLookup, role string, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		email := UserEmail(c)
		if email == "" {
			response.Error[any](c, http.StatusUnauthorized, "authentication required", nil)
			c.Abort()
			return
		}
		held, err := roles.RolesOf(c.Request.Context(), email)
		if err != nil {
			logger.WithError(err).WithField("email", email).Error("role lookup failed")
			response.Error[any](c, http.StatusInternalServerError, "role lookup failed", nil)
			c.Abort()
			return
		}
		if !slices.Contains(held, role) {
			response.Error[any](c, http.StatusForbidden, "requires role "+role, nil)
			c.Abort()
			return
		}
		c.Next()
	}
}
