package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// CtxUserEmailKey holds the acting identity once Auth succeeds.
const CtxUserEmailKey = "userEmail"

// BearerToken extracts the credential from "Authorization: Bearer <token>".
func BearerToken(c *gin.Context) (string, bool) {
	h := strings.TrimSpace(c.GetHeader("Authorization"))
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// UserEmail returns the identity bound by Auth.
func UserEmail(c *gin.Context) string {
	return c.GetString(CtxUserEmailKey)
}
