package middleware

import (
	"net"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/library-management/pkg/response"
)

const realIPKey = "real_ip"

// proxyHeaders are consulted in order; the first parseable address wins.
// X-Forwarded-For contributes its left-most entry.
var proxyHeaders = []string{"CF-Connecting-IP", "X-Real-IP", "X-Forwarded-For"}

// RealIP resolves the client address once per request and stores it for the
// rate limiter and the private-network guard.
func RealIP() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(realIPKey, resolveIP(c))
		c.Next()
	}
}

func resolveIP(c *gin.Context) string {
	for _, h := range proxyHeaders {
		v := c.GetHeader(h)
		if first, _, ok := strings.Cut(v, ","); ok {
			v = first
		}
		if ip := net.ParseIP(strings.TrimSpace(v)); ip != nil {
			return ip.String()
		}
	}
	return c.ClientIP()
}

// ipFromCtx returns the address set by RealIP, falling back to gin's view of
// the peer and then "unknown".
func ipFromCtx(c *gin.Context) string {
	if ip := c.GetString(realIPKey); ip != "" {
		return ip
	}
	if ip := c.ClientIP(); ip != "" {
		return ip
	}
	return "unknown"
}

func isPrivateIP(c *gin.Context) bool {
	ip := net.ParseIP(ipFromCtx(c))
	return ip != nil && (ip.IsLoopback() || ip.IsPrivate())
}

// AllowPrivateIP lets loopback and RFC 1918 callers bypass a rate limit.
func AllowPrivateIP() AllowFunc { return isPrivateIP }

// PrivateOnly rejects callers outside loopback and private networks with 403.
func PrivateOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !isPrivateIP(c) {
			response.Error[any](c, http.StatusForbidden, "forbidden", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}
