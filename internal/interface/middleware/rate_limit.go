package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/oksasatya/library-management/pkg/response"
)

func normalizePath(c *gin.Context) string {
	if fp := c.FullPath(); fp != "" {
		return fp
	}
	return c.Request.URL.Path
}

// KeyFunc builds a rate-limit key from the request
type KeyFunc func(c *gin.Context) string

// KeyByIP returns a key function that limits by client IP only
func KeyByIP() KeyFunc {
	return func(c *gin.Context) string {
		return "rl:ip:" + ipFromCtx(c)
	}
}

// KeyByIPAndPath returns a key function that limits by client IP and request path
func KeyByIPAndPath() KeyFunc {
	return func(c *gin.Context) string {
		return "rl:path:" + normalizePath(c) + ":ip:" + ipFromCtx(c)
	}
}

// KeyByUser limits by acting identity, or by IP before authentication.
func KeyByUser() KeyFunc {
	return func(c *gin.Context) string {
		email := UserEmail(c)
		if email == "" {
			return "rl:user:anon:ip:" + ipFromCtx(c)
		}
		return "rl:user:" + email
	}
}

// Lua script: atomic INCR + set EXPIRE when the key is new
var incrExpireScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return current
`)

type AllowFunc func(*gin.Context) bool // return true for bypass limit

// RateLimit allows max requests per window and key. With a Redis client the
// count is shared across instances; without one each process keeps its own
// token buckets.
// - atomic redis (lua)
// - standard headers (limit/remaining/reset)
// - optional allowlist bypass & method skip
func RateLimit(rdb *redis.Client, max int, window time.Duration, keyFn KeyFunc, allow AllowFunc) gin.HandlerFunc {
	if max <= 0 || window <= 0 || keyFn == nil {
		return func(c *gin.Context) { c.Next() }
	}
	var check func(c *gin.Context, key string) (allowed bool, remaining, resetSec int)
	if rdb != nil {
		check = redisCheck(rdb, max, window)
	} else {
		check = newLocalLimiter(max, window).check
	}

	return func(c *gin.Context) {
		if allow != nil && allow(c) {
			c.Next()
			return
		}
		if strings.EqualFold(c.Request.Method, http.MethodOptions) {
			c.Next()
			return
		}

		allowed, remaining, resetSec := check(c, keyFn(c))
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(max))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", strconv.Itoa(resetSec))

		if !allowed {
			if resetSec > 0 {
				c.Header("Retry-After", strconv.Itoa(resetSec))
			}
			response.Error[any](c, http.StatusTooManyRequests, "rate limit exceeded", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}

func redisCheck(rdb *redis.Client, max int, window time.Duration) func(*gin.Context, string) (bool, int, int) {
	return func(c *gin.Context, key string) (bool, int, int) {
		ctx := c.Request.Context()
		countI, err := incrExpireScript.Run(ctx, rdb, []string{key}, window.Milliseconds()).Result()
		if err != nil {
			// fail open when redis is unavailable
			return true, max, 0
		}
		count := toInt(countI)

		ttl, _ := rdb.TTL(ctx, key).Result()
		resetSec := 0
		if ttl > 0 {
			resetSec = int(ttl.Seconds())
		}
		return count <= max, max - count, resetSec
	}
}

// localLimiter keeps one token bucket per key in process memory.
type localLimiter struct {
	mu      sync.Mutex
	max     int
	every   rate.Limit
	buckets map[string]*rate.Limiter
}

func newLocalLimiter(max int, window time.Duration) *localLimiter {
	return &localLimiter{
		max:     max,
		every:   rate.Every(window / time.Duration(max)),
		buckets: map[string]*rate.Limiter{},
	}
}

func (l *localLimiter) check(_ *gin.Context, key string) (bool, int, int) {
	l.mu.Lock()
	lim, ok := l.buckets[key]
	if !ok {
		lim = rate.NewLimiter(l.every, l.max)
		l.buckets[key] = lim
	}
	l.mu.Unlock()

	if !lim.Allow() {
		wait := lim.Reserve()
		delay := wait.Delay()
		wait.Cancel()
		return false, 0, int(delay.Seconds()) + 1
	}
	return true, int(lim.Tokens()), 0
}

func toInt(v interface{}) int {
	switch x := v.(type) {
	case int64:
		return int(x)
	case int:
		return x
	case string:
		i, _ := strconv.Atoi(x)
		return i
	}
	return 0
}
