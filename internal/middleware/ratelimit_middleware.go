package middleware

import (
    "net/http"
    "time"

    "github.com/gin-gonic/gin"
    "github.com/hashicorp/golang-lru/v2/expirable"
    "github.com/rs/zerolog/log"
    "golang.org/x/time/rate"

    "github.com/GTDGit/stockcentral/internal/utils"
)

// LoginRateLimiter throttles login attempts per client IP.
// Idle IPs are evicted after five minutes.
type LoginRateLimiter struct {
    limiters *expirable.LRU[string, *rate.Limiter]
    rate     rate.Limit
    burst    int
}

// NewLoginRateLimiter allows perMinute attempts per IP, refilled evenly.
func NewLoginRateLimiter(perMinute int) *LoginRateLimiter {
    return &LoginRateLimiter{
        limiters: expirable.NewLRU[string, *rate.Limiter](
            1000,
            nil,
            5*time.Minute,
        ),
        rate:  rate.Limit(float64(perMinute) / 60.0),
        burst: perMinute,
    }
}

// Allow checks if ip can make another attempt.
func (r *LoginRateLimiter) Allow(ip string) bool {
    limiter, ok := r.limiters.Get(ip)
    if !ok {
        limiter = rate.NewLimiter(r.rate, r.burst)
        r.limiters.Add(ip, limiter)
    }
    return limiter.Allow()
}

// Handle rejects requests above the limit with 429.
func (r *LoginRateLimiter) Handle() gin.HandlerFunc {
    return func(c *gin.Context) {
        ip := c.ClientIP()
        if !r.Allow(ip) {
            log.Warn().Str("ip", ip).Msg("login rate limit exceeded")
            utils.Error(c, http.StatusTooManyRequests, "TOO_MANY_REQUESTS", "Too many login attempts")
            c.Abort()
            return
        }
        c.Next()
    }
}
