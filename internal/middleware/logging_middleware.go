package middleware

import (
    "time"

    "github.com/gin-gonic/gin"
    "github.com/google/uuid"
    "github.com/rs/zerolog/log"
)

// RequestIDHeader echoes the request id back to the client.
const RequestIDHeader = "X-Request-ID"

// LoggingMiddleware logs basic request/response details and injects a request_id into context.
// Downstream code logging through log.Ctx(ctx) inherits the request_id field.
func LoggingMiddleware() gin.HandlerFunc {
    return func(c *gin.Context) {
        start := time.Now()
        path := c.Request.URL.Path

        // Generate request ID
        requestID := uuid.New().String()[:8]
        c.Set("request_id", requestID)
        c.Header(RequestIDHeader, requestID)

        logger := log.With().Str("request_id", requestID).Logger()
        c.Request = c.Request.WithContext(logger.WithContext(c.Request.Context()))

        // Process request
        c.Next()

        // Log after response
        status := c.Writer.Status()
        event := logger.Info()
        if status >= 500 {
            event = logger.Error()
        }

        event.
            Str("method", c.Request.Method).
            Str("path", path).
            Int("status", status).
            Dur("latency", time.Since(start)).
            Str("ip", c.ClientIP()).
            Int("admin_id", c.GetInt("admin_id")).
            Msg("HTTP Request")
    }
}
