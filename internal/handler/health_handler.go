package handler

import (
    "context"
    "net/http"
    "time"

    "github.com/gin-gonic/gin"
    "github.com/rs/zerolog/log"

    "github.com/GTDGit/stockcentral/internal/utils"
)

var startTime = time.Now()

// Pinger is a dependency that can report its reachability.
type Pinger interface {
    Ping(ctx context.Context) error
}

// HealthHandler provides health endpoint.
type HealthHandler struct {
    database Pinger
    redis    Pinger
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(database, redis Pinger) *HealthHandler {
    return &HealthHandler{database: database, redis: redis}
}

// GetHealth responds with service, database and Redis status.
func (h *HealthHandler) GetHealth(c *gin.Context) {
    ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
    defer cancel()

    dbStatus := probe(ctx, "database", h.database)
    redisStatus := probe(ctx, "redis", h.redis)

    status := "healthy"
    if dbStatus != "connected" || redisStatus != "connected" {
        status = "degraded"
    }

    utils.Success(c, http.StatusOK, "Service is "+status, gin.H{
        "status":   status,
        "version":  "1.0.0",
        "uptime":   int(time.Since(startTime).Seconds()),
        "database": gin.H{"status": dbStatus},
        "redis":    gin.H{"status": redisStatus},
    })
}

func probe(ctx context.Context, name string, p Pinger) string {
    if err := p.Ping(ctx); err != nil {
        log.Warn().Err(err).Str("dependency", name).Msg("health check failed")
        return "disconnected"
    }
    return "connected"
}
