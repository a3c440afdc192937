package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

func (h HandlerSet) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	checks := make(gin.H, len(h.checks))
	for _, check := range h.checks {
		if err := check.Ping(ctx); err != nil {
			checks[check.Name] = "error"
			status = http.StatusServiceUnavailable
			h.log.Error().Err(err).Str("dependency", check.Name).Msg("health check failed")
			continue
		}
		checks[check.Name] = "ok"
	}

	overall := "ok"
	if status != http.StatusOK {
		overall = "degraded"
	}
	c.JSON(status, gin.H{
		"status":      overall,
		"checks":      checks,
		"environment": h.cfg.Environment,
	})
}
