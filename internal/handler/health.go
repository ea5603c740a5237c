package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Health reports liveness of the process and its two backing stores.
// Degraded dependencies turn the status to "degraded" but still return 200 —
// recommendation reads can survive a Redis outage, so the process keeps serving.
func Health(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		status := "ok"
		checks := gin.H{}

		if sqlDB, err := db.DB(); err != nil {
			status = "degraded"
			checks["postgres"] = "error"
		} else if err := sqlDB.PingContext(ctx); err != nil {
			status = "degraded"
			checks["postgres"] = "error"
		} else {
			checks["postgres"] = "ok"
		}

		if err := rdb.Ping(ctx).Err(); err != nil {
			status = "degraded"
			checks["redis"] = "error"
		} else {
			checks["redis"] = "ok"
		}

		c.JSON(http.StatusOK, gin.H{
			"status": status,
			"checks": checks,
			"time":   time.Now().UTC().Format(time.RFC3339),
		})
	}
}
