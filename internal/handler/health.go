package handler

import (
	"context"
	"net/http"
	"time"

	"fixflow/internal/infra"
	"fixflow/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Health returns a JSON health check response.
// Checks DB and Redis connectivity plus the notification webhook circuit;
// never exposes credentials or internals.
func Health(db *gorm.DB, rdb *redis.Client, webhook *infra.WebhookClient) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		dbStatus := "connected"
		sqlDB, err := db.DB()
		if err != nil || sqlDB.PingContext(ctx) != nil {
			dbStatus = "error"
		}

		redisStatus := "connected"
		if rdb.Ping(ctx).Err() != nil {
			redisStatus = "error"
		}

		status := http.StatusOK
		if dbStatus != "connected" || redisStatus != "connected" {
			status = http.StatusServiceUnavailable
		}

		resp := gin.H{
			"ok":    status == http.StatusOK,
			"db":    dbStatus,
			"redis": redisStatus,
		}
		// The webhook being down degrades notifications but not the API.
		if webhook != nil && webhook.Configured() {
			resp["webhook_circuit"] = webhook.CircuitState().String()
		}
		// A growing dead-letter backlog means notifications are being lost.
		if redisStatus == "connected" {
			if dead, err := worker.DeadCount(ctx, rdb, worker.QueueNotify); err == nil {
				resp["notify_dead_jobs"] = dead
			}
		}

		c.JSON(status, resp)
	}
}
