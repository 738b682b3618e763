package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/dumeirei/foodstay-backend/internal/common/database"
)

// 就绪检查中每个依赖的超时
const readyCheckTimeout = 3 * time.Second

// HealthResponse 健康检查响应
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp int64             `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// rootHandler 服务信息
func rootHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Welcome to Food & Stay API",
		"version": version,
		"endpoints": gin.H{
			"auth":     "/api/auth",
			"foods":    "/api/foods",
			"rooms":    "/api/rooms",
			"orders":   "/api/orders",
			"bookings": "/api/bookings",
		},
	})
}

// apiHealthHandler 健康检查
// @Summary 健康检查
// @Tags 系统
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/health [get]
func apiHealthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"message":   "Server is running healthy!",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// healthHandler 健康检查（简单版）
func healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().Unix(),
	})
}

// pingHandler Ping 检查
func pingHandler(c *gin.Context) {
	c.String(http.StatusOK, "pong")
}

// readyHandler 就绪检查（检查依赖服务）
func readyHandler(db *gorm.DB, redisClient *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		checks := make(map[string]string, 2)
		allHealthy := true

		// 检查数据库连接
		checks["database"] = "ok"
		if err := pingWithTimeout(c.Request.Context(), func(ctx context.Context) error {
			return database.Ping(ctx, db)
		}); err != nil {
			checks["database"] = "error: " + err.Error()
			allHealthy = false
		}

		// 检查 Redis 连接
		checks["redis"] = "ok"
		if err := pingWithTimeout(c.Request.Context(), func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}); err != nil {
			checks["redis"] = "error: " + err.Error()
			allHealthy = false
		}

		status := http.StatusOK
		statusText := "ready"
		if !allHealthy {
			status = http.StatusServiceUnavailable
			statusText = "not ready"
		}

		c.JSON(status, HealthResponse{
			Status:    statusText,
			Timestamp: time.Now().Unix(),
			Checks:    checks,
		})
	}
}

func pingWithTimeout(parent context.Context, ping func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(parent, readyCheckTimeout)
	defer cancel()
	return ping(ctx)
}
