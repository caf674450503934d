package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/quillbase/blogserver/internal/constants"
	"github.com/quillbase/blogserver/pkg/redis"
	"gorm.io/gorm"
)

type HealthHandler struct {
	db    *gorm.DB
	redis *redis.Client
}

func NewHealthHandler(db *gorm.DB, redisClient *redis.Client) *HealthHandler {
	return &HealthHandler{
		db:    db,
		redis: redisClient,
	}
}

// Live answers liveness checks without touching any dependency.
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service": constants.AppName,
		"status":  "ok",
	})
}

// Health reports the service and its dependencies. A failing
// dependency turns the response into a 503 with per-check detail.
func (h *HealthHandler) Health(c *gin.Context) {
	ctx := c.Request.Context()

	status := http.StatusOK
	checks := gin.H{}

	dbStatus := "up"
	sqlDB, err := h.db.DB()
	if err == nil {
		err = sqlDB.PingContext(ctx)
	}
	if err != nil {
		dbStatus = "down"
		status = http.StatusServiceUnavailable
	}
	checks["database"] = dbStatus

	redisStatus := "up"
	if h.redis == nil {
		redisStatus = "disabled"
	} else if err := h.redis.Ping(ctx); err != nil {
		redisStatus = "down"
		status = http.StatusServiceUnavailable
	}
	checks["redis"] = redisStatus

	overall := "healthy"
	if status != http.StatusOK {
		overall = "degraded"
	}

	c.JSON(status, gin.H{
		"service":   constants.AppName,
		"status":    overall,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"checks":    checks,
	})
}
