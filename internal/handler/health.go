package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"sentinelshield/internal/inference"
)

type HealthHandler interface {
	Root(c *gin.Context)
	Health(c *gin.Context)
}

type healthHandler struct {
	adapter *inference.Adapter
	db      *sqlx.DB
	rdb     *redis.Client
}

func NewHealthHandler(adapter *inference.Adapter, db *sqlx.DB, rdb *redis.Client) HealthHandler {
	return &healthHandler{adapter: adapter, db: db, rdb: rdb}
}

// Root handles GET /
func (h *healthHandler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "SentinelShield AI Online",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// Health handles GET /api/health and reports each collaborator's
// availability without failing the endpoint itself.
func (h *healthHandler) Health(c *gin.Context) {
	ctx := c.Request.Context()

	dbOK := h.db != nil && h.db.PingContext(ctx) == nil
	redisOK := h.rdb != nil && h.rdb.Ping(ctx).Err() == nil

	status := "ok"
	if !dbOK || !redisOK {
		status = "degraded"
	}

	c.JSON(http.StatusOK, gin.H{
		"status":      status,
		"database":    dbOK,
		"redis":       redisOK,
		"classifiers": h.adapter.Availability(),
		"timestamp":   time.Now().Format(time.RFC3339),
	})
}
