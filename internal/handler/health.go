package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
)

type readinessCheck struct {
	name  string
	check func(ctx context.Context) error
}

type HealthHandler struct {
	checks []readinessCheck
}

// NewHealthHandler accepts a nil amqpConn when events do not go through RabbitMQ.
func NewHealthHandler(dbPool *pgxpool.Pool, redisClient *redis.Client, amqpConn *amqp.Connection) *HealthHandler {
	h := &HealthHandler{checks: []readinessCheck{
		{name: "postgres", check: dbPool.Ping},
		{name: "redis", check: func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }},
	}}
	if amqpConn != nil {
		h.checks = append(h.checks, readinessCheck{name: "rabbitmq", check: func(context.Context) error {
			if amqpConn.IsClosed() {
				return errors.New("connection closed")
			}
			return nil
		}})
	}
	return h
}

func (h *HealthHandler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readyz stops at the first dependency that fails.
func (h *HealthHandler) Readyz(c *gin.Context) {
	ctx := c.Request.Context()

	resp := gin.H{"status": "ok"}
	for _, rc := range h.checks {
		if err := rc.check(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "error", rc.name: "unavailable"})
			return
		}
		resp[rc.name] = "connected"
	}
	c.JSON(http.StatusOK, resp)
}
