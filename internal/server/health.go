package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/spendlens/internal/observability/logger"
	"go.uber.org/zap"
)

const healthCheckTimeout = 3 * time.Second

// Health reports liveness and whether the database answers a ping.
func (s *Server) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
	defer cancel()

	if err := s.pingDB(ctx); err != nil {
		logger.FromContext(c.Request.Context()).Warn("health check failed", zap.Error(err))
		message := "database unavailable"
		if s.cfg.IsDevelopment() {
			message = err.Error()
		}
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "error",
			"message": message,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": s.clock.Now().UTC(),
	})
}

func (s *Server) pingDB(ctx context.Context) error {
	if s.db == nil {
		return errors.New("database handle is not configured")
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *Server) Index(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Invoice Analytics API",
		"service": s.cfg.AppName,
		"version": s.cfg.AppVersion,
		"endpoints": gin.H{
			"health":        "/api/health",
			"stats":         "/api/stats",
			"invoices":      "/api/invoices",
			"vendors":       "/api/vendors/top10",
			"categorySpend": "/api/category-spend",
			"invoiceTrends": "/api/invoice-trends",
			"cashOutflow":   "/api/cash-outflow",
			"chatWithData":  "/api/chat-with-data",
			"chatHistory":   "/api/chat-with-data/history",
			"export":        "/api/export/csv",
			"metrics":       "/metrics",
		},
	})
}
