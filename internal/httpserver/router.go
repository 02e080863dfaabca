package httpserver

import (
	"context"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"hydrotrack/internal/handler"
	"hydrotrack/pkg/metrics"
	"hydrotrack/pkg/mq"
)

func NewRouter(
	authHandler *handler.AuthHandler,
	entryHandler *handler.EntryHandler,
	statsHandler *handler.StatsHandler,
	containerHandler *handler.ContainerHandler,
	settingsHandler *handler.SettingsHandler,
	reminderHandler *handler.ReminderHandler,
	jwtSecret string,
	logger *zap.Logger,
	db *pgxpool.Pool,
	consumer *mq.Consumer,
) *gin.Engine {
	r := gin.Default()

	r.Use(func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		logger.Info("HTTP Request",
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("query", query),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
		metrics.RecordHTTPRequestDuration(
			c.Request.Method,
			c.FullPath(),
			strconv.Itoa(c.Writer.Status()),
			latency,
		)
	})

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.HEAD("/healthz", func(c *gin.Context) {
		c.Status(200)
	})

	r.GET("/readyz", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c, 1*time.Second)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			c.JSON(500, gin.H{"status": "db_not_ready", "error": err.Error()})
			return
		}

		if consumer != nil && !consumer.IsConnected() {
			c.JSON(500, gin.H{"status": "mq_not_ready"})
			return
		}

		c.JSON(200, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Public
	r.POST("/register", authHandler.Register)
	r.POST("/login", authHandler.Login)

	// Protected
	auth := r.Group("/")
	auth.Use(AuthMiddleware(jwtSecret))
	{
		auth.POST("/entries", entryHandler.LogEntry)
		auth.DELETE("/entries/:id", entryHandler.DeleteEntry)

		auth.GET("/progress", statsHandler.GetProgress)
		auth.GET("/streak", statsHandler.GetStreak)
		auth.GET("/stats/month", statsHandler.GetMonthStats)

		auth.GET("/containers", containerHandler.ListContainers)
		auth.POST("/containers", containerHandler.CreateContainer)
		auth.PUT("/containers/:id", containerHandler.UpdateContainer)
		auth.DELETE("/containers/:id", containerHandler.DeleteContainer)
		auth.POST("/containers/reorder", containerHandler.ReorderContainers)

		auth.GET("/settings", settingsHandler.GetSettings)
		auth.PUT("/settings", settingsHandler.UpdateSettings)

		auth.POST("/reminders/response", reminderHandler.PostResponse)
	}

	return r
}
