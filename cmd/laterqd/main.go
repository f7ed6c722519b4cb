// laterqd runs a delayed-queue worker against Redis: the drain poller,
// the recurring scheduler, and a small HTTP endpoint for health and
// status monitoring.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"

	"github.com/laterq/laterq/delayed"
	"github.com/laterq/laterq/hook"
	"github.com/laterq/laterq/job"
	"github.com/laterq/laterq/observability"
	"github.com/laterq/laterq/schedule"
	redisstore "github.com/laterq/laterq/store/redis"
)

func main() {
	cfg := loadConfig()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	ctx := context.Background()

	rdb := goredis.NewClient(&goredis.Options{
		Addr: cfg.RedisAddr,
		DB:   cfg.RedisDB,
	})
	st := redisstore.New(rdb,
		redisstore.WithLogger(logger),
		redisstore.WithCodec(job.GetCodec(cfg.Codec)),
	)
	if err := st.Ping(ctx); err != nil {
		logger.Error("redis connect failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	hooks := hook.NewRegistry(logger)
	hooks.Register(observability.NewMetricsExtension())

	poller := delayed.NewPoller(st, st,
		delayed.WithLogger(logger),
		delayed.WithEmitter(hooks),
		delayed.WithPollInterval(cfg.PollInterval),
	)

	scheduler := schedule.NewScheduler(st,
		schedule.WithLogger(logger),
		schedule.WithEmitter(hooks),
	)
	if err := scheduler.Start(ctx); err != nil {
		logger.Error("scheduler start failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	go serveStatus(cfg.Port, poller, st, logger)

	if err := poller.Run(ctx); err != nil {
		logger.Error("poller failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := scheduler.Stop(ctx); err != nil {
		logger.Error("scheduler stop failed", slog.String("error", err.Error()))
	}
	hooks.EmitShutdown(ctx)
}

// serveStatus exposes liveness and worker status for process monitors.
func serveStatus(port string, p *delayed.Poller, st *redisstore.Store, logger *slog.Logger) {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		if err := st.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/status", func(c *gin.Context) {
		pending, err := st.CountDelayed(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"worker":  p.Identity().String(),
			"status":  p.Status(),
			"pending": pending,
		})
	})

	if err := r.Run(":" + port); err != nil {
		logger.Error("status server failed", slog.String("error", err.Error()))
	}
}
