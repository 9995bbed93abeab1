package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-kit/log/level"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/jengzang/heatmap-backend-go/internal/api"
	"github.com/jengzang/heatmap-backend-go/internal/config"
	"github.com/jengzang/heatmap-backend-go/internal/database"
	"github.com/jengzang/heatmap-backend-go/internal/handler"
	"github.com/jengzang/heatmap-backend-go/internal/logging"
	"github.com/jengzang/heatmap-backend-go/internal/metrics"
	"github.com/jengzang/heatmap-backend-go/internal/middleware"
	"github.com/jengzang/heatmap-backend-go/internal/repository"
	"github.com/jengzang/heatmap-backend-go/internal/service"
)

func main() {
	// 加载配置
	cfg := config.Load()
	logger := logging.New(cfg.LogLevel)

	// 初始化数据库
	db, err := database.Open(database.Config{Path: cfg.DBPath}, logger)
	if err != nil {
		level.Error(logger).Log("msg", "failed to initialize database", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewMetrics(reg)

	svc := service.NewHeatMapService(
		repository.NewMetricsRepository(db),
		service.Options{MaxPoints: cfg.MaxPoints, StrictAxis: cfg.StrictAxis},
		m, logger,
	)

	limiter := middleware.NewRateLimiter(cfg.RateLimit, cfg.RateWindow)
	defer limiter.Close()

	// 初始化路由
	gin.SetMode(gin.ReleaseMode)
	router := api.SetupRouter(cfg, api.Deps{
		HeatMap:  handler.NewHeatMapHandler(svc),
		Metrics:  m,
		Gatherer: reg,
		Limiter:  limiter,
		Logger:   logger,
	})

	srv := &http.Server{
		Addr:              cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		level.Info(logger).Log("msg", "received shutdown signal")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			level.Error(logger).Log("msg", "shutdown error", "err", err)
		}
	}()

	// 启动服务器
	level.Info(logger).Log("msg", "server starting", "addr", cfg.Port, "auth", cfg.AuthEnabled, "strict_axis", cfg.StrictAxis)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		level.Error(logger).Log("msg", "failed to start server", "err", err)
		os.Exit(1)
	}
}
