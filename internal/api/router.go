package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-kit/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jengzang/heatmap-backend-go/internal/config"
	"github.com/jengzang/heatmap-backend-go/internal/handler"
	"github.com/jengzang/heatmap-backend-go/internal/metrics"
	"github.com/jengzang/heatmap-backend-go/internal/middleware"
	"github.com/jengzang/heatmap-backend-go/pkg/response"
)

// Deps are the collaborators the router wires into handlers
type Deps struct {
	HeatMap  *handler.HeatMapHandler
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
	Limiter  *middleware.RateLimiter
	Logger   log.Logger
}

// SetupRouter 设置路由
func SetupRouter(cfg *config.Config, deps Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Logger(deps.Logger, deps.Metrics))

	// CORS 中间件
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	r.NoRoute(func(c *gin.Context) {
		response.NotFound(c, "Route not found")
	})

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Heat map backend is running",
		})
	})

	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))

	// API 路由组
	api := r.Group("/api/v1")
	if deps.Limiter != nil {
		api.Use(middleware.RateLimit(deps.Limiter, deps.Metrics.RateLimited))
	}
	if cfg.AuthEnabled {
		api.Use(middleware.JWTAuth(cfg.JWTSecret))
	}
	{
		heatmap := api.Group("/heatmap")
		{
			heatmap.GET("", deps.HeatMap.GetHeatMap)
			heatmap.GET("/percentiles", deps.HeatMap.GetPercentiles)
			heatmap.POST("/rows", deps.HeatMap.SaveRow)
		}
	}

	return r
}
