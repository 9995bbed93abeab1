package config

import (
	"os"
	"strconv"
	"time"
)

// Config 应用配置
type Config struct {
	Port        string
	DBPath      string
	JWTSecret   string
	AuthEnabled bool
	RateLimit   int           // 每个窗口内单个 IP 的最大请求数
	RateWindow  time.Duration // 限流窗口
	MaxPoints   int           // 单次查询最多的时间点数
	StrictAxis  bool          // 校验每一行与桶轴一致
	LogLevel    string
}

// Load 加载配置
func Load() *Config {
	port := os.Getenv("PORT")
	if port == "" {
		port = ":8080"
	}

	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "./data/metrics/heatmap.db"
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		jwtSecret = "your-secret-key-change-in-production"
	}

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}

	return &Config{
		Port:        port,
		DBPath:      dbPath,
		JWTSecret:   jwtSecret,
		AuthEnabled: envBool("AUTH_ENABLED", false),
		RateLimit:   envInt("RATE_LIMIT", 100),
		RateWindow:  envDuration("RATE_WINDOW", time.Minute),
		MaxPoints:   envInt("MAX_POINTS", 1440),
		StrictAxis:  envBool("STRICT_AXIS", false),
		LogLevel:    logLevel,
	}
}

func envInt(key string, def int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return def
}

func envBool(key string, def bool) bool {
	if v, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return v
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if v, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return v
	}
	return def
}
