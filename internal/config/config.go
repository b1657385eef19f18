// Package config は環境変数からのアプリケーション設定の読み込みを提供する。
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// セッションストアのバックエンド種別。
const (
	SessionBackendMemory = "memory"
	SessionBackendRedis  = "redis"
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Graph store
	Neo4jURI      string
	Neo4jUsername string
	Neo4jPassword string

	// Identity provider (Feishu)
	FeishuHost      string
	FeishuAppID     string
	FeishuAppSecret string

	// Session
	SessionSecret  string
	SessionMaxAge  int // 秒。0は無期限
	SessionBackend string

	// Redis (SessionBackend=redisの場合のみ使用)
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Auth
	MockLogin bool

	// Rate Limit (req/min)
	RateLimitGeneral int
	RateLimitLogin   int

	// Server
	ServerPort string
	BaseURL    string

	// Cookie
	CookieSecure bool
	CookieDomain string

	// CORS
	CORSAllowedOrigin string
}

// Load は環境変数からConfigを読み込む。
// 必須環境変数が未設定の場合はエラーを返す。
func Load() (*Config, error) {
	cfg := &Config{}

	// Required fields
	var missing []string

	cfg.Neo4jURI = os.Getenv("NEO4J_URI")
	if cfg.Neo4jURI == "" {
		missing = append(missing, "NEO4J_URI")
	}

	cfg.Neo4jUsername = os.Getenv("NEO4J_USERNAME")
	if cfg.Neo4jUsername == "" {
		missing = append(missing, "NEO4J_USERNAME")
	}

	cfg.Neo4jPassword = os.Getenv("NEO4J_PASSWORD")
	if cfg.Neo4jPassword == "" {
		missing = append(missing, "NEO4J_PASSWORD")
	}

	cfg.FeishuAppID = os.Getenv("FEISHU_APP_ID")
	if cfg.FeishuAppID == "" {
		missing = append(missing, "FEISHU_APP_ID")
	}

	cfg.FeishuAppSecret = os.Getenv("FEISHU_APP_SECRET")
	if cfg.FeishuAppSecret == "" {
		missing = append(missing, "FEISHU_APP_SECRET")
	}

	cfg.SessionSecret = os.Getenv("SESSION_SECRET")
	if cfg.SessionSecret == "" {
		missing = append(missing, "SESSION_SECRET")
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	// Optional fields with defaults
	cfg.FeishuHost = getEnvString("FEISHU_HOST", "https://open.feishu.cn")
	cfg.SessionMaxAge = getEnvInt("SESSION_MAX_AGE", 0)
	cfg.SessionBackend = getEnvString("SESSION_BACKEND", SessionBackendMemory)
	cfg.RedisAddr = getEnvString("REDIS_ADDR", "localhost:6379")
	cfg.RedisPassword = getEnvString("REDIS_PASSWORD", "")
	cfg.RedisDB = getEnvInt("REDIS_DB", 0)
	cfg.MockLogin = getEnvBool("MOCK_LOGIN", false)
	cfg.RateLimitGeneral = getEnvInt("RATE_LIMIT_GENERAL", 120)
	cfg.RateLimitLogin = getEnvInt("RATE_LIMIT_LOGIN", 10)
	cfg.ServerPort = getEnvString("SERVER_PORT", "8080")
	cfg.BaseURL = getEnvString("BASE_URL", "http://localhost:8080")
	cfg.CookieSecure = strings.HasPrefix(cfg.BaseURL, "https://")
	cfg.CookieDomain = getEnvString("COOKIE_DOMAIN", "")
	cfg.CORSAllowedOrigin = getEnvString("CORS_ALLOWED_ORIGIN", "http://localhost:3000")

	if cfg.SessionBackend != SessionBackendMemory && cfg.SessionBackend != SessionBackendRedis {
		return nil, fmt.Errorf("unknown SESSION_BACKEND: %q", cfg.SessionBackend)
	}

	return cfg, nil
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return defaultVal
	}
	return b
}
