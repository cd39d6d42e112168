// Package config は環境変数ベースのアプリケーション設定を提供する。
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Database
	// DatabaseURL はリモートドキュメントストア（PostgreSQL）の接続URL。
	// 未設定の場合、サービスはローカルストアのみで動作する（リモートモード無効）。
	DatabaseURL string
	// LocalDBPath はローカルストア（SQLite）のファイルパス。
	LocalDBPath string

	// AI
	// AIAPIKey が空の場合、AIコラボレータのエンドポイントは503を返す。
	AIAPIKey   string
	AIEndpoint string
	AIModel    string
	AITimeout  time.Duration

	// Session
	SessionMaxAge          int // 秒
	SessionCleanupInterval time.Duration

	// Rate Limit（req/min/user）
	RateLimitGeneral int
	RateLimitAI      int

	// Server
	ServerPort string
	BaseURL    string

	// Cookie
	CookieSecure bool
	CookieDomain string

	// CORS
	CORSAllowedOrigin string

	// Logging
	LogLevel string
}

// Load は環境変数からConfigを読み込む。
// リモートストアとAIサービスはいずれもオプショナルであり、
// 対応する環境変数が未設定でもエラーにはならない。
func Load() (*Config, error) {
	cfg := &Config{}

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	cfg.LocalDBPath = getEnvString("LOCAL_DB_PATH", "planman.db")

	cfg.AIAPIKey = os.Getenv("AI_API_KEY")
	cfg.AIEndpoint = getEnvString("AI_ENDPOINT", "https://api.openai.com/v1/chat/completions")
	cfg.AIModel = getEnvString("AI_MODEL", "gpt-4o-mini")
	cfg.AITimeout = getEnvDuration("AI_TIMEOUT", 30*time.Second)

	cfg.SessionMaxAge = getEnvInt("SESSION_MAX_AGE", 86400*30)
	cfg.SessionCleanupInterval = getEnvDuration("SESSION_CLEANUP_INTERVAL", time.Hour)

	cfg.RateLimitGeneral = getEnvInt("RATE_LIMIT_GENERAL", 120)
	cfg.RateLimitAI = getEnvInt("RATE_LIMIT_AI", 20)

	cfg.ServerPort = getEnvString("SERVER_PORT", "8080")
	cfg.BaseURL = getEnvString("BASE_URL", "http://localhost:"+cfg.ServerPort)
	if !strings.HasPrefix(cfg.BaseURL, "http://") && !strings.HasPrefix(cfg.BaseURL, "https://") {
		return nil, fmt.Errorf("BASE_URL must start with http:// or https://: %s", cfg.BaseURL)
	}

	cfg.CookieSecure = strings.HasPrefix(cfg.BaseURL, "https://")
	cfg.CookieDomain = getEnvString("COOKIE_DOMAIN", "")
	cfg.CORSAllowedOrigin = getEnvString("CORS_ALLOWED_ORIGIN", "http://localhost:3000")
	cfg.LogLevel = getEnvString("LOG_LEVEL", "info")

	return cfg, nil
}

// RemoteEnabled はリモートストアが設定されているかどうかを返す。
func (c *Config) RemoteEnabled() bool {
	return c.DatabaseURL != ""
}

// AIEnabled はAIコラボレータが設定されているかどうかを返す。
func (c *Config) AIEnabled() bool {
	return c.AIAPIKey != ""
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

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}
