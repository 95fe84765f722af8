// Package config は環境変数からアプリケーション設定を読み込む。
package config

import (
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config はアプリケーション全体の設定を保持する。
// 起動時に1回読み込み、イミュータブルとして各層へ注入する。
type Config struct {
	DB DBConfig

	// Server
	ServerPort string `env:"SERVER_PORT" env-default:"8080"`

	// Logging
	LogLevel string `env:"LOG_LEVEL" env-default:"info"`

	// CORS
	CORSAllowedOrigin string `env:"CORS_ALLOWED_ORIGIN" env-default:"*"`

	// Rate Limit（クライアントごとのreq/min。0で無効）
	RateLimitPerMinute int `env:"RATE_LIMIT_PER_MINUTE" env-default:"600"`

	// X-Forwarded-For / X-Real-IP を信頼してクライアントIPを決定するか。
	// 信頼できるリバースプロキシの背後でのみ有効にする。
	TrustProxyHeaders bool `env:"TRUST_PROXY_HEADERS" env-default:"false"`

	// GET /users/{id} で対象が存在しない場合のステータスコード（200 または 404）
	UserNotFoundStatus int `env:"USER_NOT_FOUND_STATUS" env-default:"200"`
}

// DBConfig はデータストア接続の設定を保持する。
// sqlite3ドライバの場合、DB_NAMEはデータベースファイルのパスとして扱う。
type DBConfig struct {
	Driver       string        `env:"DB_DRIVER" env-default:"postgres"`
	Host         string        `env:"DB_HOST,MYSQL_HOST" env-required:"true"`
	Port         string        `env:"DB_PORT"`
	User         string        `env:"DB_USER,MYSQL_USER" env-required:"true"`
	Password     string        `env:"DB_PASSWORD,MYSQL_PASSWORD" env-required:"true"`
	Name         string        `env:"DB_NAME,MYSQL_DATABASE" env-required:"true"`
	SSLMode      string        `env:"DB_SSLMODE" env-default:"disable"`
	QueryTimeout time.Duration `env:"DB_QUERY_TIMEOUT" env-default:"5s"`
	AutoMigrate  bool          `env:"DB_AUTO_MIGRATE" env-default:"false"`
}

var supportedDrivers = []string{"postgres", "mysql", "sqlite3"}

// Load は環境変数からConfigを読み込む。
// CONFIG_FILE が設定されている場合は先にそのファイル（.env / .yaml 等）を読み、環境変数で上書きする。
// 必須環境変数が未設定または空の場合はエラーを返す。
func Load() (*Config, error) {
	cfg := &Config{}

	var err error
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		err = cleanenv.ReadConfig(path, cfg)
	} else {
		err = cleanenv.ReadEnv(cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	var missing []string
	if c.DB.Host == "" {
		missing = append(missing, "DB_HOST")
	}
	if c.DB.User == "" {
		missing = append(missing, "DB_USER")
	}
	if c.DB.Password == "" {
		missing = append(missing, "DB_PASSWORD")
	}
	if c.DB.Name == "" {
		missing = append(missing, "DB_NAME")
	}
	if len(missing) > 0 {
		return fmt.Errorf("required environment variables are not set: %v", missing)
	}

	c.DB.Driver = strings.ToLower(strings.TrimSpace(c.DB.Driver))
	if !isSupportedDriver(c.DB.Driver) {
		return fmt.Errorf("unsupported DB_DRIVER %q (supported: %s)", c.DB.Driver, strings.Join(supportedDrivers, ", "))
	}

	if c.DB.QueryTimeout <= 0 {
		return fmt.Errorf("DB_QUERY_TIMEOUT must be positive, got %s", c.DB.QueryTimeout)
	}

	if c.UserNotFoundStatus != http.StatusOK && c.UserNotFoundStatus != http.StatusNotFound {
		return fmt.Errorf("USER_NOT_FOUND_STATUS must be 200 or 404, got %d", c.UserNotFoundStatus)
	}

	if c.RateLimitPerMinute < 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must not be negative, got %d", c.RateLimitPerMinute)
	}

	return nil
}

func isSupportedDriver(driver string) bool {
	for _, d := range supportedDrivers {
		if d == driver {
			return true
		}
	}
	return false
}
