// Package config загружает настройки сервера и клиента из окружения и .env через godotenv и Viper.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Источники данных
const (
	SourceFile     = "file"
	SourcePostgres = "postgres"
	SourceRedis    = "redis"
)

// ServerConfig - настройки сервера поиска
type ServerConfig struct {
	HTTPAddr string `mapstructure:"HTTP_ADDR"`
	Env      string `mapstructure:"APP_ENV"`
	LogLevel string `mapstructure:"LOG_LEVEL"`

	// DebounceDelay - период тишины, после которого запрос клиента уходит в поиск
	DebounceDelay time.Duration `mapstructure:"DEBOUNCE_DELAY"`
	// LookupTimeout - ограничение на чтение источника данных при одном поиске
	LookupTimeout time.Duration `mapstructure:"LOOKUP_TIMEOUT"`

	DataSource  string `mapstructure:"DATA_SOURCE"`
	DataFile    string `mapstructure:"DATA_FILE"`
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	UsersTable  string `mapstructure:"USERS_TABLE"`

	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`
	RedisKey      string `mapstructure:"REDIS_KEY"`

	CORSAllowOrigins string `mapstructure:"CORS_ALLOW_ORIGINS"`
	// ProxyHeader - заголовок с реальным IP клиента (например X-Forwarded-For), пусто - адрес соединения
	ProxyHeader    string `mapstructure:"PROXY_HEADER"`
	MetricsEnabled bool   `mapstructure:"METRICS_ENABLED"`
}

// ClientConfig - настройки консольного клиента
type ClientConfig struct {
	ServerURL string `mapstructure:"SEARCH_SERVER_URL"`
	Env       string `mapstructure:"APP_ENV"`
	LogLevel  string `mapstructure:"LOG_LEVEL"`
}

// LoadDotEnv - подгружает .env в окружение. Отсутствие файла не ошибка.
func LoadDotEnv(files ...string) bool {
	return godotenv.Load(files...) == nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("APP_ENV", "production")
	v.SetDefault("LOG_LEVEL", "info")
	return v
}

// LoadServer - собирает и проверяет конфигурацию сервера
func LoadServer() (*ServerConfig, error) {
	v := newViper()

	v.SetDefault("HTTP_ADDR", ":3001")
	v.SetDefault("DEBOUNCE_DELAY", "5s")
	v.SetDefault("LOOKUP_TIMEOUT", "10s")
	v.SetDefault("DATA_SOURCE", SourceFile)
	v.SetDefault("DATA_FILE", "./data/users.json")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("USERS_TABLE", "users")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_KEY", "users")
	v.SetDefault("CORS_ALLOW_ORIGINS", "http://localhost:3000")
	v.SetDefault("PROXY_HEADER", "")
	v.SetDefault("METRICS_ENABLED", true)

	var cfg ServerConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate - проверяет обязательные поля и согласованность настроек
func (c *ServerConfig) Validate() error {
	if c.HTTPAddr == "" {
		return errors.New("config: HTTP_ADDR must be set")
	}
	if c.DebounceDelay <= 0 {
		return errors.New("config: DEBOUNCE_DELAY must be positive")
	}
	if c.LookupTimeout <= 0 {
		return errors.New("config: LOOKUP_TIMEOUT must be positive")
	}

	c.DataSource = strings.ToLower(strings.TrimSpace(c.DataSource))
	switch c.DataSource {
	case SourceFile:
		if c.DataFile == "" {
			return errors.New("config: DATA_FILE must be set when DATA_SOURCE=file")
		}
	case SourcePostgres:
		if c.DatabaseURL == "" {
			return errors.New("config: DATABASE_URL must be set when DATA_SOURCE=postgres")
		}
		if !isIdentifier(c.UsersTable) {
			return fmt.Errorf("config: USERS_TABLE %q is not a valid table name", c.UsersTable)
		}
	case SourceRedis:
		if c.RedisAddr == "" || c.RedisKey == "" {
			return errors.New("config: REDIS_ADDR and REDIS_KEY must be set when DATA_SOURCE=redis")
		}
	default:
		return fmt.Errorf("config: unknown DATA_SOURCE %q", c.DataSource)
	}
	return nil
}

// IsDevelopment - режим разработки (человекочитаемые логи)
func (c *ServerConfig) IsDevelopment() bool {
	return c.Env == "development"
}

// LoadClient - собирает конфигурацию консольного клиента
func LoadClient() (*ClientConfig, error) {
	v := newViper()
	v.SetDefault("SEARCH_SERVER_URL", "http://localhost:3001")

	var cfg ClientConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	cfg.ServerURL = strings.TrimRight(cfg.ServerURL, "/")
	if cfg.ServerURL == "" {
		return nil, errors.New("config: SEARCH_SERVER_URL must be set")
	}
	return &cfg, nil
}

// IsDevelopment - режим разработки (человекочитаемые логи)
func (c *ClientConfig) IsDevelopment() bool {
	return c.Env == "development"
}

// isIdentifier - имя таблицы подставляется в SQL, поэтому допускаем только [A-Za-z_][A-Za-z0-9_.]*
func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case (r >= '0' && r <= '9') || r == '.':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}
