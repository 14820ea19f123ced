package config

import (
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

type Config struct {
	HTTPServer HTTPServer `yaml:"http_server"`
	Fetcher    Fetcher    `yaml:"fetcher"`
	Cache      Cache      `yaml:"cache"`
	Session    Session    `yaml:"session"`
	Redis      Redis      `yaml:"redis"`
	Log        Log        `yaml:"log"`
}

type HTTPServer struct {
	Port        string        `yaml:"port" env:"HTTP_PORT" env-default:"8082"`
	Timeout     time.Duration `yaml:"timeout" env:"HTTP_TIMEOUT" env-default:"30s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env:"HTTP_IDLE_TIMEOUT" env-default:"60s"`
}

type Fetcher struct {
	URL     string        `yaml:"url" env:"FETCHER_URL" env-default:"https://open.er-api.com/v6/latest"`
	Timeout time.Duration `yaml:"timeout" env:"FETCHER_TIMEOUT" env-default:"10s"`
}

type Cache struct {
	TTL time.Duration `yaml:"ttl" env:"CACHE_TTL" env-default:"10m"`
}

type Session struct {
	Store        string        `yaml:"store" env:"SESSION_STORE" env-default:"memory"`
	TTL          time.Duration `yaml:"ttl" env:"SESSION_TTL" env-default:"24h"`
	CookieName   string        `yaml:"cookie_name" env:"SESSION_COOKIE_NAME" env-default:"fx_session"`
	CookieSecure bool          `yaml:"cookie_secure" env:"SESSION_COOKIE_SECURE" env-default:"false"`
}

type Redis struct {
	Host     string `yaml:"host" env:"REDIS_HOST" env-default:"localhost:6379"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
	Prefix   string `yaml:"prefix" env:"REDIS_PREFIX" env-default:"fx:session:"`
}

type Log struct {
	Level string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
}

const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

// NewConfig reads .env (if present), then CONFIG_PATH (if set), then the
// environment. Environment variables win over the file.
func NewConfig() (*Config, error) {
	const op = "config.NewConfig"

	cfg := &Config{}

	_ = godotenv.Load(".env")

	var err error
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		err = cleanenv.ReadConfig(path, cfg)
	} else {
		err = cleanenv.ReadEnv(cfg)
	}
	if err != nil {
		return nil, errors.Wrap(err, op)
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, op)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Session.Store {
	case StoreMemory, StoreRedis:
	default:
		return errors.Errorf("unknown session store %q", c.Session.Store)
	}

	if c.Fetcher.Timeout <= 0 {
		return errors.New("fetcher timeout must be positive")
	}
	if c.Cache.TTL < 0 {
		return errors.New("cache ttl must not be negative")
	}
	if c.Session.TTL <= 0 {
		return errors.New("session ttl must be positive")
	}

	return nil
}

func (c *Config) LogLevel() slog.Level {
	switch strings.ToLower(c.Log.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// LogValue keeps the redis password out of startup logs.
func (c Config) LogValue() slog.Value {
	redis := c.Redis
	if redis.Password != "" {
		redis.Password = "***"
	}
	return slog.GroupValue(
		slog.Any("http_server", c.HTTPServer),
		slog.Any("fetcher", c.Fetcher),
		slog.Any("cache", c.Cache),
		slog.Any("session", c.Session),
		slog.Any("redis", redis),
		slog.String("log_level", c.Log.Level),
	)
}
