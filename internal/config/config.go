package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/dotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	Server     ServerConfig
	DB         DBConfig
	Redis      RedisConfig
	NATS       NATSConfig
	JWT        JWTConfig
	CORS       CORSConfig
	RateLimit  RateLimitConfig
	Limits     LimitsConfig
	Migrations MigrationsConfig
	Log        LogConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	MaxConns int32
}

func (c DBConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode)
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// NATSConfig configures the audit event bus. An empty URL disables it.
type NATSConfig struct {
	URL string
}

type JWTConfig struct {
	AccessSecret string
	AccessExpiry time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

// RateLimitConfig holds the sliding-window limits applied by the API.
// API is keyed by client IP, Wager by authenticated user on record-bet.
type RateLimitConfig struct {
	APIRequests    int
	APIWindowSec   int
	WagerRequests  int
	WagerWindowSec int
}

// LimitsConfig holds the default deposit ceilings and the time zone used to
// cut daily, weekly and monthly windows.
type LimitsConfig struct {
	DefaultDaily   float64
	DefaultWeekly  float64
	DefaultMonthly float64
	Timezone       string
}

// Location resolves Timezone, falling back to UTC when empty.
func (c LimitsConfig) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("loading time zone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

type MigrationsConfig struct {
	Path string
	Auto bool
}

type LogConfig struct {
	Level  string
	Format string
}

func Load() (*Config, error) {
	k := koanf.New(".")

	// Load .env file if it exists (ignore error if missing)
	_ = k.Load(file.Provider(".env"), dotenv.Parser())

	// Load environment variables (override .env)
	err := k.Load(env.Provider("", ".", func(s string) string {
		return strings.ToLower(strings.ReplaceAll(s, "_", "."))
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("loading env vars: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host: k.String("server.host"),
			Port: k.Int("server.port"),
		},
		DB: DBConfig{
			Host:     k.String("db.host"),
			Port:     k.Int("db.port"),
			User:     k.String("db.user"),
			Password: k.String("db.password"),
			Name:     k.String("db.name"),
			SSLMode:  k.String("db.sslmode"),
			MaxConns: int32(k.Int("db.max.conns")),
		},
		Redis: RedisConfig{
			Host:     k.String("redis.host"),
			Port:     k.Int("redis.port"),
			Password: k.String("redis.password"),
			DB:       k.Int("redis.db"),
		},
		NATS: NATSConfig{
			URL: k.String("nats.url"),
		},
		JWT: JWTConfig{
			AccessSecret: k.String("jwt.access.secret"),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(k.String("cors.allowed.origins")),
		},
		RateLimit: RateLimitConfig{
			APIRequests:    k.Int("ratelimit.api.requests"),
			APIWindowSec:   k.Int("ratelimit.api.window"),
			WagerRequests:  k.Int("ratelimit.wager.requests"),
			WagerWindowSec: k.Int("ratelimit.wager.window"),
		},
		Limits: LimitsConfig{
			DefaultDaily:   k.Float64("limits.default.daily"),
			DefaultWeekly:  k.Float64("limits.default.weekly"),
			DefaultMonthly: k.Float64("limits.default.monthly"),
			Timezone:       k.String("limits.timezone"),
		},
		Migrations: MigrationsConfig{
			Path: k.String("migrations.path"),
			Auto: k.String("migrations.auto") != "false",
		},
		Log: LogConfig{
			Level:  k.String("log.level"),
			Format: k.String("log.format"),
		},
	}

	// Apply defaults
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.DB.Host == "" {
		cfg.DB.Host = "localhost"
	}
	if cfg.DB.Port == 0 {
		cfg.DB.Port = 5432
	}
	if cfg.DB.User == "" {
		cfg.DB.User = "predmarket"
	}
	if cfg.DB.Name == "" {
		cfg.DB.Name = "predmarket"
	}
	if cfg.DB.SSLMode == "" {
		cfg.DB.SSLMode = "disable"
	}
	if cfg.DB.MaxConns == 0 {
		cfg.DB.MaxConns = 25
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if len(cfg.CORS.AllowedOrigins) == 0 {
		cfg.CORS.AllowedOrigins = []string{"http://localhost:5173"}
	}
	if cfg.RateLimit.APIRequests == 0 {
		cfg.RateLimit.APIRequests = 300
	}
	if cfg.RateLimit.APIWindowSec == 0 {
		cfg.RateLimit.APIWindowSec = 60
	}
	if cfg.RateLimit.WagerRequests == 0 {
		cfg.RateLimit.WagerRequests = 30
	}
	if cfg.RateLimit.WagerWindowSec == 0 {
		cfg.RateLimit.WagerWindowSec = 60
	}
	if cfg.Limits.DefaultDaily == 0 {
		cfg.Limits.DefaultDaily = 100
	}
	if cfg.Limits.DefaultWeekly == 0 {
		cfg.Limits.DefaultWeekly = 500
	}
	if cfg.Limits.DefaultMonthly == 0 {
		cfg.Limits.DefaultMonthly = 2000
	}
	if cfg.Limits.Timezone == "" {
		cfg.Limits.Timezone = "UTC"
	}
	if cfg.Migrations.Path == "" {
		cfg.Migrations.Path = "migrations"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "debug"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}

	// Parse durations
	accessExpStr := k.String("jwt.access.expiry")
	if accessExpStr == "" {
		accessExpStr = "15m"
	}
	cfg.JWT.AccessExpiry, err = time.ParseDuration(accessExpStr)
	if err != nil {
		return nil, fmt.Errorf("parsing jwt access expiry: %w", err)
	}

	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
