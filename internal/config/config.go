package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Store drivers accepted in STORE_DRIVER.
const (
	DriverMemory   = "memory"
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config holds application configuration
type Config struct {
	Server    ServerConfig
	Store     StoreConfig
	MongoDB   MongoDBConfig
	SQL       SQLConfig
	Redis     RedisConfig
	JWT       JWTConfig
	OIDC      OIDCConfig
	RateLimit RateLimitConfig
	Autosave  AutosaveConfig
	LogLevel  string
}

type ServerConfig struct {
	Port         string
	Host         string
	Environment  string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Addr is the listen address.
func (s ServerConfig) Addr() string { return s.Host + ":" + s.Port }

type StoreConfig struct {
	Driver string
}

type MongoDBConfig struct {
	URI      string
	Database string
	Timeout  time.Duration
}

type SQLConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// Enabled reports whether a Redis host was configured.
func (r RedisConfig) Enabled() bool { return r.Host != "" }

// Addr is host:port.
func (r RedisConfig) Addr() string { return r.Host + ":" + r.Port }

type JWTConfig struct {
	Secret         string
	AccessTokenTTL time.Duration
}

type OIDCConfig struct {
	Issuer        string
	ClientID      string
	AllowInsecure bool
}

type RateLimitConfig struct {
	Enabled  bool
	UseRedis bool
	RPS      float64
	Burst    int
	Window   time.Duration
}

type AutosaveConfig struct {
	Idle time.Duration
}

// LoadConfig reads the environment (after an optional .env file) and
// validates driver-specific requirements.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("SERVER_PORT", "4000")
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_ENVIRONMENT", "development")
	v.SetDefault("SERVER_READ_TIMEOUT", 30)
	v.SetDefault("SERVER_WRITE_TIMEOUT", 30)
	v.SetDefault("STORE_DRIVER", DriverMemory)
	v.SetDefault("MONGODB_DATABASE", "catatan")
	v.SetDefault("MONGODB_TIMEOUT", 10)
	v.SetDefault("SQL_MAX_OPEN_CONNS", 10)
	v.SetDefault("SQL_MAX_IDLE_CONNS", 5)
	v.SetDefault("SQL_CONN_MAX_LIFETIME", 30)
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("JWT_ACCESS_TOKEN_TTL", 1440)
	v.SetDefault("RATE_LIMIT_RPS", 10)
	v.SetDefault("RATE_LIMIT_BURST", 20)
	v.SetDefault("RATE_LIMIT_WINDOW_SECONDS", 1)
	v.SetDefault("AUTOSAVE_IDLE_MS", 1500)
	v.SetDefault("LOG_LEVEL", "info")

	cfg := &Config{
		Server: ServerConfig{
			Port:         v.GetString("SERVER_PORT"),
			Host:         v.GetString("SERVER_HOST"),
			Environment:  v.GetString("SERVER_ENVIRONMENT"),
			ReadTimeout:  time.Duration(v.GetInt("SERVER_READ_TIMEOUT")) * time.Second,
			WriteTimeout: time.Duration(v.GetInt("SERVER_WRITE_TIMEOUT")) * time.Second,
		},
		Store: StoreConfig{
			Driver: strings.ToLower(strings.TrimSpace(v.GetString("STORE_DRIVER"))),
		},
		MongoDB: MongoDBConfig{
			URI:      v.GetString("MONGODB_URI"),
			Database: v.GetString("MONGODB_DATABASE"),
			Timeout:  time.Duration(v.GetInt("MONGODB_TIMEOUT")) * time.Second,
		},
		SQL: SQLConfig{
			DSN:             v.GetString("SQL_DSN"),
			MaxOpenConns:    v.GetInt("SQL_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("SQL_MAX_IDLE_CONNS"),
			ConnMaxLifetime: time.Duration(v.GetInt("SQL_CONN_MAX_LIFETIME")) * time.Minute,
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetString("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		JWT: JWTConfig{
			Secret:         v.GetString("JWT_SECRET"),
			AccessTokenTTL: time.Duration(v.GetInt("JWT_ACCESS_TOKEN_TTL")) * time.Minute,
		},
		OIDC: OIDCConfig{
			Issuer:        v.GetString("OIDC_ISSUER"),
			ClientID:      v.GetString("OIDC_CLIENT_ID"),
			AllowInsecure: v.GetBool("ALLOW_INSECURE_TOKEN"),
		},
		RateLimit: RateLimitConfig{
			Enabled:  v.GetBool("RATE_LIMIT_ENABLED"),
			UseRedis: v.GetBool("RATE_LIMIT_USE_REDIS"),
			RPS:      v.GetFloat64("RATE_LIMIT_RPS"),
			Burst:    v.GetInt("RATE_LIMIT_BURST"),
			Window:   time.Duration(v.GetInt("RATE_LIMIT_WINDOW_SECONDS")) * time.Second,
		},
		Autosave: AutosaveConfig{
			Idle: time.Duration(v.GetInt("AUTOSAVE_IDLE_MS")) * time.Millisecond,
		},
		LogLevel: v.GetString("LOG_LEVEL"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Store.Driver {
	case DriverMemory:
	case DriverMongo:
		if c.MongoDB.URI == "" {
			return fmt.Errorf("MONGODB_URI is required when STORE_DRIVER=%s", DriverMongo)
		}
	case DriverPostgres, DriverSQLite:
		if c.SQL.DSN == "" {
			return fmt.Errorf("SQL_DSN is required when STORE_DRIVER=%s", c.Store.Driver)
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q (want memory, mongo, postgres or sqlite)", c.Store.Driver)
	}
	if c.SQL.MaxOpenConns <= 0 {
		return fmt.Errorf("SQL_MAX_OPEN_CONNS must be positive")
	}
	if c.Autosave.Idle <= 0 {
		return fmt.Errorf("AUTOSAVE_IDLE_MS must be positive")
	}
	return nil
}
