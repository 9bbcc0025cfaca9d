package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	Auth  AuthConfig
	Mongo MongoConfig
	Redis RedisConfig
}

type AuthConfig struct {
	// JWTSecret is the symmetric signing key shared by every service
	// that verifies tokens. Required.
	JWTSecret string `env:"JWT_SECRET, required"`
	// TokenTTL bounds every minted token's lifetime.
	TokenTTL time.Duration `env:"TOKEN_TTL, default=1h"`
	// ClockLeeway widens expiry checks against cross-service clock
	// skew. Zero keeps strict expiry.
	ClockLeeway time.Duration `env:"CLOCK_LEEWAY, default=0s"`

	ThrottleMaxFailures int           `env:"LOGIN_MAX_FAILURES, default=5"`
	ThrottleWindow      time.Duration `env:"LOGIN_FAILURE_WINDOW, default=15m"`

	AuditWorkers int `env:"AUDIT_WORKERS, default=4"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=dms_auth"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}
