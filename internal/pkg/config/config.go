package config

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
	"golang.org/x/crypto/bcrypt"

	"github.com/orgauth/identity-service/internal/infrastructure/security"
)

// Store drivers.
const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	Auth        AuthConfig
	StoreDriver string `env:"STORE_DRIVER, default=mongo"`
	Mongo       MongoConfig
	Postgres    PostgresConfig
	Redis       RedisConfig
}

type AuthConfig struct {
	JWTSecret          string        `env:"JWT_SECRET, required"`
	JWTAlgorithm       string        `env:"JWT_ALGORITHM, default=HS256"`
	AccessTokenMinutes int           `env:"ACCESS_TOKEN_EXPIRE_MINUTES, default=30"`
	BcryptCost         int           `env:"BCRYPT_COST, default=10"`
	HashWorkers        int           `env:"HASH_WORKERS, default=4"`
	LoginMaxAttempts   int           `env:"LOGIN_MAX_ATTEMPTS, default=5"`
	LoginWindow        time.Duration `env:"LOGIN_WINDOW, default=15m"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=identity"`
}

type PostgresConfig struct {
	DSN string `env:"POSTGRES_DSN, default=postgres://localhost:5432/identity?sslmode=disable"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR, default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB, default=0"`
}

// AccessTokenTTL is the default lifetime of issued tokens.
func (a AuthConfig) AccessTokenTTL() time.Duration {
	return time.Duration(a.AccessTokenMinutes) * time.Minute
}

// LoginLimitEnabled reports whether failed logins are throttled.
func (a AuthConfig) LoginLimitEnabled() bool {
	return a.LoginMaxAttempts > 0
}

// IsDevelopment enables human-friendly logging.
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Env, "development")
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the service cannot start with.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Auth.JWTSecret) == "" {
		errs = append(errs, errors.New("JWT_SECRET must not be empty"))
	}
	if !security.SupportedAlgorithm(c.Auth.JWTAlgorithm) {
		errs = append(errs, fmt.Errorf("JWT_ALGORITHM %q is not supported", c.Auth.JWTAlgorithm))
	}
	if c.Auth.AccessTokenMinutes <= 0 {
		errs = append(errs, errors.New("ACCESS_TOKEN_EXPIRE_MINUTES must be positive"))
	}
	if c.Auth.BcryptCost < bcrypt.MinCost || c.Auth.BcryptCost > bcrypt.MaxCost {
		errs = append(errs, fmt.Errorf("BCRYPT_COST must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost))
	}
	if c.Auth.LoginMaxAttempts > 0 && c.Auth.LoginWindow <= 0 {
		errs = append(errs, errors.New("LOGIN_WINDOW must be positive"))
	}
	switch c.StoreDriver {
	case DriverMongo, DriverPostgres:
	default:
		errs = append(errs, fmt.Errorf("STORE_DRIVER %q is not one of %s, %s", c.StoreDriver, DriverMongo, DriverPostgres))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}
