package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Storage drivers.
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
)

type Config struct {
	Port          string        `env:"PORT,           default=8080"`
	Env           string        `env:"ENV,            default=development"`
	LogLevel      string        `env:"LOG_LEVEL,      default=info"`
	JWTSecret     string        `env:"JWT_SECRET,     required"`
	TokenTTL      time.Duration `env:"TOKEN_TTL,      default=120h"`
	BcryptCost    int           `env:"BCRYPT_COST,    default=10"`
	DefaultLocale string        `env:"DEFAULT_LOCALE, default=en"`
	AuditWorkers  int           `env:"AUDIT_WORKERS,  default=4"`

	LedgerDriver     string `env:"LEDGER_DRIVER,     default=memory"`
	CredentialDriver string `env:"CREDENTIAL_DRIVER, default=memory"`

	Mongo    MongoConfig
	Postgres PostgresConfig
	Redis    RedisConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=session_auth"`
}

type PostgresConfig struct {
	URL      string `env:"POSTGRES_URL,       default=postgres://localhost:5432/session_auth?sslmode=disable"`
	MaxConns int32  `env:"POSTGRES_MAX_CONNS, default=10"`
}

// RedisConfig configures the optional ledger read cache. An empty Addr
// disables it.
type RedisConfig struct {
	Addr     string        `env:"REDIS_ADDR"`
	Password string        `env:"REDIS_PASSWORD"`
	DB       int           `env:"REDIS_DB,         default=0"`
	CacheTTL time.Duration `env:"LEDGER_CACHE_TTL, default=30s"`
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
		return nil, fmt.Errorf("config: failed to load configuration: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.LedgerDriver {
	case DriverMemory, DriverPostgres:
	default:
		return fmt.Errorf("unsupported LEDGER_DRIVER %q", c.LedgerDriver)
	}
	switch c.CredentialDriver {
	case DriverMemory, DriverMongo:
	default:
		return fmt.Errorf("unsupported CREDENTIAL_DRIVER %q", c.CredentialDriver)
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive, got %s", c.TokenTTL)
	}
	return nil
}

// IsDevelopment reports whether the service runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}
