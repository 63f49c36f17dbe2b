package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	Upstream     UpstreamConfig
	Redis        RedisConfig
	DB           DBConfig
	JWT          JWTConfig
	Cart         CartConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Cart.validate(); err != nil {
		return nil, err
	}
	if cfg.Cart.Backend == CartBackendDatabase && cfg.DB.DSN == "" {
		return nil, fmt.Errorf("PAWMART_DB_DSN is required when the cart backend is %q", CartBackendDatabase)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"PAWMART_APP_ENV" required:"true"`
	Port         string `envconfig:"PAWMART_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"PAWMART_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"PAWMART_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// UpstreamConfig points at the commerce backend the storefront composes over.
type UpstreamConfig struct {
	BaseURL string `envconfig:"PAWMART_UPSTREAM_BASE_URL" required:"true"`
	// Timeout of zero keeps requests open until the backend answers; the
	// storefront never retries, it falls back to the local copy instead.
	Timeout       time.Duration `envconfig:"PAWMART_UPSTREAM_TIMEOUT" default:"0"`
	SessionCookie string        `envconfig:"PAWMART_UPSTREAM_SESSION_COOKIE" default:"session"`
}

type RedisConfig struct {
	URL          string        `envconfig:"PAWMART_REDIS_URL" required:"true"`
	Address      string        `envconfig:"PAWMART_REDIS_ADDR"`
	Password     string        `envconfig:"PAWMART_REDIS_PASSWORD"`
	DB           int           `envconfig:"PAWMART_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"PAWMART_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"PAWMART_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"PAWMART_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"PAWMART_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"PAWMART_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type DBConfig struct {
	DSN    string `envconfig:"PAWMART_DB_DSN"`
	Driver string `envconfig:"PAWMART_DB_DRIVER" default:"postgres"`

	MaxOpenConns    int           `envconfig:"PAWMART_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"PAWMART_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"PAWMART_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"PAWMART_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// JWTConfig verifies the session cookie issued by the upstream auth service.
type JWTConfig struct {
	Secret string `envconfig:"PAWMART_JWT_SECRET" required:"true"`
	Issuer string `envconfig:"PAWMART_JWT_ISSUER"`
}

type CartConfig struct {
	Backend         string        `envconfig:"PAWMART_CART_BACKEND" default:"redis"`
	CatalogCacheTTL time.Duration `envconfig:"PAWMART_CATALOG_CACHE_TTL" default:"5m"`
}

func (c CartConfig) validate() error {
	switch c.Backend {
	case CartBackendRedis, CartBackendDatabase:
		return nil
	}
	return fmt.Errorf("cart backend must be %q or %q, got %q", CartBackendRedis, CartBackendDatabase, c.Backend)
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"PAWMART_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"PAWMART_AUTO_MIGRATE" default:"false"`
}
