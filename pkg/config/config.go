package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	Commerce     CommerceConfig
	Promotion    PromotionConfig
	Inventory    InventoryConfig
	Breaker      BreakerConfig
	ProductCache ProductCacheConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Commerce.validate(); err != nil {
		return nil, err
	}
	if err := cfg.Promotion.validate(); err != nil {
		return nil, err
	}
	if err := cfg.DB.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string   `envconfig:"PROMOCART_APP_ENV" required:"true"`
	Port         string   `envconfig:"PROMOCART_APP_PORT" required:"true"`
	LogLevel     string   `envconfig:"PROMOCART_LOG_LEVEL" default:"info"`
	LogFormat    string   `envconfig:"PROMOCART_LOG_FORMAT" default:"json"`
	LogWarnStack bool     `envconfig:"PROMOCART_LOG_WARN_STACK" default:"false"`
	CORSOrigins  []string `envconfig:"PROMOCART_CORS_ORIGINS"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"PROMOCART_DB_DSN" required:"true"`
	Driver string `envconfig:"PROMOCART_DB_DRIVER" default:"postgres"`

	MaxOpenConns    int           `envconfig:"PROMOCART_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"PROMOCART_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"PROMOCART_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"PROMOCART_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

func (d DBConfig) validate() error {
	switch strings.ToLower(d.Driver) {
	case DBDriverPostgres, DBDriverSQLite:
		return nil
	default:
		return fmt.Errorf("unsupported %s %q", EnvDBDriver, d.Driver)
	}
}

type RedisConfig struct {
	URL          string        `envconfig:"PROMOCART_REDIS_URL"`
	Address      string        `envconfig:"PROMOCART_REDIS_ADDR"`
	Password     string        `envconfig:"PROMOCART_REDIS_PASSWORD"`
	DB           int           `envconfig:"PROMOCART_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"PROMOCART_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"PROMOCART_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"PROMOCART_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"PROMOCART_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"PROMOCART_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Enabled reports whether a redis endpoint was configured.
func (r RedisConfig) Enabled() bool {
	return r.URL != "" || r.Address != ""
}

type CommerceConfig struct {
	BaseURL    string        `envconfig:"PROMOCART_COMMERCE_BASE_URL" required:"true"`
	ProjectKey string        `envconfig:"PROMOCART_COMMERCE_PROJECT_KEY" required:"true"`
	Token      string        `envconfig:"PROMOCART_COMMERCE_TOKEN"`
	Channel    string        `envconfig:"PROMOCART_COMMERCE_CHANNEL" default:"online"`
	Timeout    time.Duration `envconfig:"PROMOCART_COMMERCE_TIMEOUT" default:"10s"`
}

func (c CommerceConfig) validate() error {
	if _, err := url.ParseRequestURI(c.BaseURL); err != nil {
		return fmt.Errorf("invalid %s: %w", EnvCommerceBaseURL, err)
	}
	return nil
}

type PromotionConfig struct {
	BaseURL     string        `envconfig:"PROMOCART_PROMOTION_BASE_URL" required:"true"`
	APIKey      string        `envconfig:"PROMOCART_PROMOTION_API_KEY" required:"true"`
	Timeout     time.Duration `envconfig:"PROMOCART_PROMOTION_TIMEOUT" default:"10s"`
	EffectNames []string      `envconfig:"PROMOCART_PROMOTION_EFFECT_NAMES" default:"bundle,bundle_coupon"`
}

func (p PromotionConfig) validate() error {
	if _, err := url.ParseRequestURI(p.BaseURL); err != nil {
		return fmt.Errorf("invalid %s: %w", EnvPromotionBaseURL, err)
	}
	return nil
}

type InventoryConfig struct {
	SafetyStock    int `envconfig:"PROMOCART_INVENTORY_SAFETY_STOCK" default:"0"`
	CommitAttempts int `envconfig:"PROMOCART_INVENTORY_COMMIT_ATTEMPTS" default:"3"`
}

type BreakerConfig struct {
	MaxRequests      uint32        `envconfig:"PROMOCART_BREAKER_MAX_REQUESTS" default:"3"`
	Interval         time.Duration `envconfig:"PROMOCART_BREAKER_INTERVAL" default:"30s"`
	Timeout          time.Duration `envconfig:"PROMOCART_BREAKER_TIMEOUT" default:"15s"`
	FailureThreshold uint32        `envconfig:"PROMOCART_BREAKER_FAILURE_THRESHOLD" default:"5"`
}

type ProductCacheConfig struct {
	TTL time.Duration `envconfig:"PROMOCART_PRODUCT_CACHE_TTL" default:"5m"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"PROMOCART_AUTO_MIGRATE" default:"false"`
}
