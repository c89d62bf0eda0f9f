package config

const EnvPrefix = "PROMOCART"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"
)

const (
	EnvAppEnv             = "PROMOCART_APP_ENV"
	EnvPort               = "PROMOCART_APP_PORT"
	EnvDBDSN              = "PROMOCART_DB_DSN"
	EnvDBDriver           = "PROMOCART_DB_DRIVER"
	EnvCORSOrigins        = "PROMOCART_CORS_ORIGINS"
	EnvRedisURL           = "PROMOCART_REDIS_URL"
	EnvCommerceBaseURL    = "PROMOCART_COMMERCE_BASE_URL"
	EnvCommerceProjectKey = "PROMOCART_COMMERCE_PROJECT_KEY"
	EnvPromotionBaseURL   = "PROMOCART_PROMOTION_BASE_URL"
	EnvPromotionAPIKey    = "PROMOCART_PROMOTION_API_KEY"
	EnvPromotionEffects   = "PROMOCART_PROMOTION_EFFECT_NAMES"
)
