package config

// EnvPrefix is handed to envconfig; every field carries its full name via tags.
const EnvPrefix = "SARISARI"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	// ReferenceTimezone must match the AT TIME ZONE of ux_gcash_earnings_store_day.
	ReferenceTimezone = "Asia/Manila"
)

const (
	EnvAppEnv                 = "SARISARI_APP_ENV"
	EnvPort                   = "SARISARI_APP_PORT"
	EnvDBDSN                  = "SARISARI_DB_DSN"
	EnvDBHost                 = "SARISARI_DB_HOST"
	EnvDBUser                 = "SARISARI_DB_USER"
	EnvDBName                 = "SARISARI_DB_NAME"
	EnvDBPassword             = "SARISARI_DB_PASSWORD"
	EnvRedisURL               = "SARISARI_REDIS_URL"
	EnvJWTSecret              = "SARISARI_JWT_SECRET"
	EnvJWTIssuer              = "SARISARI_JWT_ISSUER"
	EnvJWTExpMins             = "SARISARI_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMinutes = "SARISARI_REFRESH_TOKEN_TTL_MINUTES"
	EnvCacheEarningsTTL       = "SARISARI_CACHE_EARNINGS_TTL"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
