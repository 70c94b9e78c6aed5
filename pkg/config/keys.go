package config

const (
	EnvPrefix = "SIPCOURSE"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	LogFormatConsole = "console"

	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"

	defaultSQLiteDSN = "file:sipcourse.db?cache=shared&_foreign_keys=on"
)

const (
	EnvAppEnv                 = "SIPCOURSE_APP_ENV"
	EnvPort                   = "SIPCOURSE_APP_PORT"
	EnvDBDSN                  = "SIPCOURSE_DB_DSN"
	EnvDBDriver               = "SIPCOURSE_DB_DRIVER"
	EnvDBHost                 = "SIPCOURSE_DB_HOST"
	EnvDBUser                 = "SIPCOURSE_DB_USER"
	EnvDBName                 = "SIPCOURSE_DB_NAME"
	EnvDBPassword             = "SIPCOURSE_DB_PASSWORD"
	EnvRedisURL               = "SIPCOURSE_REDIS_URL"
	EnvJWTSecret              = "SIPCOURSE_JWT_SECRET"
	EnvJWTIssuer              = "SIPCOURSE_JWT_ISSUER"
	EnvJWTExpMins             = "SIPCOURSE_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMinutes = "SIPCOURSE_REFRESH_TOKEN_TTL_MINUTES"
	EnvUseSQLite              = "SIPCOURSE_USE_SQLITE"
	EnvCORSOrigins            = "SIPCOURSE_CORS_ORIGINS"
	EnvLogFormat              = "SIPCOURSE_LOG_FORMAT"
	EnvPortfolioSummaryTTL    = "SIPCOURSE_CACHE_PORTFOLIO_SUMMARY_TTL"
)

var dbPartEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
