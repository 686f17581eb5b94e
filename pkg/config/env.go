package config

const (
	EnvPrefix = "SWEETORDER"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv   = "SWEETORDER_APP_ENV"
	EnvPort     = "SWEETORDER_APP_PORT"
	EnvLogLevel = "SWEETORDER_LOG_LEVEL"

	EnvDBDSN  = "SWEETORDER_DB_DSN"
	EnvDBHost = "SWEETORDER_DB_HOST"
	EnvDBUser = "SWEETORDER_DB_USER"
	EnvDBName = "SWEETORDER_DB_NAME"

	EnvRedisURL = "SWEETORDER_REDIS_URL"

	EnvJWTSecret  = "SWEETORDER_JWT_SECRET"
	EnvJWTIssuer  = "SWEETORDER_JWT_ISSUER"
	EnvJWTExpMins = "SWEETORDER_JWT_EXPIRATION_MINUTES"

	EnvLikeTxMaxWait = "SWEETORDER_LIKE_TX_MAX_WAIT"
	EnvLikeTxTimeout = "SWEETORDER_LIKE_TX_TIMEOUT"

	EnvSentryDSN = "SWEETORDER_SENTRY_DSN"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
