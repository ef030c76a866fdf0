package config

// EnvPrefix is passed to envconfig; individual fields carry explicit names so
// the prefix only matters for fields without a tag.
const EnvPrefix = "BIDHOUSE"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "production"
)

const (
	EnvAppEnv     = "BIDHOUSE_APP_ENV"
	EnvPort       = "BIDHOUSE_APP_PORT"
	EnvDBDSN      = "BIDHOUSE_DB_DSN"
	EnvDBHost     = "BIDHOUSE_DB_HOST"
	EnvDBUser     = "BIDHOUSE_DB_USER"
	EnvDBName     = "BIDHOUSE_DB_NAME"
	EnvRedisURL   = "BIDHOUSE_REDIS_URL"
	EnvJWTSecret  = "BIDHOUSE_JWT_SECRET"
	EnvJWTIssuer  = "BIDHOUSE_JWT_ISSUER"
	EnvJWTExpMins = "BIDHOUSE_JWT_EXPIRATION_MINUTES"
	EnvCheckoutOK = "BIDHOUSE_CHECKOUT_SUCCESS_URL"
	EnvCheckoutKO = "BIDHOUSE_CHECKOUT_CANCEL_URL"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
