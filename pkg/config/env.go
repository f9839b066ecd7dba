package config

// EnvPrefix is applied by envconfig on bare struct fields.
const EnvPrefix = "dbacct"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

// Environment variable names referenced outside struct tags.
const (
	EnvAppEnv     = "DBACCT_APP_ENV"
	EnvPort       = "DBACCT_APP_PORT"
	EnvDBDSN      = "DBACCT_DB_DSN"
	EnvDBHost     = "DBACCT_DB_HOST"
	EnvDBUser     = "DBACCT_DB_USER"
	EnvDBName     = "DBACCT_DB_NAME"
	EnvRedisURL   = "DBACCT_REDIS_URL"
	EnvJWTSecret  = "DBACCT_JWT_SECRET"
	EnvJWTIssuer  = "DBACCT_JWT_ISSUER"
	EnvJWTExpMins = "DBACCT_JWT_EXPIRATION_MINUTES"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
