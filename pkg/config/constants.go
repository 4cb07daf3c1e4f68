package config

const (
	EnvPrefix = "GESTOCK"

	AppEnvDev  = "development"
	AppEnvProd = "production"

	EnvAppEnv  = "GESTOCK_APP_ENV"
	EnvAppPort = "GESTOCK_APP_PORT"

	EnvDBDSN  = "GESTOCK_DB_DSN"
	EnvDBHost = "GESTOCK_DB_HOST"
	EnvDBUser = "GESTOCK_DB_USER"
	EnvDBName = "GESTOCK_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
