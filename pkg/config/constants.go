package config

const (
	EnvPrefix = "MECHANIX"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "MECHANIX_DB_DSN"
	EnvDBHost = "MECHANIX_DB_HOST"
	EnvDBUser = "MECHANIX_DB_USER"
	EnvDBName = "MECHANIX_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
