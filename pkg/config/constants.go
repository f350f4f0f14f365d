package config

// EnvPrefix is passed to envconfig; individual fields carry full names in their tags.
const EnvPrefix = "aqua"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvDBDSN  = "AQUA_DB_DSN"
	EnvDBHost = "AQUA_DB_HOST"
	EnvDBUser = "AQUA_DB_USER"
	EnvDBName = "AQUA_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
