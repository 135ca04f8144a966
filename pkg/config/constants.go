package config

// EnvPrefix namespaces every environment variable consumed by envconfig.
const EnvPrefix = "BIOLAB"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvDBDSN  = "BIOLAB_DB_DSN"
	EnvDBHost = "BIOLAB_DB_HOST"
	EnvDBUser = "BIOLAB_DB_USER"
	EnvDBName = "BIOLAB_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
