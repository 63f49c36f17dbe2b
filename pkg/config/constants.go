package config

const (
	// EnvPrefix is empty because every tag carries the full PAWMART_ name.
	EnvPrefix = ""

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	CartBackendRedis    = "redis"
	CartBackendDatabase = "database"
)
