package config

const EnvPrefix = "CINECART"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	StorageDriverMemory   = "memory"
	StorageDriverRedis    = "redis"
	StorageDriverPostgres = "postgres"
	StorageDriverSQLite   = "sqlite"
)

var storageDrivers = []string{
	StorageDriverMemory,
	StorageDriverRedis,
	StorageDriverPostgres,
	StorageDriverSQLite,
}

const (
	EnvAppEnv        = "CINECART_APP_ENV"
	EnvPort          = "CINECART_APP_PORT"
	EnvStorageDriver = "CINECART_STORAGE_DRIVER"
	EnvDBDSN         = "CINECART_DB_DSN"
	EnvRedisURL      = "CINECART_REDIS_URL"
	EnvRedisAddr     = "CINECART_REDIS_ADDR"
	EnvTMDBAPIKey    = "CINECART_TMDB_API_KEY"
	EnvTMDBLanguage  = "CINECART_TMDB_LANGUAGE"
	EnvCORSOrigins   = "CINECART_CORS_ALLOWED_ORIGINS"
)
