package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App             AppConfig
	Storage         StorageConfig
	DB              DBConfig
	Redis           RedisConfig
	TMDB            TMDBConfig
	ViaCEP          ViaCEPConfig
	LookupRateLimit LookupRateLimitConfig
	CORS            CORSConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cross-field requirements envconfig cannot express.
func (c *Config) Validate() error {
	driver := c.Storage.NormalizedDriver()
	switch driver {
	case StorageDriverMemory, StorageDriverSQLite:
	case StorageDriverRedis:
		if c.Redis.URL == "" && c.Redis.Address == "" {
			return fmt.Errorf("%s or %s is required for the redis storage driver", EnvRedisURL, EnvRedisAddr)
		}
	case StorageDriverPostgres:
		if c.DB.DSN == "" {
			return fmt.Errorf("%s is required for the postgres storage driver", EnvDBDSN)
		}
	default:
		return fmt.Errorf("unsupported storage driver %q (expected one of %s)", c.Storage.Driver, strings.Join(storageDrivers, ", "))
	}
	c.Storage.Driver = driver
	return nil
}

type AppConfig struct {
	Env          string `envconfig:"CINECART_APP_ENV" required:"true"`
	Port         string `envconfig:"CINECART_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"CINECART_LOG_LEVEL" default:"info"`
	LogFormat    string `envconfig:"CINECART_LOG_FORMAT" default:"json"`
	LogWarnStack bool   `envconfig:"CINECART_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// StorageConfig selects the backend that plays the role of the browser's local storage.
type StorageConfig struct {
	Driver                  string        `envconfig:"CINECART_STORAGE_DRIVER" default:"memory"`
	SessionTTL              time.Duration `envconfig:"CINECART_STORAGE_SESSION_TTL" default:"0s"`
	SQLitePath              string        `envconfig:"CINECART_STORAGE_SQLITE_PATH" default:"cinecart.db"`
	RecoverCorruptFavorites bool          `envconfig:"CINECART_RECOVER_CORRUPT_FAVORITES" default:"false"`
}

func (s StorageConfig) NormalizedDriver() string {
	driver := strings.ToLower(strings.TrimSpace(s.Driver))
	if driver == "" {
		return StorageDriverMemory
	}
	return driver
}

type DBConfig struct {
	DSN         string `envconfig:"CINECART_DB_DSN"`
	AutoMigrate bool   `envconfig:"CINECART_DB_AUTO_MIGRATE" default:"false"`

	MaxOpenConns    int           `envconfig:"CINECART_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"CINECART_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"CINECART_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"CINECART_DB_CONN_MAX_IDLE_TIME" default:"10m"`
	SlowQuery       time.Duration `envconfig:"CINECART_DB_SLOW_QUERY" default:"200ms"`
}

type RedisConfig struct {
	URL          string        `envconfig:"CINECART_REDIS_URL"`
	Address      string        `envconfig:"CINECART_REDIS_ADDR"`
	Password     string        `envconfig:"CINECART_REDIS_PASSWORD"`
	DB           int           `envconfig:"CINECART_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"CINECART_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"CINECART_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"CINECART_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"CINECART_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"CINECART_REDIS_WRITE_TIMEOUT" default:"5s"`
	KeyPrefix    string        `envconfig:"CINECART_REDIS_KEY_PREFIX" default:"cc"`
}

// Enabled reports whether a redis connection was configured at all.
func (r RedisConfig) Enabled() bool {
	return r.URL != "" || r.Address != ""
}

type TMDBConfig struct {
	APIKey       string        `envconfig:"CINECART_TMDB_API_KEY" required:"true"`
	BaseURL      string        `envconfig:"CINECART_TMDB_BASE_URL" default:"https://api.themoviedb.org/3"`
	ImageBaseURL string        `envconfig:"CINECART_TMDB_IMAGE_BASE_URL" default:"https://image.tmdb.org/t/p"`
	Language     string        `envconfig:"CINECART_TMDB_LANGUAGE" default:"pt-BR"`
	Timeout      time.Duration `envconfig:"CINECART_TMDB_TIMEOUT" default:"10s"`
}

type ViaCEPConfig struct {
	BaseURL string        `envconfig:"CINECART_VIACEP_BASE_URL" default:"https://viacep.com.br/ws"`
	Timeout time.Duration `envconfig:"CINECART_VIACEP_TIMEOUT" default:"10s"`
}

type LookupRateLimitConfig struct {
	Window time.Duration `envconfig:"CINECART_LOOKUP_RATE_LIMIT_WINDOW" default:"1m"`
	Limit  int           `envconfig:"CINECART_LOOKUP_RATE_LIMIT" default:"30"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"CINECART_CORS_ALLOWED_ORIGINS" default:"http://localhost:5173,http://localhost:3000"`
}
