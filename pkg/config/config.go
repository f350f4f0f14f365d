package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	PIN          PINConfig
	LoginLimit   LoginRateLimitConfig
	Cache        CacheConfig
	Assignment   AssignmentConfig
	DistrictSync DistrictSyncConfig
	FeatureFlags FeatureFlagsConfig
	Cron         CronConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"AQUA_APP_ENV" required:"true"`
	Port         string `envconfig:"AQUA_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"AQUA_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"AQUA_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"AQUA_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"AQUA_DB_DSN"`
	Driver string `envconfig:"AQUA_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"AQUA_DB_HOST"`
	LegacyPort     int    `envconfig:"AQUA_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"AQUA_DB_USER"`
	LegacyPassword string `envconfig:"AQUA_DB_PASSWORD"`
	LegacyName     string `envconfig:"AQUA_DB_NAME"`
	LegacySSLMode  string `envconfig:"AQUA_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"AQUA_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"AQUA_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"AQUA_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"AQUA_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"AQUA_REDIS_URL" required:"true"`
	Address      string        `envconfig:"AQUA_REDIS_ADDR"`
	Password     string        `envconfig:"AQUA_REDIS_PASSWORD"`
	DB           int           `envconfig:"AQUA_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"AQUA_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"AQUA_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"AQUA_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"AQUA_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"AQUA_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"AQUA_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"AQUA_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"AQUA_JWT_EXPIRATION_MINUTES" default:"720"`
}

type PINConfig struct {
	ArgonMemoryKB    int `envconfig:"AQUA_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"AQUA_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"AQUA_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"AQUA_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"AQUA_ARGON_KEY_LEN" default:"32"`
}

type LoginRateLimitConfig struct {
	Window     time.Duration `envconfig:"AQUA_LOGIN_RATE_LIMIT_WINDOW" default:"1m"`
	PhoneLimit int           `envconfig:"AQUA_LOGIN_RATE_LIMIT_PHONE_LIMIT" default:"5"`
	IPLimit    int           `envconfig:"AQUA_LOGIN_RATE_LIMIT_IP_LIMIT" default:"20"`
}

type CacheConfig struct {
	DefaultTTL    time.Duration `envconfig:"AQUA_CACHE_DEFAULT_TTL" default:"30s"`
	SweepInterval time.Duration `envconfig:"AQUA_CACHE_SWEEP_INTERVAL" default:"1m"`
}

type AssignmentConfig struct {
	FallbackVehicle string `envconfig:"AQUA_ASSIGNMENT_FALLBACK_VEHICLE" default:"Машина 5"`
}

type DistrictSyncConfig struct {
	WebhookURL     string        `envconfig:"AQUA_DISTRICT_SYNC_WEBHOOK_URL"`
	RequestTimeout time.Duration `envconfig:"AQUA_DISTRICT_SYNC_TIMEOUT" default:"10s"`
	MaxRetries     int           `envconfig:"AQUA_DISTRICT_SYNC_MAX_RETRIES" default:"3"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"AQUA_AUTO_MIGRATE" default:"false"`
}

type CronConfig struct {
	Interval time.Duration `envconfig:"AQUA_CRON_INTERVAL" default:"10m"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
