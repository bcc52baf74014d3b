package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "OUTSTOCKED"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv = "OUTSTOCKED_APP_ENV"
	EnvDBDSN  = "OUTSTOCKED_DB_DSN"
	EnvDBHost = "OUTSTOCKED_DB_HOST"
	EnvDBUser = "OUTSTOCKED_DB_USER"
	EnvDBName = "OUTSTOCKED_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Password     PasswordConfig
	FeatureFlags FeatureFlagsConfig
	Invites      InvitesConfig
	Ledger       LedgerConfig
	Reconciler   ReconcilerConfig
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
	Env          string `envconfig:"OUTSTOCKED_APP_ENV" required:"true"`
	Port         string `envconfig:"OUTSTOCKED_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"OUTSTOCKED_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"OUTSTOCKED_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"OUTSTOCKED_DB_DSN"`
	Driver string `envconfig:"OUTSTOCKED_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"OUTSTOCKED_DB_HOST"`
	LegacyPort     int    `envconfig:"OUTSTOCKED_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"OUTSTOCKED_DB_USER"`
	LegacyPassword string `envconfig:"OUTSTOCKED_DB_PASSWORD"`
	LegacyName     string `envconfig:"OUTSTOCKED_DB_NAME"`
	LegacySSLMode  string `envconfig:"OUTSTOCKED_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"OUTSTOCKED_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"OUTSTOCKED_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"OUTSTOCKED_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"OUTSTOCKED_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"OUTSTOCKED_REDIS_URL" required:"true"`
	Address      string        `envconfig:"OUTSTOCKED_REDIS_ADDR"`
	Password     string        `envconfig:"OUTSTOCKED_REDIS_PASSWORD"`
	DB           int           `envconfig:"OUTSTOCKED_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"OUTSTOCKED_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"OUTSTOCKED_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"OUTSTOCKED_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"OUTSTOCKED_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"OUTSTOCKED_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"OUTSTOCKED_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"OUTSTOCKED_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"OUTSTOCKED_JWT_EXPIRATION_MINUTES" required:"true"`
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"OUTSTOCKED_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"OUTSTOCKED_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"OUTSTOCKED_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"OUTSTOCKED_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"OUTSTOCKED_ARGON_KEY_LEN" default:"32"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"OUTSTOCKED_AUTO_MIGRATE" default:"false"`
}

type InvitesConfig struct {
	MaxBatch        int `envconfig:"OUTSTOCKED_INVITES_MAX_BATCH" default:"10"`
	TempPasswordLen int `envconfig:"OUTSTOCKED_INVITES_TEMP_PASSWORD_LEN" default:"16"`
}

type LedgerConfig struct {
	// MaxConflictRetries bounds how many times a quantity compare-and-set is
	// retried before the adjustment surfaces a conflict to the caller.
	MaxConflictRetries int `envconfig:"OUTSTOCKED_LEDGER_MAX_CONFLICT_RETRIES" default:"3"`
}

type ReconcilerConfig struct {
	BatchSize      int           `envconfig:"OUTSTOCKED_RECONCILER_BATCH_SIZE" default:"50"`
	PollInterval   time.Duration `envconfig:"OUTSTOCKED_RECONCILER_POLL_INTERVAL" default:"30s"`
	MaxAttempts    int           `envconfig:"OUTSTOCKED_RECONCILER_MAX_ATTEMPTS" default:"10"`
	MetricsAddress string        `envconfig:"OUTSTOCKED_RECONCILER_METRICS_ADDR" default:":9091"`
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
