package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	// EnvPrefix is the envconfig prefix shared by every binary.
	EnvPrefix = "certifex"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Verify       VerifyConfig
	Issuance     IssuanceConfig
	FeatureFlags FeatureFlagsConfig
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
	Env          string   `envconfig:"CERTIFEX_APP_ENV" required:"true"`
	Port         string   `envconfig:"CERTIFEX_APP_PORT" default:"8080"`
	LogLevel     string   `envconfig:"CERTIFEX_LOG_LEVEL" default:"info"`
	LogWarnStack bool     `envconfig:"CERTIFEX_LOG_WARN_STACK" default:"false"`
	CORSOrigins  []string `envconfig:"CERTIFEX_CORS_ORIGINS" default:"http://localhost:3000"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN string `envconfig:"CERTIFEX_DB_DSN"`

	Host     string `envconfig:"CERTIFEX_DB_HOST"`
	Port     int    `envconfig:"CERTIFEX_DB_PORT" default:"5432"`
	User     string `envconfig:"CERTIFEX_DB_USER"`
	Password string `envconfig:"CERTIFEX_DB_PASSWORD"`
	Name     string `envconfig:"CERTIFEX_DB_NAME"`
	SSLMode  string `envconfig:"CERTIFEX_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"CERTIFEX_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"CERTIFEX_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"CERTIFEX_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"CERTIFEX_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"CERTIFEX_REDIS_URL"`
	Address      string        `envconfig:"CERTIFEX_REDIS_ADDR"`
	Password     string        `envconfig:"CERTIFEX_REDIS_PASSWORD"`
	DB           int           `envconfig:"CERTIFEX_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"CERTIFEX_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"CERTIFEX_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"CERTIFEX_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"CERTIFEX_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"CERTIFEX_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"CERTIFEX_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"CERTIFEX_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"CERTIFEX_JWT_EXPIRATION_MINUTES" default:"60"`
}

// VerifyConfig tunes the public, unauthenticated verification surface.
type VerifyConfig struct {
	// PublicBaseURL is the site prefix baked into verification URLs handed to
	// the QR encoder, e.g. https://courses.example.com.
	PublicBaseURL string        `envconfig:"CERTIFEX_VERIFY_PUBLIC_BASE_URL" required:"true"`
	RateWindow    time.Duration `envconfig:"CERTIFEX_VERIFY_RATE_WINDOW" default:"1m"`
	RateIPLimit   int           `envconfig:"CERTIFEX_VERIFY_RATE_IP_LIMIT" default:"30"`
	RateCodeLimit int           `envconfig:"CERTIFEX_VERIFY_RATE_CODE_LIMIT" default:"10"`
}

// IssuanceConfig tunes code generation and bulk issuance.
type IssuanceConfig struct {
	CodeLength       int `envconfig:"CERTIFEX_ISSUANCE_CODE_LENGTH" default:"10"`
	MaxCodeAttempts  int `envconfig:"CERTIFEX_ISSUANCE_MAX_CODE_ATTEMPTS" default:"5"`
	BatchConcurrency int `envconfig:"CERTIFEX_ISSUANCE_BATCH_CONCURRENCY" default:"4"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"CERTIFEX_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	for name, value := range map[string]string{
		"CERTIFEX_DB_HOST": db.Host,
		"CERTIFEX_DB_USER": db.User,
		"CERTIFEX_DB_NAME": db.Name,
	} {
		if value == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("either CERTIFEX_DB_DSN or %s are required", strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}
	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
