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
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	FeatureFlags FeatureFlagsConfig
	Stripe       StripeConfig
	Checkout     CheckoutConfig
	Realtime     RealtimeConfig
	Sendgrid     SendgridConfig
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
	Env          string `envconfig:"BIDHOUSE_APP_ENV" required:"true"`
	Port         string `envconfig:"BIDHOUSE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"BIDHOUSE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"BIDHOUSE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"BIDHOUSE_DB_DSN"`
	Driver string `envconfig:"BIDHOUSE_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"BIDHOUSE_DB_HOST"`
	LegacyPort     int    `envconfig:"BIDHOUSE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"BIDHOUSE_DB_USER"`
	LegacyPassword string `envconfig:"BIDHOUSE_DB_PASSWORD"`
	LegacyName     string `envconfig:"BIDHOUSE_DB_NAME"`
	LegacySSLMode  string `envconfig:"BIDHOUSE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"BIDHOUSE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"BIDHOUSE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"BIDHOUSE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"BIDHOUSE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"BIDHOUSE_REDIS_URL" required:"true"`
	Address      string        `envconfig:"BIDHOUSE_REDIS_ADDR"`
	Password     string        `envconfig:"BIDHOUSE_REDIS_PASSWORD"`
	DB           int           `envconfig:"BIDHOUSE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"BIDHOUSE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"BIDHOUSE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"BIDHOUSE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"BIDHOUSE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"BIDHOUSE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"BIDHOUSE_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"BIDHOUSE_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"BIDHOUSE_JWT_EXPIRATION_MINUTES" required:"true"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"BIDHOUSE_AUTO_MIGRATE" default:"false"`
}

type StripeConfig struct {
	APIKey string `envconfig:"BIDHOUSE_STRIPE_API_KEY"`
	Secret string `envconfig:"BIDHOUSE_STRIPE_SECRET"`
	Env    string `envconfig:"BIDHOUSE_STRIPE_ENV" default:"test"`

	WebhookIdempotencyTTL time.Duration `envconfig:"BIDHOUSE_STRIPE_WEBHOOK_IDEMPOTENCY_TTL" default:"720h"`
}

type CheckoutConfig struct {
	SuccessURL string `envconfig:"BIDHOUSE_CHECKOUT_SUCCESS_URL" required:"true"`
	CancelURL  string `envconfig:"BIDHOUSE_CHECKOUT_CANCEL_URL" required:"true"`
}

type RealtimeConfig struct {
	SubscriberBuffer int `envconfig:"BIDHOUSE_REALTIME_SUBSCRIBER_BUFFER" default:"16"`
}

type SendgridConfig struct {
	APIKey      string `envconfig:"BIDHOUSE_SENDGRID_API_KEY"`
	DefaultFrom string `envconfig:"BIDHOUSE_SENDGRID_FROM_EMAIL"`
}

// Environment returns the normalized Stripe environment (test/live).
func (s StripeConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(s.Env))
	if env == "" {
		return "test"
	}
	return env
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
