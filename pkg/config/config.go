package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	// EnvPrefix scopes every environment variable read by envconfig.
	EnvPrefix = "shopflow"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "SHOPFLOW_DB_DSN"
	EnvDBHost = "SHOPFLOW_DB_HOST"
	EnvDBUser = "SHOPFLOW_DB_USER"
	EnvDBName = "SHOPFLOW_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	Pricing       PricingConfig
	Catalog       CatalogConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	GCP           GCPConfig
	PubSub        PubSubConfig
	Outbox        OutboxConfig
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
	Env          string `envconfig:"SHOPFLOW_APP_ENV" required:"true"`
	Port         string `envconfig:"SHOPFLOW_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"SHOPFLOW_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SHOPFLOW_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"SHOPFLOW_DB_DSN"`
	Driver string `envconfig:"SHOPFLOW_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"SHOPFLOW_DB_HOST"`
	LegacyPort     int    `envconfig:"SHOPFLOW_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"SHOPFLOW_DB_USER"`
	LegacyPassword string `envconfig:"SHOPFLOW_DB_PASSWORD"`
	LegacyName     string `envconfig:"SHOPFLOW_DB_NAME"`
	LegacySSLMode  string `envconfig:"SHOPFLOW_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"SHOPFLOW_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SHOPFLOW_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SHOPFLOW_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SHOPFLOW_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"SHOPFLOW_REDIS_URL"`
	Address      string        `envconfig:"SHOPFLOW_REDIS_ADDR"`
	Password     string        `envconfig:"SHOPFLOW_REDIS_PASSWORD"`
	DB           int           `envconfig:"SHOPFLOW_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SHOPFLOW_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SHOPFLOW_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SHOPFLOW_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SHOPFLOW_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SHOPFLOW_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"SHOPFLOW_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"SHOPFLOW_JWT_ISSUER" default:"shopflow"`
	ExpirationMinutes      int    `envconfig:"SHOPFLOW_JWT_EXPIRATION_MINUTES" default:"15"`
	RefreshTokenTTLMinutes int    `envconfig:"SHOPFLOW_REFRESH_TOKEN_TTL_MINUTES" default:"10080"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"SHOPFLOW_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"SHOPFLOW_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"SHOPFLOW_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"SHOPFLOW_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"SHOPFLOW_ARGON_KEY_LEN" default:"32"`
}

// PricingConfig holds the checkout pricing constants.
type PricingConfig struct {
	TaxRate                    float64 `envconfig:"SHOPFLOW_TAX_RATE" default:"0.10"`
	FreeShippingThresholdCents int64   `envconfig:"SHOPFLOW_FREE_SHIPPING_THRESHOLD_CENTS" default:"10000"`
	ShippingCostCents          int64   `envconfig:"SHOPFLOW_SHIPPING_COST_CENTS" default:"1000"`
}

// CatalogConfig controls product listing defaults.
type CatalogConfig struct {
	DefaultPageSize int `envconfig:"SHOPFLOW_CATALOG_DEFAULT_PAGE_SIZE" default:"12"`
	MaxPageSize     int `envconfig:"SHOPFLOW_CATALOG_MAX_PAGE_SIZE" default:"100"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"SHOPFLOW_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"SHOPFLOW_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"SHOPFLOW_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"SHOPFLOW_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"SHOPFLOW_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"SHOPFLOW_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"SHOPFLOW_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"SHOPFLOW_AUTO_MIGRATE" default:"false"`
}

type GCPConfig struct {
	ProjectID string `envconfig:"SHOPFLOW_GCP_PROJECT_ID"`
}

type PubSubConfig struct {
	OrdersTopic string `envconfig:"SHOPFLOW_PUBSUB_ORDERS_TOPIC" default:"shopflow-order-events"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"SHOPFLOW_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"SHOPFLOW_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"SHOPFLOW_OUTBOX_MAX_ATTEMPTS" default:"10"`
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
