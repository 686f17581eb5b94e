package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	Likes         LikesConfig
	Orders        OrdersConfig
	Outbox        OutboxConfig
	Sentry        SentryConfig
	CORS          CORSConfig
	FeatureFlags  FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.FeatureFlags.UseSQLite {
		if cfg.DB.DSN == "" {
			cfg.DB.DSN = "file:sweetorder.db?cache=shared"
		}
		cfg.DB.Driver = "sqlite"
		return &cfg, nil
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"SWEETORDER_APP_ENV" required:"true"`
	Port         string `envconfig:"SWEETORDER_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"SWEETORDER_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SWEETORDER_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"SWEETORDER_DB_DSN"`
	Driver string `envconfig:"SWEETORDER_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"SWEETORDER_DB_HOST"`
	LegacyPort     int    `envconfig:"SWEETORDER_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"SWEETORDER_DB_USER"`
	LegacyPassword string `envconfig:"SWEETORDER_DB_PASSWORD"`
	LegacyName     string `envconfig:"SWEETORDER_DB_NAME"`
	LegacySSLMode  string `envconfig:"SWEETORDER_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"SWEETORDER_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SWEETORDER_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SWEETORDER_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SWEETORDER_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// IsSQLite reports whether the configured driver targets the embedded sqlite engine.
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(db.Driver, "sqlite")
}

type RedisConfig struct {
	URL          string        `envconfig:"SWEETORDER_REDIS_URL"`
	Address      string        `envconfig:"SWEETORDER_REDIS_ADDR"`
	Password     string        `envconfig:"SWEETORDER_REDIS_PASSWORD"`
	DB           int           `envconfig:"SWEETORDER_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SWEETORDER_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SWEETORDER_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SWEETORDER_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SWEETORDER_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SWEETORDER_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Enabled reports whether any redis endpoint was configured.
func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != "" || strings.TrimSpace(r.Address) != ""
}

type JWTConfig struct {
	Secret            string `envconfig:"SWEETORDER_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"SWEETORDER_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"SWEETORDER_JWT_EXPIRATION_MINUTES" required:"true"`
}

// AccessTokenTTL returns the access token lifetime.
func (j JWTConfig) AccessTokenTTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"SWEETORDER_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"SWEETORDER_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"SWEETORDER_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"SWEETORDER_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"SWEETORDER_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"SWEETORDER_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"SWEETORDER_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"SWEETORDER_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"SWEETORDER_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"SWEETORDER_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"SWEETORDER_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

// LikesConfig bounds the like/unlike transactions.
type LikesConfig struct {
	TxMaxWait time.Duration `envconfig:"SWEETORDER_LIKE_TX_MAX_WAIT" default:"5s"`
	TxTimeout time.Duration `envconfig:"SWEETORDER_LIKE_TX_TIMEOUT" default:"10s"`
}

type OrdersConfig struct {
	NumberPrefix      string        `envconfig:"SWEETORDER_ORDER_NUMBER_PREFIX" default:"ORD"`
	UseRedisSequence  bool          `envconfig:"SWEETORDER_ORDER_REDIS_SEQUENCE" default:"true"`
	SequenceTTL       time.Duration `envconfig:"SWEETORDER_ORDER_SEQUENCE_TTL" default:"48h"`
	IdempotencyTTL    time.Duration `envconfig:"SWEETORDER_ORDER_IDEMPOTENCY_TTL" default:"24h"`
	TxTimeout         time.Duration `envconfig:"SWEETORDER_ORDER_TX_TIMEOUT" default:"10s"`
	NumberMaxAttempts int           `envconfig:"SWEETORDER_ORDER_NUMBER_MAX_ATTEMPTS" default:"3"`
}

type OutboxConfig struct {
	BatchSize      int    `envconfig:"SWEETORDER_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int    `envconfig:"SWEETORDER_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int    `envconfig:"SWEETORDER_OUTBOX_MAX_ATTEMPTS" default:"10"`
	Channel        string `envconfig:"SWEETORDER_OUTBOX_CHANNEL" default:"sweetorder.events"`
	MetricsAddr    string `envconfig:"SWEETORDER_OUTBOX_METRICS_ADDR" default:":9091"`
}

type SentryConfig struct {
	DSN              string  `envconfig:"SWEETORDER_SENTRY_DSN"`
	Environment      string  `envconfig:"SWEETORDER_SENTRY_ENVIRONMENT"`
	TracesSampleRate float64 `envconfig:"SWEETORDER_SENTRY_TRACES_SAMPLE_RATE" default:"0"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"SWEETORDER_CORS_ALLOWED_ORIGINS" default:"*"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"SWEETORDER_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"SWEETORDER_AUTO_MIGRATE" default:"false"`
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
