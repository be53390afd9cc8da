package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// MinSecretLength is the shortest HMAC secret the token service accepts.
const MinSecretLength = 32

// Store backends selectable through USER_STORE.
const (
	StoreMemory   = "memory"
	StoreMongo    = "mongo"
	StorePostgres = "postgres"
)

// Server captures process level configuration.
type Server struct {
	Addr        string `env:"PRINTSETTINGS_ADDR" envDefault:":8080"`
	Environment string `env:"PRINTSETTINGS_ENV" envDefault:"development"`

	// TrustProxyHeaders takes the client IP from X-Forwarded-For / X-Real-IP.
	// Enable only behind a proxy that overwrites them.
	TrustProxyHeaders bool `env:"TRUST_PROXY_HEADERS" envDefault:"false"`

	Log      LogConfig
	Auth     AuthConfig
	Store    StoreConfig
	Mongo    MongoConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
}

type LogConfig struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

// AuthConfig configures token issuance and the field guard.
type AuthConfig struct {
	JWTSecret       string        `env:"JWT_SECRET"`
	Issuer          string        `env:"JWT_ISSUER" envDefault:"printsettings"`
	Audience        string        `env:"JWT_AUDIENCE" envDefault:"printsettings-clients"`
	AccessTokenTTL  time.Duration `env:"JWT_ACCESS_TOKEN_TTL" envDefault:"15m"`
	RefreshTokenTTL time.Duration `env:"JWT_REFRESH_TOKEN_TTL" envDefault:"168h"`
	CookieSecure    bool          `env:"COOKIE_SECURE" envDefault:"true"`
	// PublicOperations lists root fields that bypass the field guard.
	PublicOperations []string `env:"PUBLIC_OPERATIONS" envSeparator:"," envDefault:"addUser,login,refreshToken"`
}

type StoreConfig struct {
	Backend string `env:"USER_STORE" envDefault:"memory"`
}

type MongoConfig struct {
	URI            string `env:"MONGO_URI" envDefault:"mongodb://localhost:27017"`
	Database       string `env:"MONGO_DATABASE" envDefault:"printsettings"`
	UserCollection string `env:"MONGO_USER_COLLECTION" envDefault:"Users"`
}

type PostgresConfig struct {
	DSN          string        `env:"POSTGRES_DSN"`
	MaxOpenConns int           `env:"POSTGRES_MAX_OPEN_CONNS" envDefault:"10"`
	MaxIdleConns int           `env:"POSTGRES_MAX_IDLE_CONNS" envDefault:"5"`
	ConnMaxLife  time.Duration `env:"POSTGRES_CONN_MAX_LIFETIME" envDefault:"30m"`
}

// RedisConfig configures the refresh-token revocation list. An empty URL keeps
// revocations in memory.
type RedisConfig struct {
	URL          string        `env:"REDIS_URL"`
	PoolSize     int           `env:"REDIS_POOL_SIZE" envDefault:"10"`
	MinIdleConns int           `env:"REDIS_MIN_IDLE_CONNS" envDefault:"2"`
	DialTimeout  time.Duration `env:"REDIS_DIAL_TIMEOUT" envDefault:"5s"`
	ReadTimeout  time.Duration `env:"REDIS_READ_TIMEOUT" envDefault:"3s"`
	WriteTimeout time.Duration `env:"REDIS_WRITE_TIMEOUT" envDefault:"3s"`
}

// KafkaConfig configures audit publishing. No brokers means audit events stay
// in process memory.
type KafkaConfig struct {
	Brokers    []string `env:"KAFKA_BROKERS" envSeparator:","`
	AuditTopic string   `env:"KAFKA_AUDIT_TOPIC" envDefault:"printsettings.audit"`
}

// FromEnv parses and validates a Server config from environment variables.
func FromEnv() (Server, error) {
	var cfg Server
	if err := env.Parse(&cfg); err != nil {
		return Server{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Server{}, err
	}
	return cfg, nil
}

// IsProduction reports whether the process runs with production defaults.
func (s Server) IsProduction() bool {
	return s.Environment == "production"
}

// Validate checks invariants env tags cannot express.
func (s Server) Validate() error {
	var errs []error
	if len(s.Auth.JWTSecret) < MinSecretLength {
		errs = append(errs, fmt.Errorf("JWT_SECRET must be at least %d bytes", MinSecretLength))
	}
	if s.Auth.AccessTokenTTL <= 0 {
		errs = append(errs, errors.New("JWT_ACCESS_TOKEN_TTL must be positive"))
	}
	if s.Auth.RefreshTokenTTL <= 0 {
		errs = append(errs, errors.New("JWT_REFRESH_TOKEN_TTL must be positive"))
	}
	switch s.Store.Backend {
	case StoreMemory, StoreMongo:
	case StorePostgres:
		if s.Postgres.DSN == "" {
			errs = append(errs, errors.New("POSTGRES_DSN is required when USER_STORE=postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown USER_STORE %q", s.Store.Backend))
	}
	return errors.Join(errs...)
}
