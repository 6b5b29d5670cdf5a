package config

import (
	"fmt"
	"net"
	"net/url"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"

	"libres/shared/constant"
)

// Config is read once from the environment (and .env when present). Nested structs map to
// underscore joined prefixes, so App.RateLimiter.Enable is APP_RATE_LIMITER_ENABLE.
type Config struct {
	Server   Server   `envconfig:"SERVER"`
	App      App      `envconfig:"APP"`
	Cache    Cache    `envconfig:"CACHE"`
	JWT      JWT      `envconfig:"JWT"`
	DB       DB       `envconfig:"DB"`
	Kafka    Kafka    `envconfig:"KAFKA"`
	External External `envconfig:"EXTERNAL"`
}

type Server struct {
	Env      string   `envconfig:"ENV"       default:"development"`
	LogLevel string   `envconfig:"LOG_LEVEL"`
	Host     string   `envconfig:"HOST"`
	Port     string   `envconfig:"PORT"      default:"8080"`
	Shutdown Shutdown `envconfig:"SHUTDOWN"`
}

// Shutdown splits graceful shutdown in two: during the grace period /health reports 503 so
// load balancers drain traffic, then in-flight requests get the cleanup period to finish.
type Shutdown struct {
	CleanupPeriodSeconds int64 `envconfig:"CLEANUP_PERIOD_SECONDS" default:"10"`
	GracePeriodSeconds   int64 `envconfig:"GRACE_PERIOD_SECONDS"   default:"5"`
}

type App struct {
	Name        string           `envconfig:"APP_NAME" default:"libres"`
	Timezone    string           `envconfig:"TIMEZONE" default:"UTC"`
	APIKey      string           `envconfig:"API_KEY"`
	CORS        CORS             `envconfig:"CORS"`
	RateLimiter RateLimiter      `envconfig:"RATE_LIMITER"`
	Reservation ReservationRules `envconfig:"RESERVATION"`
}

type CORS struct {
	Enable           bool     `envconfig:"ENABLE"`
	AllowCredentials bool     `envconfig:"ALLOW_CREDENTIALS"`
	AllowedHeaders   []string `envconfig:"ALLOWED_HEADERS"`
	AllowedMethods   []string `envconfig:"ALLOWED_METHODS"`
	AllowedOrigins   []string `envconfig:"ALLOWED_ORIGINS"`
	MaxAgeSeconds    int      `envconfig:"MAX_AGE_SECONDS"`
}

type RateLimiter struct {
	Enable        bool `envconfig:"ENABLE"`
	MaxRequests   int  `envconfig:"MAX_REQUESTS"   default:"100"`
	WindowSeconds int  `envconfig:"WINDOW_SECONDS" default:"60"`
}

type Cache struct {
	Redis struct {
		Primary Redis `envconfig:"PRIMARY"`
	} `envconfig:"REDIS"`
	// TTL is in seconds.
	TTL int `envconfig:"TTL" default:"300"`
}

type Redis struct {
	Host     string `envconfig:"HOST"`
	Port     string `envconfig:"PORT" default:"6379"`
	Password string `envconfig:"PASSWORD"`
	DB       int    `envconfig:"DB"`
}

type JWT struct {
	AccessSecret     string `envconfig:"ACCESS_SECRET"`
	RefreshSecret    string `envconfig:"REFRESH_SECRET"`
	AccessExpireMin  int    `envconfig:"ACCESS_EXPIRE_MIN"  default:"15"`
	RefreshExpireMin int    `envconfig:"REFRESH_EXPIRE_MIN" default:"10080"`
}

type DB struct {
	Postgres Postgres `envconfig:"POSTGRES"`
}

// Postgres keeps separate read and write endpoints; both may point at the same server.
type Postgres struct {
	MaxRetry       int          `envconfig:"MAX_RETRY"       default:"3"`
	RetryWaitTime  int          `envconfig:"RETRY_WAIT_TIME" default:"2"`
	MigrationTable string       `envconfig:"MIGRATION_TABLE" default:"schema_migrations"`
	AutoMigrate    bool         `envconfig:"AUTO_MIGRATE"`
	Prefix         string       `envconfig:"PREFIX"`
	Read           PostgresNode `envconfig:"READ"`
	Write          PostgresNode `envconfig:"WRITE"`
}

// URL renders node as a postgres:// URL, applying the database name prefix. extra is merged
// into the query string after sslmode.
func (p Postgres) URL(node PostgresNode, extra url.Values) string {
	query := url.Values{}
	query.Set("sslmode", node.SSLMode)

	for key, values := range extra {
		query[key] = values
	}

	dsn := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(node.Username, node.Password),
		Host:     net.JoinHostPort(node.Host, node.Port),
		Path:     p.Prefix + node.Name,
		RawQuery: query.Encode(),
	}

	return dsn.String()
}

type PostgresNode struct {
	Host     string `envconfig:"HOST"`
	Port     string `envconfig:"PORT"     default:"5432"`
	Username string `envconfig:"USER"`
	Password string `envconfig:"PASSWORD"`
	Name     string `envconfig:"NAME"`
	Timezone string `envconfig:"TIMEZONE" default:"UTC"`
	SSLMode  string `envconfig:"SSL_MODE" default:"disable"`
}

type Kafka struct {
	Enable        bool     `envconfig:"ENABLE"`
	Brokers       []string `envconfig:"BROKERS"`
	ConsumerGroup string   `envconfig:"CONSUMER_GROUP" default:"libres-notifier"`
	SASL          struct {
		Username string `envconfig:"USERNAME"`
		Password string `envconfig:"PASSWORD"`
	} `envconfig:"SASL"`
	Topic struct {
		Reservation string `envconfig:"RESERVATION" default:"libres.reservations"`
	} `envconfig:"TOPIC"`
}

type External struct {
	Otel struct {
		Endpoint string `envconfig:"ENDPOINT"`
	} `envconfig:"OTEL"`
	S3 S3 `envconfig:"S3"`
}

type S3 struct {
	APIEndpoint     string `envconfig:"API_ENDPOINT"`
	AccessKeyID     string `envconfig:"ACCESS_KEY_ID"`
	SecretAccessKey string `envconfig:"SECRET_ACCESS_KEY"`
	BucketName      string `envconfig:"BUCKET_NAME"`
	PublicDomain    string `envconfig:"PUBLIC_DOMAIN"`
}

// ReservationRules holds the admission limits of the reservation engine. Zero values mean
// "use the default".
type ReservationRules struct {
	MaxActivePerUser     int `envconfig:"MAX_ACTIVE_PER_USER"`
	MinDurationMinutes   int `envconfig:"MIN_DURATION_MINUTES"`
	MaxDurationHours     int `envconfig:"MAX_DURATION_HOURS"`
	MinCancellationHours int `envconfig:"MIN_CANCELLATION_HOURS"`
}

func (r ReservationRules) WithDefaults() ReservationRules {
	orDefault := func(v *int, def int) {
		if *v <= 0 {
			*v = def
		}
	}

	orDefault(&r.MaxActivePerUser, constant.DefaultMaxActiveReservationsPerUser)
	orDefault(&r.MinDurationMinutes, constant.DefaultMinDurationMinutes)
	orDefault(&r.MaxDurationHours, constant.DefaultMaxDurationHours)
	orDefault(&r.MinCancellationHours, constant.DefaultMinCancellationHours)

	return r
}

func (r ReservationRules) MinDuration() time.Duration {
	return time.Duration(r.MinDurationMinutes) * time.Minute
}

func (r ReservationRules) MaxDuration() time.Duration {
	return time.Duration(r.MaxDurationHours) * time.Hour
}

func (r ReservationRules) MinCancellationLead() time.Duration {
	return time.Duration(r.MinCancellationHours) * time.Hour
}

var (
	conf    Config
	once    sync.Once
	loadErr error
)

// Load reads the environment into a fresh Config without touching the process wide one.
func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}

	return &cfg, nil
}

// Init loads .env (if any) and the environment exactly once.
func Init() error {
	once.Do(func() {
		if err := godotenv.Load(".env"); err != nil {
			log.Warn().Err(err).Msg("Could not load .env file, continuing with existing environment variables")
		}

		cfg, err := Load()
		if err != nil {
			loadErr = err

			return
		}

		conf = *cfg

		log.Info().Str("env", conf.Server.Env).Msg("Service configuration initialized successfully")
	})

	return loadErr
}

// Get returns the process wide Config, exiting when the environment cannot be parsed.
func Get() *Config {
	if err := Init(); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize configuration")
	}

	return &conf
}
