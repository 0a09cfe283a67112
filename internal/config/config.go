package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
)

var Module = fx.Module("config",
	fx.Provide(Load),
	fx.Provide(NewReportingConfigHolder),
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	HTTPAddr    string

	Observability ObservabilityConfig

	DBType            string
	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBSSLMode         string
	DBPath            string
	DBMaxIdleConn     int
	DBMaxOpenConn     int
	DBConnMaxLifetime int
	DBConnMaxIdleTime int

	Redis RedisConfig

	RateLimit RateLimitConfig

	SeedDefaultAccount bool
	BusinessName       string
	DefaultCurrency    string
	ReportCacheTTLSec  int
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	// EventsChannel is the pub/sub channel used to fan events out across instances.
	EventsChannel string
}

// Enabled reports whether a redis address was configured.
func (c RedisConfig) Enabled() bool {
	return strings.TrimSpace(c.Addr) != ""
}

// ObservabilityConfig carries the log, trace and query logging knobs.
type ObservabilityConfig struct {
	LogLevel          string
	LogFormat         string
	SQLLogLevel       string
	SlowQueryMillis   int
	OtelEnabled       bool
	OtelEndpoint      string
	OtelProtocol      string
	OtelSamplingRatio float64
}

type RateLimitConfig struct {
	Enabled       bool
	WriteRate     float64
	WriteBurst    int
	LockTTLMillis int
}

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		AppName:     getenv("APP_SERVICE", "bizledger"),
		AppVersion:  getenv("APP_VERSION", "0.1.0"),
		Environment: getenv("ENVIRONMENT", "development"),
		HTTPAddr:    getenv("HTTP_ADDR", ":8080"),

		Observability: ObservabilityConfig{
			LogLevel:          strings.ToLower(getenv("LOG_LEVEL", "info")),
			LogFormat:         strings.ToLower(getenv("LOG_FORMAT", "json")),
			SQLLogLevel:       strings.ToLower(getenv("SQL_LOG_LEVEL", "warn")),
			SlowQueryMillis:   getenvInt("SQL_SLOW_QUERY_MS", 200),
			OtelEnabled:       getenvBool("OTEL_ENABLED", false),
			OtelEndpoint:      getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			OtelProtocol:      strings.ToLower(getenv("OTEL_EXPORTER_OTLP_PROTOCOL", "grpc")),
			OtelSamplingRatio: getenvFloat("OTEL_SAMPLING_RATIO", 0.1),
		},

		DBType:            strings.ToLower(getenv("DATABASE_TYPE", "postgres")),
		DBHost:            getenv("DATABASE_HOST", "localhost"),
		DBPort:            getenv("DATABASE_PORT", "5432"),
		DBName:            getenv("DATABASE_NAME", "bizledger"),
		DBUser:            getenv("DATABASE_USER", "postgres"),
		DBPassword:        getenv("DATABASE_PASSWORD", "postgres"),
		DBSSLMode:         getenv("DATABASE_SSLMODE", "disable"),
		DBPath:            getenv("DATABASE_PATH", "bizledger.db"),
		DBMaxIdleConn:     getenvInt("DATABASE_MAX_IDLE_CONN", 10),
		DBMaxOpenConn:     getenvInt("DATABASE_MAX_OPEN_CONN", 50),
		DBConnMaxLifetime: getenvInt("DATABASE_CONN_MAX_LIFETIME", 300),
		DBConnMaxIdleTime: getenvInt("DATABASE_CONN_MAX_IDLE_TIME", 60),

		Redis: RedisConfig{
			Addr:          strings.TrimSpace(getenv("REDIS_ADDR", "")),
			Password:      getenv("REDIS_PASSWORD", ""),
			DB:            getenvInt("REDIS_DB", 0),
			EventsChannel: getenv("EVENTS_REDIS_CHANNEL", "bizledger:events"),
		},
		RateLimit: RateLimitConfig{
			Enabled:       getenvBool("RATE_LIMIT_ENABLED", true),
			WriteRate:     getenvFloat("RATE_LIMIT_WRITE_RATE", 20),
			WriteBurst:    getenvInt("RATE_LIMIT_WRITE_BURST", 40),
			LockTTLMillis: getenvInt("CHECKOUT_LOCK_TTL_MS", 10000),
		},

		SeedDefaultAccount: getenvBool("SEED_DEFAULT_ACCOUNT", true),
		BusinessName:       getenv("BUSINESS_NAME", "Bizledger"),
		DefaultCurrency:    strings.ToUpper(getenv("DEFAULT_CURRENCY", "ETB")),
		ReportCacheTTLSec:  getenvInt("REPORT_CACHE_TTL_SECONDS", 30),
	}

	return cfg
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if value == "" {
		return def
	}
	switch value {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}

func getenvInt(key string, def int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}

func getenvFloat(key string, def float64) float64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return def
	}
	return parsed
}
