package observability

import (
	"strings"
	"time"

	"github.com/smallbiznis/bizledger/internal/config"
	gormlogger "gorm.io/gorm/logger"
)

// Config is the resolved observability view of the application config.
type Config struct {
	ServiceName string
	Environment string
	Version     string
	Business    string

	LogLevel  string
	LogFormat string

	SQLLogLevel        gormlogger.LogLevel
	SlowQueryThreshold time.Duration

	OtelEnabled          bool
	OtelExporterEndpoint string
	OtelExporterProtocol string
	OtelSamplingRatio    float64
}

func LoadConfig(cfg config.Config) Config {
	obs := cfg.Observability

	serviceName := strings.TrimSpace(cfg.AppName)
	if serviceName == "" {
		serviceName = "bizledger"
	}
	ratio := obs.OtelSamplingRatio
	if ratio < 0 || ratio > 1 {
		ratio = 0.1
	}
	slow := time.Duration(obs.SlowQueryMillis) * time.Millisecond
	if slow < 0 {
		slow = 0
	}

	return Config{
		ServiceName:          serviceName,
		Environment:          strings.TrimSpace(cfg.Environment),
		Version:              strings.TrimSpace(cfg.AppVersion),
		Business:             strings.TrimSpace(cfg.BusinessName),
		LogLevel:             strings.TrimSpace(obs.LogLevel),
		LogFormat:            strings.TrimSpace(obs.LogFormat),
		SQLLogLevel:          parseSQLLogLevel(obs.SQLLogLevel),
		SlowQueryThreshold:   slow,
		OtelEnabled:          obs.OtelEnabled,
		OtelExporterEndpoint: strings.TrimSpace(obs.OtelEndpoint),
		OtelExporterProtocol: strings.TrimSpace(obs.OtelProtocol),
		OtelSamplingRatio:    ratio,
	}
}

// Debug is true for debug logging or any local environment.
func (c Config) Debug() bool {
	if strings.EqualFold(c.LogLevel, "debug") {
		return true
	}
	switch strings.ToLower(c.Environment) {
	case "dev", "development", "local", "test":
		return true
	default:
		return false
	}
}

func parseSQLLogLevel(level string) gormlogger.LogLevel {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "silent", "off":
		return gormlogger.Silent
	case "error":
		return gormlogger.Error
	case "info", "debug":
		return gormlogger.Info
	default:
		return gormlogger.Warn
	}
}
