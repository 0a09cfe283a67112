package logger

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"
)

// GormLoggerConfig configures query logging.
type GormLoggerConfig struct {
	Level         gormlogger.LogLevel
	SlowThreshold time.Duration
}

// GormLogger routes gorm output through the request-scoped zap logger.
// Missing rows are not logged; the API layer reports them as 404s.
type GormLogger struct {
	level gormlogger.LogLevel
	slow  time.Duration
}

func NewGormLogger(cfg GormLoggerConfig) *GormLogger {
	level := cfg.Level
	if level == 0 {
		level = gormlogger.Warn
	}
	return &GormLogger{level: level, slow: cfg.SlowThreshold}
}

func (l *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *l
	clone.level = level
	return &clone
}

func (l *GormLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	if l.level >= gormlogger.Info {
		l.store(ctx).Sugar().Infof(msg, data...)
	}
}

func (l *GormLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	if l.level >= gormlogger.Warn {
		l.store(ctx).Sugar().Warnf(msg, data...)
	}
}

func (l *GormLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	if l.level >= gormlogger.Error {
		l.store(ctx).Sugar().Errorf(msg, data...)
	}
}

func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}
	elapsed := time.Since(begin)
	failed := err != nil && !errors.Is(err, gormlogger.ErrRecordNotFound)
	slow := l.slow > 0 && elapsed > l.slow

	if !failed && !slow && l.level < gormlogger.Info {
		return
	}

	sql, rows := fc()
	verb, table := describeSQL(sql)
	fields := []zap.Field{
		zap.String("verb", verb),
		zap.String("table", table),
		zap.Int64("duration_ms", elapsed.Milliseconds()),
	}
	if rows >= 0 {
		fields = append(fields, zap.Int64("rows", rows))
	}

	log := l.store(ctx)
	switch {
	case failed && l.level >= gormlogger.Error:
		log.Error("query failed", append(fields, zap.Error(err))...)
	case slow && l.level >= gormlogger.Warn:
		log.Warn("slow query", append(fields, zap.Duration("threshold", l.slow))...)
	case l.level >= gormlogger.Info:
		log.Debug("query", append(fields, zap.String("sql", strings.TrimSpace(sql)))...)
	}
}

// ParamsFilter keeps bound amounts and party details out of the logs.
func (l *GormLogger) ParamsFilter(_ context.Context, sql string, _ ...interface{}) (string, []interface{}) {
	return sql, nil
}

func (l *GormLogger) store(ctx context.Context) *zap.Logger {
	return FromContext(ctx).With(zap.String("component", "store"))
}

// describeSQL returns the statement verb and the first table it touches.
func describeSQL(sql string) (string, string) {
	tokens := strings.Fields(strings.ToUpper(sql))
	verb := "UNKNOWN"
	for i, token := range tokens {
		token = strings.Trim(token, "();")
		switch token {
		case "SELECT", "INSERT", "UPDATE", "DELETE":
			if verb == "UNKNOWN" {
				verb = token
			}
			if token == "UPDATE" && i+1 < len(tokens) {
				return verb, tableName(strings.Fields(sql)[i+1])
			}
		case "FROM", "INTO":
			if verb != "UNKNOWN" && i+1 < len(tokens) {
				return verb, tableName(strings.Fields(sql)[i+1])
			}
		}
	}
	return verb, ""
}

func tableName(token string) string {
	return strings.ToLower(strings.Trim(token, "\"`();"))
}

var _ gormlogger.Interface = (*GormLogger)(nil)
