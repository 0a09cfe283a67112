package metrics

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"
)

const (
	LedgerFailureReasonDeadlineExceeded     = "deadline_exceeded"
	LedgerFailureReasonLockTimeout          = "db_lock_timeout"
	LedgerFailureReasonSerializationFailure = "serialization_failure"
	LedgerFailureReasonUniqueViolation      = "unique_violation"
	LedgerFailureReasonForeignKeyViolation  = "foreign_key_violation"
	LedgerFailureReasonCheckViolation       = "check_violation"
	LedgerFailureReasonNotFound             = "not_found"
	LedgerFailureReasonUnknown              = "unknown"
)

// LedgerMetrics captures ledger write health for alerting on balance drift.
type LedgerMetrics struct {
	writes             *prometheus.CounterVec
	writeFailures      *prometheus.CounterVec
	writeDuration      *prometheus.HistogramVec
	classifierFallback *prometheus.CounterVec
	eventsDropped      *prometheus.CounterVec
}

var (
	ledgerMetricsOnce sync.Once
	ledgerMetrics     *LedgerMetrics
)

// Ledger returns the singleton ledger metrics registry.
func Ledger() *LedgerMetrics {
	return LedgerWithConfig(Config{})
}

// LedgerWithConfig returns the singleton ledger metrics registry using config labels.
func LedgerWithConfig(cfg Config) *LedgerMetrics {
	ledgerMetricsOnce.Do(func() {
		ledgerMetrics = newLedgerMetrics(prometheus.DefaultRegisterer, cfg)
	})
	return ledgerMetrics
}

// NewLedgerMetrics registers a fresh set of ledger metrics on registerer.
func NewLedgerMetrics(registerer prometheus.Registerer, cfg Config) *LedgerMetrics {
	return newLedgerMetrics(registerer, cfg)
}

func newLedgerMetrics(registerer prometheus.Registerer, cfg Config) *LedgerMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	serviceName := strings.TrimSpace(cfg.ServiceName)
	if serviceName == "" {
		serviceName = "bizledger"
	}
	environment := strings.TrimSpace(cfg.Environment)
	if environment == "" {
		environment = "unknown"
	}
	constLabels := prometheus.Labels{
		"service": serviceName,
		"env":     environment,
	}

	m := &LedgerMetrics{
		writes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "bizledger_ledger_writes_total",
			Help:        "Committed ledger writes by operation.",
			ConstLabels: constLabels,
		}, []string{"operation"}),
		writeFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "bizledger_ledger_write_failures_total",
			Help:        "Rolled back ledger writes by operation and reason.",
			ConstLabels: constLabels,
		}, []string{"operation", "reason"}),
		writeDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "bizledger_ledger_write_duration_seconds",
			Help:        "Latency of ledger write transactions including balance updates.",
			Buckets:     []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			ConstLabels: constLabels,
		}, []string{"operation"}),
		classifierFallback: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "bizledger_classifier_fallback_total",
			Help:        "Transactions with an unrecognised type treated as informational.",
			ConstLabels: constLabels,
		}, []string{"source"}),
		eventsDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "bizledger_events_dropped_total",
			Help:        "Events not delivered to a slow subscriber.",
			ConstLabels: constLabels,
		}, []string{"topic"}),
	}

	registerer.MustRegister(
		m.writes,
		m.writeFailures,
		m.writeDuration,
		m.classifierFallback,
		m.eventsDropped,
	)
	return m
}

// ObserveWrite records the outcome and latency of a ledger write.
func (m *LedgerMetrics) ObserveWrite(operation string, started time.Time, err error) {
	if m == nil {
		return
	}
	operation = strings.TrimSpace(operation)
	m.writeDuration.WithLabelValues(operation).Observe(time.Since(started).Seconds())
	if err != nil {
		m.writeFailures.WithLabelValues(operation, ClassifyLedgerFailure(err)).Inc()
		return
	}
	m.writes.WithLabelValues(operation).Inc()
}

// IncClassifierFallback counts an unknown transaction type seen by source.
func (m *LedgerMetrics) IncClassifierFallback(source string) {
	if m == nil {
		return
	}
	m.classifierFallback.WithLabelValues(strings.TrimSpace(source)).Inc()
}

// IncEventDropped counts an event that a subscriber buffer could not accept.
func (m *LedgerMetrics) IncEventDropped(topic string) {
	if m == nil {
		return
	}
	m.eventsDropped.WithLabelValues(strings.TrimSpace(topic)).Inc()
}

// ClassifyLedgerFailure maps a write error to a low-cardinality reason.
func ClassifyLedgerFailure(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return LedgerFailureReasonDeadlineExceeded
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return LedgerFailureReasonNotFound
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return LedgerFailureReasonUniqueViolation
	}
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return LedgerFailureReasonForeignKeyViolation
	}
	switch sqlStateOf(err) {
	case "55P03":
		return LedgerFailureReasonLockTimeout
	case "40001":
		return LedgerFailureReasonSerializationFailure
	case "23505":
		return LedgerFailureReasonUniqueViolation
	case "23503":
		return LedgerFailureReasonForeignKeyViolation
	case "23514":
		return LedgerFailureReasonCheckViolation
	}
	return LedgerFailureReasonUnknown
}

func sqlStateOf(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	return ""
}
