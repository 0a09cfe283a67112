package domain

import (
	"context"
	"errors"
	"time"

	"github.com/smallbiznis/bizledger/internal/cashflow"
)

//go:generate mockgen -destination=./mock_domain/service.go github.com/smallbiznis/bizledger/internal/report/domain Service

type Service interface {
	Overview(ctx context.Context, req OverviewRequest) (cashflow.OverviewStats, error)
	Daily(ctx context.Context, date *time.Time) (DailyReport, error)
	PaymentSchedule(ctx context.Context) ([]ScheduleItem, error)
	Debts(ctx context.Context) (DebtsReport, error)
}

var (
	ErrInvalidRange = errors.New("invalid_range")
	ErrInvalidFrom  = errors.New("invalid_from")
	ErrInvalidTo    = errors.New("invalid_to")
)
