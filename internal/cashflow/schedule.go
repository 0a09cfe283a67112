package cashflow

import (
	"time"

	"github.com/shopspring/decimal"
)

type ScheduleStatus string

const (
	ScheduleUpcoming ScheduleStatus = "Upcoming"
	ScheduleOverdue  ScheduleStatus = "Overdue"
	SchedulePaid     ScheduleStatus = "Paid"
)

// NextScheduleStatus derives a payment schedule status. Paid is terminal.
func NextScheduleStatus(current ScheduleStatus, dueDate, now time.Time, remaining decimal.Decimal) ScheduleStatus {
	if current == SchedulePaid {
		return SchedulePaid
	}
	if !remaining.IsPositive() {
		return SchedulePaid
	}
	if !dueDate.IsZero() && now.After(dueDate) {
		return ScheduleOverdue
	}
	return ScheduleUpcoming
}
