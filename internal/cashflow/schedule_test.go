package cashflow

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestNextScheduleStatus(t *testing.T) {
	now := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	past := now.Add(-24 * time.Hour)
	future := now.Add(24 * time.Hour)

	cases := []struct {
		name      string
		current   ScheduleStatus
		due       time.Time
		remaining decimal.Decimal
		want      ScheduleStatus
	}{
		{"upcoming", ScheduleUpcoming, future, d("10"), ScheduleUpcoming},
		{"becomes overdue", ScheduleUpcoming, past, d("10"), ScheduleOverdue},
		{"overdue then paid", ScheduleOverdue, past, decimal.Zero, SchedulePaid},
		{"upcoming then paid", ScheduleUpcoming, future, decimal.Zero, SchedulePaid},
		{"paid stays paid when remaining reappears", SchedulePaid, past, d("10"), SchedulePaid},
		{"no due date", "", time.Time{}, d("10"), ScheduleUpcoming},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := NextScheduleStatus(tc.current, tc.due, now, tc.remaining); got != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, got)
			}
		})
	}
}
