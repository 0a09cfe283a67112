package cashflow

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	DefaultAdvanceWindow = 5 * time.Minute
	DefaultAdvanceMarker = "advance payment for project"
)

// ProjectTerms is the project side of payment reconciliation.
type ProjectTerms struct {
	AgreementAmount decimal.Decimal
	AdvancePaid     decimal.Decimal
	CreatedAt       time.Time
}

// AdvanceRule detects legacy rows that duplicate the advance snapshot.
type AdvanceRule struct {
	Window time.Duration
	Marker string
}

func DefaultAdvanceRule() AdvanceRule {
	return AdvanceRule{Window: DefaultAdvanceWindow, Marker: DefaultAdvanceMarker}
}

// IsAdvanceRecord reports whether e records the advance already counted in
// AdvancePaid. Rows tagged advance-snapshot always match. Untagged rows fall
// back to the legacy heuristic: INCOME, dated within the window of project
// creation and carrying the marker text.
func (r AdvanceRule) IsAdvanceRecord(e Entry, project ProjectTerms) bool {
	if e.Origin == OriginAdvanceSnapshot {
		return true
	}
	if e.Origin != "" && e.Origin != OriginUserEntry {
		return false
	}
	if e.Type != TypeIncome {
		return false
	}

	window := r.Window
	if window <= 0 {
		window = DefaultAdvanceWindow
	}
	diff := e.Date.Sub(project.CreatedAt)
	if diff < 0 {
		diff = -diff
	}
	if diff > window {
		return false
	}

	marker := strings.ToLower(strings.TrimSpace(r.Marker))
	if marker == "" {
		marker = DefaultAdvanceMarker
	}
	return strings.Contains(strings.ToLower(e.Description), marker)
}

// TotalPaid sums the advance snapshot and every payment row that is not the
// advance itself.
func (r AdvanceRule) TotalPaid(project ProjectTerms, entries []Entry) decimal.Decimal {
	total := project.AdvancePaid
	for _, e := range entries {
		if !CountsAsPayment(e.Type) {
			continue
		}
		if r.IsAdvanceRecord(e, project) {
			continue
		}
		total = total.Add(e.Amount)
	}
	return total
}

// RemainingAmount is the unpaid part of the agreement, never negative.
func RemainingAmount(agreement, totalPaid decimal.Decimal) decimal.Decimal {
	remaining := agreement.Sub(totalPaid)
	if remaining.IsNegative() {
		return decimal.Zero
	}
	return remaining
}

func formatID(id int64) string {
	if id == 0 {
		return ""
	}
	return strconv.FormatInt(id, 10)
}
