// Package cashflow holds the pure ledger rules shared by every write path and
// report: how a transaction type moves money, how totals are aggregated and
// how project payments reconcile against the agreed amount.
package cashflow

import (
	"strings"
)

type TransactionType string

const (
	TypeIncome      TransactionType = "INCOME"
	TypeExpense     TransactionType = "EXPENSE"
	TypeTransferIn  TransactionType = "TRANSFER_IN"
	TypeTransferOut TransactionType = "TRANSFER_OUT"
	TypeDebtTaken   TransactionType = "DEBT_TAKEN"
	TypeDebtRepaid  TransactionType = "DEBT_REPAID"
	TypeOther       TransactionType = "OTHER"
)

// KnownTypes lists every recognised transaction type.
var KnownTypes = []TransactionType{
	TypeIncome,
	TypeExpense,
	TypeTransferIn,
	TypeTransferOut,
	TypeDebtTaken,
	TypeDebtRepaid,
	TypeOther,
}

// ParseTransactionType normalises raw input; ok is false for unrecognised values.
func ParseTransactionType(raw string) (TransactionType, bool) {
	t := TransactionType(strings.ToUpper(strings.TrimSpace(raw)))
	return t, Classify(t).Known
}

type Bucket string

const (
	BucketIncome        Bucket = "income"
	BucketExpense       Bucket = "expense"
	BucketInformational Bucket = "informational"
)

// Classification is the canonical interpretation of a transaction type.
type Classification struct {
	Sign   int
	Bucket Bucket
	Known  bool
}

// Classify maps a transaction type to its sign and report bucket.
// Unknown types are informational with Known set to false; callers log them.
func Classify(t TransactionType) Classification {
	switch t {
	case TypeIncome, TypeTransferIn, TypeDebtRepaid:
		return Classification{Sign: 1, Bucket: BucketIncome, Known: true}
	case TypeExpense, TypeTransferOut, TypeDebtTaken:
		return Classification{Sign: -1, Bucket: BucketExpense, Known: true}
	case TypeOther:
		return Classification{Sign: 0, Bucket: BucketInformational, Known: true}
	default:
		return Classification{Sign: 0, Bucket: BucketInformational, Known: false}
	}
}

// IsTransfer reports whether t moves money between two accounts.
func IsTransfer(t TransactionType) bool {
	return t == TypeTransferIn || t == TypeTransferOut
}

// IsDebt reports whether t belongs to the debt ledger.
func IsDebt(t TransactionType) bool {
	return t == TypeDebtTaken || t == TypeDebtRepaid
}

// CountsAsPayment reports whether t settles part of a project agreement.
func CountsAsPayment(t TransactionType) bool {
	return t == TypeIncome || t == TypeDebtRepaid
}
