package service

import (
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/bizledger/internal/cashflow"
	"github.com/smallbiznis/bizledger/internal/transaction/domain"
)

// applyRequest validates req and copies it onto item. defaultDate is used when
// the request leaves transactionDate empty.
func applyRequest(item *domain.Transaction, req domain.CreateTransactionRequest, defaultDate time.Time) error {
	txType, ok := cashflow.ParseTransactionType(req.Type)
	if !ok {
		if strings.TrimSpace(req.Type) == "" {
			return domain.ErrInvalidType
		}
		return domain.ErrUnknownTransactionType
	}
	if !req.Amount.IsPositive() {
		return domain.ErrInvalidAmount
	}
	description := strings.TrimSpace(req.Description)
	if description == "" {
		return domain.ErrInvalidDescription
	}

	date := defaultDate
	if req.TransactionDate != nil {
		if req.TransactionDate.IsZero() {
			return domain.ErrInvalidDate
		}
		date = req.TransactionDate.UTC()
	}
	if date.IsZero() {
		return domain.ErrInvalidDate
	}

	accountID, err := optionalID(req.AccountID, domain.ErrInvalidAccountID)
	if err != nil {
		return err
	}
	fromID, err := optionalID(req.FromAccountID, domain.ErrInvalidFromAccountID)
	if err != nil {
		return err
	}
	toID, err := optionalID(req.ToAccountID, domain.ErrInvalidToAccountID)
	if err != nil {
		return err
	}

	if cashflow.IsTransfer(txType) {
		if fromID == nil {
			return domain.ErrInvalidFromAccountID
		}
		if toID == nil || *toID == *fromID {
			return domain.ErrInvalidToAccountID
		}
		if accountID != nil {
			return domain.ErrInvalidAccountID
		}
	} else {
		if fromID != nil {
			return domain.ErrInvalidFromAccountID
		}
		if toID != nil {
			return domain.ErrInvalidToAccountID
		}
		// OTHER may be recorded without an account.
		if accountID == nil && txType != cashflow.TypeOther {
			return domain.ErrInvalidAccountID
		}
	}

	projectID, err := optionalID(req.ProjectID, domain.ErrInvalidProjectID)
	if err != nil {
		return err
	}
	customerID, err := optionalID(req.CustomerID, domain.ErrInvalidCustomerID)
	if err != nil {
		return err
	}
	vendorID, err := optionalID(req.VendorID, domain.ErrInvalidVendorID)
	if err != nil {
		return err
	}
	employeeID, err := optionalID(req.EmployeeID, domain.ErrInvalidEmployeeID)
	if err != nil {
		return err
	}

	var dueDate *time.Time
	if req.DueDate != nil {
		if req.DueDate.IsZero() {
			return domain.ErrInvalidDueDate
		}
		d := req.DueDate.UTC()
		dueDate = &d
	}

	category := strings.TrimSpace(req.Category)
	if category == "" {
		category = strings.ToUpper(string(txType))
	}

	item.Description = description
	item.Amount = req.Amount
	item.Type = txType
	item.Category = category
	item.TransactionDate = date
	item.AccountID = accountID
	item.FromAccountID = fromID
	item.ToAccountID = toID
	item.ProjectID = projectID
	item.CustomerID = customerID
	item.VendorID = vendorID
	item.EmployeeID = employeeID
	item.UserID = optionalString(req.UserID)
	item.DueDate = dueDate
	item.Reference = optionalString(req.Reference)
	return nil
}

func optionalID(raw string, invalid error) (*snowflake.ID, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, nil
	}
	id, err := snowflake.ParseString(trimmed)
	if err != nil || id <= 0 {
		return nil, invalid
	}
	return &id, nil
}

func optionalString(value string) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
