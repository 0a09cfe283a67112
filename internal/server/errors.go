package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	accountdomain "github.com/smallbiznis/bizledger/internal/account/domain"
	customerdomain "github.com/smallbiznis/bizledger/internal/customer/domain"
	employeedomain "github.com/smallbiznis/bizledger/internal/employee/domain"
	"github.com/smallbiznis/bizledger/internal/events"
	expensedomain "github.com/smallbiznis/bizledger/internal/expense/domain"
	projectdomain "github.com/smallbiznis/bizledger/internal/project/domain"
	shopdomain "github.com/smallbiznis/bizledger/internal/shop/domain"
	vendordomain "github.com/smallbiznis/bizledger/internal/supplier/domain"
	transactiondomain "github.com/smallbiznis/bizledger/internal/transaction/domain"
	"github.com/smallbiznis/bizledger/pkg/db"
	"gorm.io/gorm"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrConflict           = errors.New("conflict")
	ErrInternal           = errors.New("internal_error")
	ErrNotFound           = errors.New("not_found")
	ErrInvalidRequest     = errors.New("invalid_request")
	ErrRateLimited        = errors.New("rate_limited")
	ErrServiceUnavailable = errors.New("service_unavailable")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

// bindError turns a gin binding failure into field-keyed validation errors.
func bindError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return invalidRequestError()
	}
	out := make([]ValidationError, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		field := fe.Field()
		out = append(out, ValidationError{
			Field:   field,
			Code:    "invalid_" + toSnake(field),
			Message: bindMessage(fe.Tag()),
		})
	}
	return &ValidationErrors{Errors: out}
}

func bindMessage(tag string) string {
	switch tag {
	case "required":
		return "is required"
	case "decimal_gt0":
		return "must be greater than zero"
	case "decimal_gte0":
		return "must not be negative"
	case "oneof":
		return "is not an allowed value"
	default:
		return "invalid value"
	}
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	if fields := joinedValidation(err); len(fields) > 0 {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  fields,
		}
	}

	if isValidationError(err) {
		code := validationErrorCode(err)
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   validationErrorField(code),
					Code:    code,
					Message: validationErrorMessage(code),
				},
			},
		}
	}

	switch {
	case isConflictError(err):
		code := err.Error()
		if db.IsDuplicateKeyErr(err) || errors.Is(err, gorm.ErrDuplicatedKey) {
			code = "duplicate_key"
		} else if db.IsForeignKeyErr(err) || errors.Is(err, gorm.ErrForeignKeyViolated) {
			code = "referenced_row"
		}
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: code,
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests, errorPayload{
			Type:    "rate_limited",
			Message: "too many requests",
		}
	case errors.Is(err, ErrServiceUnavailable),
		errors.Is(err, events.ErrHubUnavailable):
		return http.StatusServiceUnavailable, errorPayload{
			Type:    "service_unavailable",
			Message: "service unavailable",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

// classifyErrorForLog feeds the request logger a stable error type and code.
func classifyErrorForLog(err error) (string, string) {
	status, payload := mapError(err)
	if status >= http.StatusInternalServerError {
		return payload.Type, ""
	}
	if len(payload.Errors) > 0 {
		return payload.Type, payload.Errors[0].Code
	}
	return payload.Type, payload.Message
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

// joinedValidation expands an errors.Join of validation sentinels into one
// entry per field.
func joinedValidation(err error) []ValidationError {
	joined, ok := err.(interface{ Unwrap() []error })
	if !ok {
		return nil
	}
	var out []ValidationError
	for _, member := range joined.Unwrap() {
		if member == nil {
			continue
		}
		if !isValidationError(member) {
			return nil
		}
		code := validationErrorCode(member)
		out = append(out, ValidationError{
			Field:   validationErrorField(code),
			Code:    code,
			Message: validationErrorMessage(code),
		})
	}
	return out
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, events.ErrInvalidTopic):
		return true
	case isAccountValidationError(err),
		isTransactionValidationError(err),
		isProjectValidationError(err),
		isPartyValidationError(err),
		isExpenseValidationError(err),
		isShopValidationError(err),
		isReportValidationError(err),
		isAuditValidationError(err):
		return true
	default:
		return false
	}
}

func isConflictError(err error) bool {
	switch {
	case errors.Is(err, ErrConflict),
		errors.Is(err, accountdomain.ErrAccountInUse),
		errors.Is(err, projectdomain.ErrProjectInUse),
		errors.Is(err, shopdomain.ErrDuplicateSKU),
		errors.Is(err, shopdomain.ErrInsufficientStock),
		errors.Is(err, shopdomain.ErrCheckoutInProgress),
		errors.Is(err, gorm.ErrDuplicatedKey),
		errors.Is(err, gorm.ErrForeignKeyViolated),
		db.IsDuplicateKeyErr(err),
		db.IsForeignKeyErr(err):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, accountdomain.ErrNotFound),
		errors.Is(err, transactiondomain.ErrNotFound),
		errors.Is(err, projectdomain.ErrNotFound),
		errors.Is(err, customerdomain.ErrNotFound),
		errors.Is(err, vendordomain.ErrNotFound),
		errors.Is(err, employeedomain.ErrNotFound),
		errors.Is(err, expensedomain.ErrNotFound),
		errors.Is(err, shopdomain.ErrNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func validationErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return "invalid_request"
	case errors.Is(err, transactiondomain.ErrUnknownTransactionType):
		return "unknown_transaction_type"
	default:
		return err.Error()
	}
}

func validationErrorField(code string) string {
	switch code {
	case "invalid_request":
		return "request"
	case "unknown_transaction_type", "invalid_transaction_type":
		return "type"
	case "invalid_transaction_date":
		return "transactionDate"
	}
	if strings.HasPrefix(code, "invalid_") {
		return toCamel(strings.TrimPrefix(code, "invalid_"))
	}
	return ""
}

func validationErrorMessage(code string) string {
	switch code {
	case "invalid_request":
		return "invalid request"
	case "unknown_transaction_type":
		return "unknown transaction type"
	default:
		return "invalid value"
	}
}

func errorIn(err error, targets ...error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// toCamel maps a snake_case error suffix onto the JSON field it describes.
func toCamel(value string) string {
	parts := strings.Split(value, "_")
	for i := 1; i < len(parts); i++ {
		switch parts[i] {
		case "id":
			parts[i] = "Id"
		case "":
		default:
			parts[i] = strings.ToUpper(parts[i][:1]) + parts[i][1:]
		}
	}
	return strings.Join(parts, "")
}

func toSnake(value string) string {
	var b strings.Builder
	for i, r := range value {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r + ('a' - 'A'))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
