package server

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

func parseOptionalBool(value string, def bool) (bool, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return def, nil
	}
	return strconv.ParseBool(trimmed)
}

func parseOptionalInt(value string) (int, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return 0, nil
	}
	return strconv.Atoi(trimmed)
}

// parseOptionalTime accepts RFC3339 or a bare date. A bare date becomes the
// start of that UTC day.
func parseOptionalTime(value string) (*time.Time, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil, nil
	}
	if parsed, err := time.Parse(time.RFC3339, trimmed); err == nil {
		return &parsed, nil
	}
	if parsed, err := time.Parse(time.DateOnly, trimmed); err == nil {
		return &parsed, nil
	}
	return nil, errors.New("invalid_time")
}

// parseTimeField parses an optional date field and reports failures against
// the JSON field name.
func parseTimeField(value, field string) (*time.Time, error) {
	parsed, err := parseOptionalTime(value)
	if err != nil {
		return nil, newValidationError(field, "invalid_"+toSnake(field), "invalid date")
	}
	return parsed, nil
}
