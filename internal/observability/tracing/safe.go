package tracing

import (
	"errors"
	"strings"

	"go.opentelemetry.io/otel/attribute"
)

var blockedAttributeKeys = map[attribute.Key]struct{}{
	"http.request.body": {},
	"db.statement":      {},
	"user.email":        {},
	"customer.phone":    {},
}

const maxAttributeValueLen = 256

// SafeAttributes drops keys that may carry personal data and truncates long values.
func SafeAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	out := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		if _, blocked := blockedAttributeKeys[attr.Key]; blocked {
			continue
		}
		if attr.Value.Type() == attribute.STRING {
			value := attr.Value.AsString()
			if len(value) > maxAttributeValueLen {
				attr = attribute.String(string(attr.Key), value[:maxAttributeValueLen])
			}
		}
		out = append(out, attr)
	}
	return out
}

// SafeError returns an error whose message is trimmed to a single line.
func SafeError(err error) error {
	if err == nil {
		return nil
	}
	msg := strings.TrimSpace(err.Error())
	if idx := strings.IndexByte(msg, '\n'); idx >= 0 {
		msg = msg[:idx]
	}
	if len(msg) > maxAttributeValueLen {
		msg = msg[:maxAttributeValueLen]
	}
	return errors.New(msg)
}
