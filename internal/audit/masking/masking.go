package masking

import "strings"

const maskToken = "****"

// sensitiveKeys are metadata keys whose values are masked before persisting.
var sensitiveKeys = map[string]struct{}{
	"accountnumber": {},
	"phone":         {},
	"email":         {},
}

// MaskSecret redacts a value while keeping a short suffix for lookup.
func MaskSecret(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return ""
	}
	if len(trimmed) <= 4 {
		return maskToken
	}
	return maskToken + trimmed[len(trimmed)-4:]
}

// MaskSensitive returns a copy of input with sensitive string values masked.
func MaskSensitive(input map[string]any) map[string]any {
	if len(input) == 0 {
		return map[string]any{}
	}

	out := make(map[string]any, len(input))
	for key, value := range input {
		trimmedKey := strings.TrimSpace(key)
		if trimmedKey == "" {
			continue
		}
		out[trimmedKey] = maskValue(trimmedKey, value)
	}
	return out
}

func maskValue(key string, value any) any {
	switch cast := value.(type) {
	case string:
		if _, ok := sensitiveKeys[strings.ToLower(key)]; ok {
			return MaskSecret(cast)
		}
		return cast
	case *string:
		if cast == nil {
			return nil
		}
		return maskValue(key, *cast)
	case map[string]any:
		return MaskSensitive(cast)
	default:
		return value
	}
}
