package draft

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-errors"
)

const (
	ErrCodeUnknownField = "UNKNOWN_FIELD"
	ErrCodeInvalidValue = "INVALID_FIELD_VALUE"
)

var (
	ErrUnknownField = errors.New("unknown draft field", errors.CategoryBadInput).
			WithTextCode(ErrCodeUnknownField)
	ErrInvalidValue = errors.New("invalid field value", errors.CategoryBadInput).
			WithTextCode(ErrCodeInvalidValue)
)

func unknownField(field string) error {
	return ErrUnknownField.Clone().WithMetadata(map[string]any{"field": field})
}

func invalidValue(field string, value any) error {
	return ErrInvalidValue.Clone().WithMetadata(map[string]any{
		"field": field,
		"value": fmt.Sprintf("%v", value),
	})
}

func asString(v any) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "", true
	case string:
		return t, true
	case fmt.Stringer:
		return t.String(), true
	case json.Number:
		return t.String(), true
	case int:
		return strconv.Itoa(t), true
	case int32:
		return strconv.FormatInt(int64(t), 10), true
	case int64:
		return strconv.FormatInt(t, 10), true
	case uint64:
		return strconv.FormatUint(t, 10), true
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(t), true
	}
	return "", false
}

func asBool(v any) (bool, bool) {
	switch t := v.(type) {
	case nil:
		return false, true
	case bool:
		return t, true
	case string:
		if strings.TrimSpace(t) == "" {
			return false, true
		}
		b, err := strconv.ParseBool(strings.TrimSpace(t))
		return b, err == nil
	case int:
		return t != 0, true
	case int64:
		return t != 0, true
	case float64:
		return t != 0, true
	}
	return false, false
}

// asFloatPtr returns nil for nil, empty strings and zero-like absences.
func asFloatPtr(v any) (*float64, bool) {
	switch t := v.(type) {
	case nil:
		return nil, true
	case *float64:
		return cloneFloat(t), true
	case float64:
		return &t, true
	case float32:
		f := float64(t)
		return &f, true
	case int:
		f := float64(t)
		return &f, true
	case int64:
		f := float64(t)
		return &f, true
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return nil, false
		}
		return &f, true
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return nil, true
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, false
		}
		return &f, true
	}
	return nil, false
}

// asStrings accepts a list, a JSON array string or a comma separated string.
func asStrings(v any) ([]string, bool) {
	switch t := v.(type) {
	case nil:
		return nil, true
	case []string:
		return append([]string(nil), t...), true
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			s, ok := asString(item)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return nil, true
		}
		if strings.HasPrefix(s, "[") {
			var out []string
			if err := json.Unmarshal([]byte(s), &out); err != nil {
				return nil, false
			}
			return out, true
		}
		parts := strings.Split(s, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out, true
	}
	return nil, false
}
