package tool

import (
	"fmt"
	"strings"

	contractx "github.com/tanpawarit/Chative-Slot-Filling-Agent/agent/contract"
)

// stringArg reads an optional string argument. A JSON null counts as absent.
func stringArg(args map[string]any, key string) (string, bool, error) {
	raw, ok := args[key]
	if !ok || raw == nil {
		return "", false, nil
	}
	s, ok := raw.(string)
	if !ok {
		return "", false, fmt.Errorf("%w: %s must be a string, got %T", contractx.ErrValidation, key, raw)
	}
	return s, true, nil
}

func requiredStringArg(args map[string]any, key string) (string, error) {
	s, ok, err := stringArg(args, key)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("%w: %s is required", contractx.ErrValidation, key)
	}
	return s, nil
}

// stringListArg accepts []string or a decoded JSON array of strings. Absent and
// null both yield an empty list.
func stringListArg(args map[string]any, key string) ([]string, error) {
	raw, ok := args[key]
	if !ok || raw == nil {
		return []string{}, nil
	}
	switch v := raw.(type) {
	case []string:
		return append([]string{}, v...), nil
	case []any:
		out := make([]string, 0, len(v))
		for i, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%w: %s[%d] must be a string, got %T", contractx.ErrValidation, key, i, item)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: %s must be a list of strings, got %T", contractx.ErrValidation, key, raw)
	}
}

// normalizeOption maps "  Oat " to "oat" so enumeration checks are case-insensitive.
func normalizeOption(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
