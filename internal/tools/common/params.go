package common

import "fmt"

// RequiredString extracts a required string argument.
func RequiredString(args map[string]interface{}, name string) (string, error) {
	v, ok := args[name].(string)
	if !ok || v == "" {
		return "", fmt.Errorf("%s is required", name)
	}
	return v, nil
}

// OptionalString extracts an optional string argument, returning the
// fallback when absent or empty.
func OptionalString(args map[string]interface{}, name, fallback string) string {
	if v, ok := args[name].(string); ok && v != "" {
		return v
	}
	return fallback
}

// OptionalInt extracts an optional numeric argument. JSON numbers
// arrive as float64.
func OptionalInt(args map[string]interface{}, name string, fallback int) int {
	switch v := args[name].(type) {
	case float64:
		return int(v)
	case int:
		return v
	default:
		return fallback
	}
}

// RequiredInt64 extracts a required numeric argument as int64.
func RequiredInt64(args map[string]interface{}, name string) (int64, error) {
	switch v := args[name].(type) {
	case float64:
		return int64(v), nil
	case int:
		return int64(v), nil
	default:
		return 0, fmt.Errorf("%s is required", name)
	}
}
