package detection

import (
	"fmt"
	"strings"
)

// GetStringParam safely extracts a string parameter from the params map
func GetStringParam(params map[string]any, key string, defaultValue string) string {
	if val, ok := params[key]; ok {
		if strVal, ok := val.(string); ok {
			return strings.TrimSpace(strVal)
		}
	}
	return defaultValue
}

// GetIntParam safely extracts an int parameter from the params map.
// YAML and JSON decoders hand numbers over as int or float64.
func GetIntParam(params map[string]any, key string, defaultValue int) int {
	if val, ok := params[key]; ok {
		switch v := val.(type) {
		case int:
			return v
		case int64:
			return int(v)
		case float64:
			return int(v)
		}
	}
	return defaultValue
}

// ValidateRequiredParams checks that all required parameters are present and non-empty
func ValidateRequiredParams(params map[string]any, required []string) error {
	for _, key := range required {
		val, ok := params[key]
		if !ok {
			return fmt.Errorf("missing required parameter: %s", key)
		}
		if s, isString := val.(string); isString && strings.TrimSpace(s) == "" {
			return fmt.Errorf("required parameter %s is empty", key)
		}
	}
	return nil
}
