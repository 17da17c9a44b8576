package reconcile

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// UnknownField is the fallback for any error detail that cannot be read.
const UnknownField = "Unknown"

// ExtractErrorDetail reads the (code, message) pair out of the nested error
// payload a failed submission carries. The walk is a chain of nullable
// lookups over a generic JSON tree: issue[0].details.coding[0].{code,display}.
// Every step that is absent, mistyped or empty yields "Unknown" for that
// field alone; this function never fails.
func ExtractErrorDetail(statusCode *int, payload string) (code, message string) {
	code, message = UnknownField, UnknownField

	if payload == "" {
		return code, message
	}
	if statusCode != nil && *statusCode == http.StatusOK {
		return code, message
	}

	var tree any
	if err := json.Unmarshal([]byte(payload), &tree); err != nil {
		return code, message
	}

	coding := firstElement(field(firstElement(tree, "issue"), "details"), "coding")

	// Code and display fall back independently, not as a pair.
	if v := stringField(coding, "code"); v != "" {
		code = v
	}
	if v := stringField(coding, "display"); v != "" {
		message = v
	}
	return code, message
}

// FailureReason formats the normalized reason string stored on the audit row.
func FailureReason(code, message string) string {
	return fmt.Sprintf("%s: %s", code, message)
}

// field returns m[key], or nil when the node is not an object or the key is
// missing.
func field(v any, key string) any {
	m, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	return m[key]
}

// firstElement returns m[key][0], or nil when the node is not an object, the
// key is not an array, or the array is empty.
func firstElement(v any, key string) any {
	arr, ok := field(v, key).([]any)
	if !ok || len(arr) == 0 {
		return nil
	}
	return arr[0]
}

// stringField returns m[key] as a string, or "" when absent or not a string.
func stringField(v any, key string) string {
	s, _ := field(v, key).(string)
	return s
}
