package display

import (
	"encoding/json"
)

// MarshalJSON marshals v with two-space indentation
func MarshalJSON(v interface{}) ([]byte, error) {
	return json.MarshalIndent(v, "", "  ")
}

// MarshalLine marshals v onto a single line, as JSON lines output needs
func MarshalLine(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}
