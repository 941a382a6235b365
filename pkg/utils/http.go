package utils

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
)

// JSONError writes a JSON error response with the given status code.
func JSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// JSONWrite writes v as JSON with the given status code.
func JSONWrite(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	if status != 0 {
		w.WriteHeader(status)
	}
	return json.NewEncoder(w).Encode(v)
}

// NonNegInt parses a required-to-be-valid non-negative integer query or
// header value. Empty input returns (nil, nil).
func NonNegInt(name, val string) (*int64, error) {
	if val == "" {
		return nil, nil
	}
	n, err := strconv.ParseInt(val, 10, 64)
	if err != nil || n < 0 {
		return nil, fmt.Errorf("%s must be a non-negative integer, got %q", name, val)
	}
	return &n, nil
}

// BoolParam interprets a query flag; empty means false.
func BoolParam(val string) bool {
	return val == "1" || val == "true"
}
