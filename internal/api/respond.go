package api

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// Stable error codes returned alongside the human-readable message.
const (
	codeInvalidRequest      = "invalid_request_error"
	codeNotFound            = "not_found"
	codeUpstreamUnavailable = "upstream_unavailable"
	codeUpstreamTimeout     = "upstream_timeout"
	codeAPIError            = "api_error"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// httpError writes a JSON error body. Every failure path goes through here,
// so no endpoint ever returns a bare status with no body.
func httpError(w http.ResponseWriter, status int, code string, format string, args ...any) {
	writeJSON(w, status, map[string]string{
		"error": fmt.Sprintf(format, args...),
		"code":  code,
	})
}
