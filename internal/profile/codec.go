package profile

import (
	"encoding/json"
	"log/slog"
)

// encodeList serializes a list field for storage. A nil slice encodes to "[]"
// so stored columns never hold null.
func encodeList(values []string) string {
	if len(values) == 0 {
		return "[]"
	}
	b, err := json.Marshal(values)
	if err != nil {
		// []string cannot fail to marshal; guard anyway.
		return "[]"
	}
	return string(b)
}

// decodeList parses a stored list column back into a slice. Malformed text
// yields an empty slice, never an error: legacy rows with bad data must not
// abort a read.
func decodeList(raw string) []string {
	if raw == "" {
		return []string{}
	}
	var out []string
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		slog.Warn("malformed list field, treating as empty", "raw", raw, "error", err)
		return []string{}
	}
	if out == nil {
		return []string{}
	}
	return out
}
