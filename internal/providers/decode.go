package providers

import (
	"encoding/json"
	"fmt"
	"strings"
)

// DecodeJSON parses a schema-constrained response. Models occasionally wrap
// JSON in markdown code fences even when asked not to, so those are stripped
// first. A parse failure here is a call failure for the caller.
func DecodeJSON(raw string, v any) error {
	raw = stripCodeFence(strings.TrimSpace(raw))
	if raw == "" {
		return fmt.Errorf("decode structured response: empty output")
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return fmt.Errorf("decode structured response: %w", err)
	}
	return nil
}

func stripCodeFence(s string) string {
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(s, "```")
	}
	return strings.TrimSpace(s)
}
