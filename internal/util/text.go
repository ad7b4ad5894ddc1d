package util

import "strings"

// ReplaceFirst replaces the first literal occurrence of old in s. If old is
// absent or empty, s is returned unchanged. Accept actions for proofreading
// suggestions and similarity matches both route through here.
func ReplaceFirst(s, old, new string) string {
	if old == "" {
		return s
	}
	i := strings.Index(s, old)
	if i < 0 {
		return s
	}
	return s[:i] + new + s[i+len(old):]
}

func TrimToRunes(s string, maxRunes int) string {
	if maxRunes <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= maxRunes {
		return s
	}
	return strings.TrimSpace(string(runes[:maxRunes]))
}
