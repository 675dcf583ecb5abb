package validators

import "strings"

// SanitizeString trims surrounding whitespace and clamps the value to maxLen
// bytes. Used for free-text inputs like revocation reasons.
func SanitizeString(input string, maxLen int) string {
	trimmed := strings.TrimSpace(input)
	if maxLen > 0 && len(trimmed) > maxLen {
		return trimmed[:maxLen]
	}
	return trimmed
}
