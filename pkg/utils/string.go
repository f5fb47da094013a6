package utils

// Truncate shortens s to at most maxLen characters, appending "..." when it
// had to cut.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
