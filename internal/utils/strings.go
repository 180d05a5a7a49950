package utils

import "strings"

// SafeTruncate truncates s to maxLen runes, avoiding panic and UTF-8
// corruption. Truncated strings end in "...".
func SafeTruncate(s string, maxLen int) string {
	if maxLen <= 0 || s == "" {
		return ""
	}

	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}

	if maxLen < 4 {
		return string(runes[:1])
	}

	cutoff := maxLen - 3
	if len(runes) <= cutoff {
		return s
	}
	return string(runes[:cutoff]) + "..."
}

// SanitizeOutput removes ANSI escape sequences and control characters.
// Device descriptions arrive from remote metadata and are rendered to a
// terminal; anything non-printable is stripped.
func SanitizeOutput(s string) string {
	var result strings.Builder
	inEscape := false
	for i := 0; i < len(s); i++ {
		if s[i] == '\x1b' && i+1 < len(s) && s[i+1] == '[' {
			inEscape = true
			i++ // skip '['
			continue
		}
		if inEscape {
			if (s[i] >= 'A' && s[i] <= 'Z') || (s[i] >= 'a' && s[i] <= 'z') {
				inEscape = false
			}
			continue
		}
		if s[i] >= 32 || s[i] == '\n' || s[i] == '\t' {
			result.WriteByte(s[i])
		}
	}
	return result.String()
}
