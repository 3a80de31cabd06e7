package util

import (
	"regexp"
	"strings"
)

var controlChars = regexp.MustCompile(`[\x00-\x1F\x7F]+`)

// SanitizeForLog removes control characters and newlines from user content before logging.
func SanitizeForLog(s string) string {
	if s == "" {
		return s
	}
	s = strings.ReplaceAll(s, "\r\n", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	return controlChars.ReplaceAllString(s, " ")
}

// Truncate cuts s to at most max bytes without splitting a UTF-8 sequence.
func Truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !isRuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

// CleanLabel prepares free text that is stored as a short label, such as an
// audit action: control characters become spaces, runs of whitespace are
// collapsed and the result is trimmed and limited to max bytes.
func CleanLabel(s string, max int) string {
	s = SanitizeForLog(s)
	s = strings.Join(strings.Fields(s), " ")
	return Truncate(s, max)
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}
