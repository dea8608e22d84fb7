// utils/validator.go - Input validation
package utils

import (
	"regexp"
	"strings"
)

var identifierRegex = regexp.MustCompile(`^[a-zA-Z0-9._-]+$`)

// ValidIdentifier checks task ids and usernames: non-empty, URL-safe.
func ValidIdentifier(s string) bool {
	return identifierRegex.MatchString(s)
}

// SanitizeInput removes potentially harmful characters
func SanitizeInput(input string) string {
	// Remove leading/trailing spaces
	input = strings.TrimSpace(input)

	// Remove null bytes
	input = strings.ReplaceAll(input, "\x00", "")

	return input
}
