package models

import (
	"regexp"
	"strings"
)

var (
	emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	phoneRe = regexp.MustCompile(`^\+[0-9]{1,3}[0-9 \-]{6,14}$`)
)

// ValidEmail reports whether s has a basic email shape.
func ValidEmail(s string) bool {
	return emailRe.MatchString(strings.TrimSpace(s))
}

// ValidPhone reports whether s is a country-code-prefixed phone number.
// Empty is allowed since the field is optional.
func ValidPhone(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return true
	}
	return phoneRe.MatchString(s)
}
