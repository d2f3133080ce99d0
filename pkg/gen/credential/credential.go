// Package credential decides whether API credentials are usable before any
// network call is attempted. Values arrive from config files and environment
// variables, so they show up with stray whitespace, shell quoting, or
// copy-pasted placeholder text.
package credential

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

const minLength = 8

var (
	ErrEmpty       = errors.New("credential is empty")
	ErrPlaceholder = errors.New("credential is a placeholder value")
	ErrWhitespace  = errors.New("credential contains whitespace")
	ErrTooShort    = errors.New("credential is too short")
)

// placeholders are values people leave in config templates. Matched
// case-insensitively after cleaning.
var placeholders = map[string]bool{
	"your-api-key": true,
	"your_api_key": true,
	"changeme":     true,
	"sk-xxx":       true,
	"none":         true,
	"null":         true,
	"undefined":    true,
	"placeholder":  true,
}

// Clean normalizes a raw credential: surrounding whitespace is trimmed and
// surrounding quote pairs are stripped. Cleaning is idempotent:
// Clean(Clean(x)) == Clean(x).
func Clean(raw string) string {
	s := strings.TrimSpace(raw)
	for len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if first != last || (first != '\'' && first != '"') {
			break
		}
		s = strings.TrimSpace(s[1 : len(s)-1])
	}
	return s
}

// Validate reports whether the credential is plausible enough to send to a
// vendor. It never logs or embeds the credential itself.
func Validate(raw string) error {
	s := Clean(raw)
	if s == "" {
		return ErrEmpty
	}
	if placeholders[strings.ToLower(s)] {
		return ErrPlaceholder
	}
	if strings.ContainsFunc(s, unicode.IsSpace) {
		return ErrWhitespace
	}
	if len(s) < minLength {
		return fmt.Errorf("%w (%d chars, need %d)", ErrTooShort, len(s), minLength)
	}
	return nil
}

// IsConfigured reports whether the credential passes validation.
func IsConfigured(raw string) bool {
	return Validate(raw) == nil
}

// PairConfigured reports whether every part of a multi-part credential
// (e.g. an access key plus its secret) validates.
func PairConfigured(parts ...string) bool {
	if len(parts) == 0 {
		return false
	}
	for _, p := range parts {
		if !IsConfigured(p) {
			return false
		}
	}
	return true
}

// Mask renders a credential for logs: the first four characters and the
// length, nothing else.
func Mask(raw string) string {
	s := Clean(raw)
	if len(s) <= 4 {
		return strings.Repeat("*", len(s))
	}
	return fmt.Sprintf("%s… (%d chars)", s[:4], len(s))
}
