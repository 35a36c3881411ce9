package domain

import (
	"unicode"

	"github.com/sovaehr/authapi/internal/apperror"
)

// Password is a credential that passed the complexity rules at construction.
// It redacts itself in default formatting and is never logged.
type Password struct {
	value string
}

// NewPassword validates the raw string and wraps it. The rules: at least
// 8 bytes, at least one digit, one uppercase ASCII letter and one
// non-alphanumeric character. A single generic error covers every rule so
// the response doesn't reveal which one failed.
func NewPassword(raw string) (Password, error) {
	if len(raw) < 8 {
		return Password{}, apperror.WeakPassword()
	}

	var hasDigit, hasUpper, hasSpecial bool
	for _, r := range raw {
		switch {
		case r >= '0' && r <= '9':
			hasDigit = true
		case r >= 'A' && r <= 'Z':
			hasUpper = true
		}
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			hasSpecial = true
		}
	}

	if !hasDigit || !hasUpper || !hasSpecial {
		return Password{}, apperror.WeakPassword()
	}

	return Password{value: raw}, nil
}

// Expose returns the underlying secret.
func (p Password) Expose() string {
	return p.value
}

func (p Password) String() string {
	return "[redacted password]"
}
