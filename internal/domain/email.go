package domain

import (
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/sovaehr/authapi/internal/apperror"
)

var emailValidate = validator.New(validator.WithRequiredStructEnabled())

// Email is an address that passed format validation at construction.
// Default formatting redacts the value; use Expose to read it.
type Email struct {
	value string
}

// NewEmail validates the raw string and wraps it. The address must be
// local@domain with at least one dot in the domain and no whitespace.
func NewEmail(raw string) (Email, error) {
	if strings.ContainsAny(raw, " \t\r\n") {
		return Email{}, apperror.InvalidEmail()
	}

	local, dom, found := strings.Cut(raw, "@")
	if !found || local == "" || dom == "" {
		return Email{}, apperror.InvalidEmail()
	}
	if !strings.Contains(dom, ".") || strings.HasPrefix(dom, ".") || strings.HasSuffix(dom, ".") {
		return Email{}, apperror.InvalidEmail()
	}

	if err := emailValidate.Var(raw, "email"); err != nil {
		return Email{}, apperror.InvalidEmail()
	}

	return Email{value: raw}, nil
}

// Expose returns the underlying address.
func (e Email) Expose() string {
	return e.value
}

func (e Email) String() string {
	return "[redacted email]"
}
