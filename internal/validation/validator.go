// Package validation provides request validation helpers.
package validation

import (
	"fmt"
	"strings"
	"unicode"
)

// Validator collects field errors for one request.
type Validator struct {
	Errors map[string]string
}

// New creates a new validator.
func New() *Validator {
	return &Validator{Errors: make(map[string]string)}
}

// Valid checks if there are any validation errors.
func (v *Validator) Valid() bool {
	return len(v.Errors) == 0
}

// AddError adds an error to the validator.
func (v *Validator) AddError(field, message string) {
	v.Errors[field] = message
}

// Check adds an error if the condition is false.
func (v *Validator) Check(ok bool, field, message string) {
	if !ok {
		v.AddError(field, message)
	}
}

// Error flattens the collected errors into one message.
func (v *Validator) Error() string {
	parts := make([]string, 0, len(v.Errors))
	for field, msg := range v.Errors {
		parts = append(parts, fmt.Sprintf("%s: %s", field, msg))
	}
	return strings.Join(parts, "; ")
}

// Required checks that a string is not empty.
func (v *Validator) Required(field, value string) {
	v.Check(strings.TrimSpace(value) != "", field, "must not be empty")
}

// Email validates email format.
func (v *Validator) Email(field, email string) {
	v.Check(emailRegex.MatchString(email), field, "must be a valid email address")
}

// Positive checks that a number is greater than zero.
func (v *Validator) Positive(field string, value float64) {
	v.Check(value > 0, field, "must be a positive number")
}

// CenterCode checks the exactly-4-digits code format.
func (v *Validator) CenterCode(field, code string) {
	v.Check(centerCodeRegex.MatchString(code), field, "must be exactly 4 digits")
}

// MinLength checks if a string has at least n characters.
func (v *Validator) MinLength(field string, value string, n int) {
	v.Check(len(value) >= n, field, fmt.Sprintf("must be at least %d characters long", n))
}

// Password validates password strength.
func (v *Validator) Password(field, password string) {
	v.MinLength(field, password, 8)

	var hasUpper, hasLower, hasNumber, hasSpecial bool
	for _, char := range password {
		switch {
		case unicode.IsUpper(char):
			hasUpper = true
		case unicode.IsLower(char):
			hasLower = true
		case unicode.IsNumber(char):
			hasNumber = true
		case unicode.IsPunct(char) || unicode.IsSymbol(char):
			hasSpecial = true
		}
	}

	v.Check(hasUpper, field, "must contain at least one uppercase letter")
	v.Check(hasLower, field, "must contain at least one lowercase letter")
	v.Check(hasNumber, field, "must contain at least one number")
	v.Check(hasSpecial, field, "must contain at least one special character")
}
