package validation

import "regexp"

var (
	emailRegex      = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	centerCodeRegex = regexp.MustCompile(`^\d{4}$`)
	specialRegex    = regexp.MustCompile(`[!@#$%^&*(),.?":{}|<>]`)
)

// HasSpecialChar checks if a string contains at least one special character.
func HasSpecialChar(s string) bool {
	return specialRegex.MatchString(s)
}
