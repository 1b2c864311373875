package services

import (
	"regexp"
	"strings"
	"unicode"
)

const (
	msgRequired        = "This field is required."
	msgInvalidEmail    = "Enter a valid email address."
	msgEmailTaken      = "user with this email already exists"
	msgPasswordShort   = "Password must be at least 8 characters long."
	msgPasswordWeak    = "Password must contain at least one letter and one digit."
	msgPasswordNoMatch = "Passwords do not match."
	msgInvalidRole     = "is not a valid choice."
)

const minPasswordLength = 8

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

func isValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// validatePassword enforces the password strength policy: minimum length
// plus at least one letter and one digit. Every violated rule is
// reported, not just the first.
func validatePassword(password string) []string {
	var messages []string
	if len(password) < minPasswordLength {
		messages = append(messages, msgPasswordShort)
	}
	hasLetter := false
	hasDigit := false
	for _, char := range password {
		switch {
		case unicode.IsLetter(char):
			hasLetter = true
		case unicode.IsDigit(char):
			hasDigit = true
		}
	}
	if !hasLetter || !hasDigit {
		messages = append(messages, msgPasswordWeak)
	}
	return messages
}

func requireField(fields FieldErrors, name, value string) bool {
	if strings.TrimSpace(value) == "" {
		fields.add(name, msgRequired)
		return false
	}
	return true
}
