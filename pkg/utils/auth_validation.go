package utils

import (
	"regexp"
	"strings"

	"identity-service/pkg/xerrors"
)

var (
	emailRegex  = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	mobileRegex = regexp.MustCompile(`^\+?[1-9]\d{6,14}$`)
)

// ValidateEmail checks if an email address is valid.
func ValidateEmail(email string) bool {
	if strings.TrimSpace(email) == "" {
		return false
	}
	return emailRegex.MatchString(email)
}

// ValidateMobile checks a mobile number against E.164 format.
func ValidateMobile(mobile string) bool {
	return mobileRegex.MatchString(strings.TrimSpace(mobile))
}

// ValidatePassword enforces the minimum password policy for signup and reset.
func ValidatePassword(password string) error {
	if len(password) < 8 || len(password) > 100 {
		return xerrors.ErrWeakPassword
	}
	var hasLetter, hasDigit bool
	for _, r := range password {
		switch {
		case r >= '0' && r <= '9':
			hasDigit = true
		case (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
			hasLetter = true
		}
	}
	if !hasLetter || !hasDigit {
		return xerrors.ErrWeakPassword
	}
	return nil
}

// NormalizeMobile strips surrounding whitespace and ensures a leading plus.
func NormalizeMobile(mobile string) string {
	m := strings.TrimSpace(mobile)
	if m == "" {
		return m
	}
	if !strings.HasPrefix(m, "+") {
		m = "+" + m
	}
	return m
}
