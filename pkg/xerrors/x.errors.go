package xerrors

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// ParsePGErrorCode extracts the SQLSTATE code from a pgconn error.
func ParsePGErrorCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code // e.g. 23505 for unique_violation
	}
	return "unknown"
}

// IsUniqueViolation reports whether err is a Postgres unique-index violation.
func IsUniqueViolation(err error) bool {
	return ParsePGErrorCode(err) == "23505"
}

// ConstraintName returns the violated constraint, or "" when unknown.
func ConstraintName(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.ConstraintName
	}
	return ""
}

var ErrInvalidRequest = errors.New("invalid request")

// Accounts
var (
	ErrAccountNotFound    = errors.New("account not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailAlreadyInUse  = errors.New("email already registered")
	ErrMobileAlreadyInUse = errors.New("mobile already registered")
)

// OTP verification
var (
	ErrInvalidOTP         = errors.New("invalid or expired otp")
	ErrChannelUnavailable = errors.New("verification channel unavailable")
)

// Reset tickets
var (
	ErrTicketNotFound    = errors.New("reset ticket not found")
	ErrTicketAlreadyUsed = errors.New("reset ticket already used")
	ErrTicketExpired     = errors.New("reset ticket expired")
)

// Federated sign-in
var (
	ErrInvalidProviderToken = errors.New("invalid provider token")
	ErrNonceMismatch        = errors.New("nonce mismatch")
)

// Input validation
var (
	ErrInvalidEmailFormat  = errors.New("invalid email format")
	ErrInvalidMobileFormat = errors.New("invalid mobile number format")
	ErrWeakPassword        = errors.New("weak password")
)
