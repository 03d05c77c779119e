package domain

import "errors"

// Domain errors
var (
	// Auth errors
	ErrEmailAlreadyExists  = errors.New("email already exists")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrAccountInactive     = errors.New("account is inactive")
	ErrUserNotFound        = errors.New("user not found")
	ErrInvalidPassword     = errors.New("invalid password")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrInvalidResetToken   = errors.New("invalid or expired reset token")

	// Token errors
	ErrTokenExpired     = errors.New("token expired")
	ErrTokenMalformed   = errors.New("token malformed")
	ErrInvalidTokenKind = errors.New("invalid token kind")

	// Case errors
	ErrCaseNotFound      = errors.New("case not found")
	ErrInvalidCaseStatus = errors.New("invalid case status transition")
	ErrInvalidDueDate    = errors.New("invalid due date")
	ErrDentistNotFound   = errors.New("dentist not found")
)

// IsNotFoundError checks if the error maps to HTTP 404
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrCaseNotFound) ||
		errors.Is(err, ErrDentistNotFound)
}

// IsAuthError checks if the error maps to HTTP 401
func IsAuthError(err error) bool {
	return errors.Is(err, ErrInvalidCredentials) ||
		errors.Is(err, ErrInvalidPassword) ||
		errors.Is(err, ErrInvalidRefreshToken) ||
		errors.Is(err, ErrTokenExpired) ||
		errors.Is(err, ErrTokenMalformed) ||
		errors.Is(err, ErrInvalidTokenKind)
}
