// Package common defines shared constants and sentinel errors used across
// the server layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound    = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal      = errors.New("internal error")
	ErrorUnauthorized  = errors.New("unauthorized")
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrAccessDenied is returned by the nominee access gate while the
	// owner's dead man's switch has not fired for that nominee.
	ErrAccessDenied = errors.New("nominee access not granted")

	// ErrPartialSweep marks a sweep where at least one lapsed user could not
	// be processed. The sweep report is still returned alongside it.
	ErrPartialSweep = errors.New("partial sweep failure")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Token lifecycle errors.
	ErrTokenExpired        = errors.New("token expired")
	ErrRefreshTokenExpired = errors.New("refresh token expired")

	// One-time password errors.
	ErrOTPInvalid = errors.New("incorrect otp")
	ErrOTPExpired = errors.New("invalid or expired otp")
)
