package domain

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrProfileNotFound    = errors.New("profile not found")
	ErrUnknownRole        = errors.New("unknown role")
	ErrForbidden          = errors.New("access forbidden")
	ErrWeakPassword       = errors.New("password must be at least 6 characters")
	ErrInvalidAction      = errors.New("invalid action")
	ErrRateLimited        = errors.New("ai gateway rate limited")
	ErrQuotaExhausted     = errors.New("ai gateway quota exhausted")
	ErrUpstream           = errors.New("upstream service error")
	ErrSignUpUnsupported  = errors.New("sign-up is not supported for this identity")
)
