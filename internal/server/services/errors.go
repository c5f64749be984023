package services

import "errors"

var (
	ErrUserExists            = errors.New("user already exists")
	ErrNoPendingRegistration = errors.New("no registration in progress for this email")
	ErrCodeExpired           = errors.New("code has expired")
	ErrInvalidCode           = errors.New("invalid code")
	ErrEmailNotVerified      = errors.New("email not verified")
	ErrInvalidCredentials    = errors.New("invalid email or password")
	ErrUserNotFound          = errors.New("user not found")
	ErrQuotaExceeded         = errors.New("daily request limit reached")
	ErrUnknownProvider       = errors.New("unknown provider")
	ErrPaymentNotFound       = errors.New("payment not found")
	ErrInvalidTier           = errors.New("tier must be pro or pro_plus")
)
