package service

import "errors"

var (
	ErrInvalidCredentials      = errors.New("invalid credentials")
	ErrInvalidToken            = errors.New("invalid token")
	ErrConfiguration           = errors.New("token signing secret is not configured")
	ErrRegistrationDisabled    = errors.New("admin registration disabled")
	ErrInvalidSetupToken       = errors.New("invalid registration setup token")
	ErrMissingFields           = errors.New("missing required fields")
	ErrCurrentPasswordRequired = errors.New("current password required")
	ErrNoChanges               = errors.New("no new email or password given")
	ErrWrongPassword           = errors.New("current password is incorrect")
)
