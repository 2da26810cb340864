package utils

import "errors"

// Common application errors used across services.
var (
	ErrStoreUnavailable   = errors.New("STORE_UNAVAILABLE")
	ErrItemNotFound       = errors.New("ITEM_NOT_FOUND")
	ErrInvalidCSRF        = errors.New("INVALID_CSRF_TOKEN")
	ErrUnauthorized       = errors.New("UNAUTHORIZED")
	ErrForbidden          = errors.New("FORBIDDEN")
	ErrInvalidToken       = errors.New("INVALID_TOKEN")
	ErrInvalidCredentials = errors.New("INVALID_CREDENTIALS")
	ErrAccountInactive    = errors.New("ACCOUNT_INACTIVE")
	ErrSessionNotFound    = errors.New("SESSION_NOT_FOUND")
)
