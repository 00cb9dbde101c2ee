package auth

import "errors"

var (
	// ErrInvalidToken covers malformed, forged and expired tokens alike.
	ErrInvalidToken = errors.New("invalid token")
	// ErrUnauthenticated is the only failure Resolve reports to callers.
	ErrUnauthenticated = errors.New("could not validate credentials")
	ErrInactive        = errors.New("inactive user")
	ErrForbidden       = errors.New("insufficient permissions")
)
