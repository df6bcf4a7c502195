package domain

import "errors"

var (
	// ErrAuthenticationFailed covers a missing, invalid or expired credential,
	// or a token subject that resolves to no user. Fatal to the connection
	// attempt that presented it.
	ErrAuthenticationFailed = errors.New("authentication failed")

	// ErrMalformedEvent marks an inbound event with an unknown kind or a
	// malformed target group id. Such events are dropped, never answered.
	ErrMalformedEvent = errors.New("malformed event")

	ErrNotFound           = errors.New("resource not found")
	ErrForbidden          = errors.New("permission denied")
	ErrEmailTaken         = errors.New("email already taken")
	ErrInvalidCredentials = errors.New("incorrect email or password")
	ErrInviteCodeExpired  = errors.New("invite code is invalid or expired")
)
