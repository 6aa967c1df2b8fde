package service

import "errors"

// Sentinel errors returned by the services. The API layer maps them to HTTP
// status codes.
var (
	// ErrInvalidCredentials is returned by Authenticate for an unknown email or a
	// wrong password. The two cases are deliberately indistinguishable.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidPage is returned when a requested page lies beyond the last page.
	ErrInvalidPage = errors.New("invalid page")
)
