package entities

import "errors"

var (
	ErrNetworkFailure  = errors.New("rate provider unreachable")
	ErrDataUnavailable = errors.New("rate data unavailable")
	ErrInvalidInput    = errors.New("invalid input")
	ErrSessionNotFound = errors.New("session not found")
)
