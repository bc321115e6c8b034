package service

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors returned by the services. The text doubles as the API
// error code.
var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrNotFound           = errors.New("not_found")
	ErrInvalidToken       = errors.New("invalid_token")
	ErrInvalidRequest     = errors.New("invalid_request")
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrAlreadyExists      = errors.New("already_exists")
)

// ErrInvalidLifetime is returned for negative or out of range token lifetimes.
var ErrInvalidLifetime = fmt.Errorf("%w: lifetime out of range", ErrInvalidRequest)

func nowFrom(fn func() time.Time) time.Time {
	if fn == nil {
		return time.Now().UTC()
	}
	return fn().UTC()
}
