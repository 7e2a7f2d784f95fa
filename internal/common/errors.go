// Package common defines shared constants and sentinel errors used across
// client and stub-server layers of cmdcenter. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Transport / service errors.
	ErrUnavailable  = errors.New("server unavailable")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrInternal     = errors.New("internal error")

	// Token errors (stub server side).
	ErrInvalidToken = errors.New("invalid token")
)
