package api

import (
	"fmt"
	"net/http"

	"github.com/opscore/cmdcenter/internal/common"
)

// Error is a structured error response from the backend. Detail carries the
// server's human-readable message verbatim; for login rejections it may embed
// the lockout signal the lockout package parses.
type Error struct {
	StatusCode int
	Detail     string
}

func (e *Error) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("api: %s (status %d)", e.Detail, e.StatusCode)
	}
	return fmt.Sprintf("api: status %d", e.StatusCode)
}

// Is maps HTTP status codes onto the shared sentinel errors so callers can
// use errors.Is without inspecting status codes.
func (e *Error) Is(target error) bool {
	switch target {
	case common.ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized
	case common.ErrForbidden:
		return e.StatusCode == http.StatusForbidden
	case common.ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	case common.ErrInternal:
		return e.StatusCode >= http.StatusInternalServerError
	}
	return false
}
