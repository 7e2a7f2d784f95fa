// Package common contains shared constants and sentinel errors used across
// cmdcenter components.
package common

const (
	// AuthorizationHeader carries the bearer access token on outbound requests.
	AuthorizationHeader = "Authorization"

	// BearerPrefix is prepended to the access token in the Authorization header.
	BearerPrefix = "Bearer "

	// RequestedWithHeader / RequestedWithValue form the anti-CSRF marker the
	// backend requires on refresh calls.
	RequestedWithHeader = "X-Requested-With"
	RequestedWithValue  = "XMLHttpRequest"

	// RefreshCookieName is the cookie holding the durable refresh credential.
	// The client never reads or writes it directly; the cookie jar carries it.
	RefreshCookieName = "refresh_token"
)
