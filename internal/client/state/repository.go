// Package state persists the small amount of console state that must survive
// a process restart, as key/value rows in a local SQLite database. At present
// the only durable key is the login-lockout expiry.
package state

import "context"

// Repository is a durable string key/value store.
//
// Get returns "" with a nil error when the key is absent; callers that need
// to distinguish absence from an empty value should not store empty values.
type Repository interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}
