package api

import "sync"

// Credentials is the process-local holder of the short-lived access token.
// It is never persisted; the token lives exactly as long as the process, and
// is replaced wholesale on login/refresh and cleared on logout or when a
// refresh attempt fails for good.
//
// The mutex makes the set/get contract safe under the preemptive scheduling
// Go gives concurrent requests; nothing outside this package touches the
// token directly.
type Credentials struct {
	mu     sync.RWMutex
	access string
}

func NewCredentials() *Credentials {
	return &Credentials{}
}

// Set replaces the current access token. Subsequent outbound requests attach
// the new value immediately.
func (c *Credentials) Set(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.access = token
}

// Get returns the current access token, or "" when unauthenticated.
func (c *Credentials) Get() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.access
}

// Clear drops the access token.
func (c *Credentials) Clear() {
	c.Set("")
}
