package backend

import "encoding/base64"

// CredentialCache holds a basic-auth token in memory only. It is
// never serialized and is private to the sink that owns it. Cleared
// on authentication failure so the next attempt reports NO_AUTH and
// the user is re-prompted.
type CredentialCache struct {
	token string
}

// NewCredentialCache returns an empty cache.
func NewCredentialCache() *CredentialCache {
	return &CredentialCache{}
}

// Set derives and stores the basic-auth token for user:password.
func (c *CredentialCache) Set(username, password string) {
	c.token = base64.StdEncoding.EncodeToString([]byte(username + ":" + password))
}

// Header returns the Authorization header value, or "" when empty.
func (c *CredentialCache) Header() string {
	if c.token == "" {
		return ""
	}
	return "Basic " + c.token
}

// Present reports whether a credential is cached.
func (c *CredentialCache) Present() bool {
	return c.token != ""
}

// Clear discards the cached token, forcing a re-prompt on next use.
func (c *CredentialCache) Clear() {
	c.token = ""
}
