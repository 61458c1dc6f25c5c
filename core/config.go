package core

import "time"

type Config struct {
	// JWT configuration
	JWTSecret          string // Secret key for signing session tokens
	TokenExpiryMinutes int    // Session token lifetime in minutes

	// Outbound HTTP configuration
	HTTPTimeout time.Duration // Timeout for provider token/userinfo calls

	// Where /auth/callback sends the browser once the login pipeline finished
	PostLoginRedirect string
}

const DefaultHTTPTimeout = 10 * time.Second

// Timeout returns the configured outbound call timeout or the default.
func (c *Config) Timeout() time.Duration {
	if c.HTTPTimeout > 0 {
		return c.HTTPTimeout
	}
	return DefaultHTTPTimeout
}
