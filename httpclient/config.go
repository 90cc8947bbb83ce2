package httpclient

import (
	"fmt"
	"time"

	"github.com/kbukum/apiwrap/resilience"
)

const (
	defaultTimeout = 30 * time.Second
)

// Config configures a Session.
type Config struct {
	// BaseURL is joined with relative request URLs. Absolute URLs bypass it.
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`

	// Timeout is the per-request timeout. Defaults to 30s.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`

	// Auth configures default authentication applied to all requests.
	// Individual requests can override this.
	Auth *AuthConfig `yaml:"-" mapstructure:"-"`

	// TLS configures TLS settings for the HTTP transport.
	TLS *TLSConfig `yaml:"tls" mapstructure:"tls"`

	// Headers are default headers applied to all requests.
	Headers map[string]string `yaml:"headers" mapstructure:"headers"`

	// UserAgent overrides the Go default User-Agent header.
	UserAgent string `yaml:"user_agent" mapstructure:"user_agent"`

	// Cookies enables a cookie jar shared by all requests of the session.
	Cookies bool `yaml:"cookies" mapstructure:"cookies"`

	// RequestIDHeader names a header that carries a generated request id.
	// Empty disables it.
	RequestIDHeader string `yaml:"request_id_header" mapstructure:"request_id_header"`

	// RateLimiter configures client-side rate limiting. Nil disables it.
	RateLimiter *resilience.RateLimiterConfig `yaml:"rate_limiter" mapstructure:"rate_limiter"`
}

// ApplyDefaults fills in zero-value fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("httpclient: timeout must be positive")
	}
	if c.TLS != nil {
		if err := c.TLS.Validate(); err != nil {
			return err
		}
	}
	if c.RateLimiter != nil && c.RateLimiter.Rate < 0 {
		return fmt.Errorf("httpclient: rate limiter rate must not be negative")
	}
	return nil
}

// DefaultRateLimiterConfig returns a default rate limiter config.
func DefaultRateLimiterConfig(name string) *resilience.RateLimiterConfig {
	cfg := resilience.DefaultRateLimiterConfig(name)
	return &cfg
}
