// Package fetch retrieves license documents over HTTP for hosts that want
// license names looked up from the documents themselves.
package fetch

import (
	"time"
)

// DefaultRateLimit is the default minimum interval between HTTP requests.
const DefaultRateLimit = 1 * time.Second

// DefaultTimeout is the default per-request timeout.
const DefaultTimeout = 15 * time.Second

// DefaultCacheTTL is the default time-to-live for cached documents.
const DefaultCacheTTL = 7 * 24 * time.Hour

// DefaultMaxBytes bounds the size of a fetched document.
const DefaultMaxBytes = 2 << 20

// FetchConfig holds configuration for license document fetching.
type FetchConfig struct {
	// AllowedDomains restricts fetching to these hosts. If empty, all hosts are allowed.
	AllowedDomains []string `yaml:"allowed_domains"`

	// RateLimit is the minimum interval between HTTP requests.
	RateLimit time.Duration `yaml:"rate_limit"`

	// Timeout is the per-request timeout.
	Timeout time.Duration `yaml:"timeout"`

	// CacheDir is the directory for persistent document caching.
	// If empty, caching is disabled.
	CacheDir string `yaml:"cache_dir"`

	// CacheTTL is how long cached documents stay valid.
	CacheTTL time.Duration `yaml:"cache_ttl"`

	// MaxBytes bounds the size of a document body.
	MaxBytes int64 `yaml:"max_bytes"`

	// UserAgent is sent with every request.
	UserAgent string `yaml:"user_agent"`
}

// DefaultFetchConfig returns a FetchConfig that only talks to
// creativecommons.org.
func DefaultFetchConfig() FetchConfig {
	return FetchConfig{
		AllowedDomains: []string{"creativecommons.org"},
		RateLimit:      DefaultRateLimit,
		Timeout:        DefaultTimeout,
		CacheTTL:       DefaultCacheTTL,
		MaxBytes:       DefaultMaxBytes,
		UserAgent:      "ccattrib",
	}
}

// Document is a fetched license document.
type Document struct {
	// URL is the requested URL.
	URL string `json:"url"`

	// StatusCode is the HTTP status of the response.
	StatusCode int `json:"status_code"`

	// Body is the (possibly truncated) response body.
	Body []byte `json:"body"`

	// FetchedAt is when the document was retrieved.
	FetchedAt time.Time `json:"fetched_at"`
}
