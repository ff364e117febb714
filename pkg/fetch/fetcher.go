package fetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ErrDomainNotAllowed is returned for URLs outside the allowed domains.
var ErrDomainNotAllowed = errors.New("domain not allowed")

// ErrUnexpectedStatus is returned for non-2xx responses.
var ErrUnexpectedStatus = errors.New("unexpected http status")

// Fetcher downloads license documents, honoring the domain allow-list, the
// rate limit and the optional disk cache.
type Fetcher struct {
	config FetchConfig
	client HTTPClient
	cache  *DocumentCache
	logger *zap.Logger
}

// NewFetcher creates a fetcher. A nil client means a timeout-bounded
// *http.Client wrapped in the configured rate limit.
func NewFetcher(config FetchConfig, client HTTPClient, logger *zap.Logger) (*Fetcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.MaxBytes <= 0 {
		config.MaxBytes = DefaultMaxBytes
	}
	if client == nil {
		timeout := config.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		client = NewRateLimitedHTTPClient(NewTimeoutHTTPClient(timeout), config.RateLimit)
	}

	fetcher := &Fetcher{config: config, client: client, logger: logger}

	if config.CacheDir != "" {
		ttl := config.CacheTTL
		if ttl <= 0 {
			ttl = DefaultCacheTTL
		}
		documentCache, err := NewDocumentCache(config.CacheDir, ttl)
		if err != nil {
			return nil, err
		}
		fetcher.cache = documentCache
	}

	return fetcher, nil
}

// Fetch returns the body of the document at uri. Its signature matches
// license.FetchFunc.
func (fetcher *Fetcher) Fetch(ctx context.Context, uri string) (io.ReadCloser, error) {
	document, err := fetcher.Document(ctx, uri)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(document.Body)), nil
}

// Document fetches uri, serving it from the disk cache when possible.
func (fetcher *Fetcher) Document(ctx context.Context, uri string) (Document, error) {
	if !fetcher.isDomainAllowed(uri) {
		return Document{}, fmt.Errorf("%w: %s", ErrDomainNotAllowed, uri)
	}

	if fetcher.cache != nil {
		if document, found := fetcher.cache.Get(uri); found {
			fetcher.logger.Debug("license document cache hit", zap.String("url", uri))
			return document, nil
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return Document{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	if fetcher.config.UserAgent != "" {
		req.Header.Set("User-Agent", fetcher.config.UserAgent)
	}

	resp, err := fetcher.client.Do(req)
	if err != nil {
		return Document{}, fmt.Errorf("failed to fetch %s: %w", uri, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Document{}, fmt.Errorf("%w: %d for %s", ErrUnexpectedStatus, resp.StatusCode, uri)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, fetcher.config.MaxBytes))
	if err != nil {
		return Document{}, fmt.Errorf("failed to read %s: %w", uri, err)
	}

	document := Document{
		URL:        uri,
		StatusCode: resp.StatusCode,
		Body:       body,
		FetchedAt:  time.Now(),
	}

	fetcher.logger.Debug("fetched license document",
		zap.String("url", uri),
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(body)))

	if fetcher.cache != nil {
		if err := fetcher.cache.Put(document); err != nil {
			fetcher.logger.Warn("failed to cache license document", zap.String("url", uri), zap.Error(err))
		}
	}

	return document, nil
}

// isDomainAllowed checks if the URL's host is in the allowed list.
// Returns true if no allowed domains are configured (all domains allowed).
func (fetcher *Fetcher) isDomainAllowed(fetchableURL string) bool {
	parsedURL, err := url.Parse(fetchableURL)
	if err != nil || (parsedURL.Scheme != "http" && parsedURL.Scheme != "https") {
		return false
	}

	if len(fetcher.config.AllowedDomains) == 0 {
		return true
	}

	for _, allowedDomain := range fetcher.config.AllowedDomains {
		if strings.EqualFold(parsedURL.Hostname(), allowedDomain) {
			return true
		}
	}

	return false
}
