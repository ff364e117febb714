package fetch

import (
	"context"
	"net/http"
	"sync"
	"time"
)

// HTTPClient is an interface matching the Do method of *http.Client.
// This allows injection of mock clients for testing and custom transports.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// RateLimitedHTTPClient wraps an HTTPClient and enforces a minimum interval
// between requests.
type RateLimitedHTTPClient struct {
	underlying      HTTPClient
	requestInterval time.Duration
	nextSlot        time.Time
	mu              sync.Mutex
}

// NewRateLimitedHTTPClient creates a rate-limited HTTP client that enforces
// the given minimum interval between requests.
func NewRateLimitedHTTPClient(underlying HTTPClient, requestInterval time.Duration) *RateLimitedHTTPClient {
	return &RateLimitedHTTPClient{
		underlying:      underlying,
		requestInterval: requestInterval,
	}
}

// Do waits for the next free slot, or for the request context to end, and
// then sends the request.
func (rateLimitedClient *RateLimitedHTTPClient) Do(req *http.Request) (*http.Response, error) {
	if err := rateLimitedClient.wait(req.Context()); err != nil {
		return nil, err
	}
	return rateLimitedClient.underlying.Do(req)
}

func (rateLimitedClient *RateLimitedHTTPClient) wait(ctx context.Context) error {
	rateLimitedClient.mu.Lock()
	now := time.Now()
	slot := rateLimitedClient.nextSlot
	if slot.Before(now) {
		slot = now
	}
	rateLimitedClient.nextSlot = slot.Add(rateLimitedClient.requestInterval)
	rateLimitedClient.mu.Unlock()

	delay := time.Until(slot)
	if delay <= 0 {
		return nil
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// NewTimeoutHTTPClient creates an HTTP client with the specified timeout that
// follows at most 10 redirects.
func NewTimeoutHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 10 {
				return http.ErrUseLastResponse
			}
			return nil
		},
	}
}
