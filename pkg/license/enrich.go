package license

import (
	"context"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Details is the human-readable information an enrichment source can
// supply for a canonical license URI.
type Details struct {
	Name       string `json:"name,omitempty"`
	Identifier string `json:"identifier,omitempty"`
}

// Lookup resolves details for a canonical license URI.
type Lookup interface {
	Lookup(ctx context.Context, uri string) (Details, error)
}

// LookupFunc adapts a function to Lookup.
type LookupFunc func(ctx context.Context, uri string) (Details, error)

// Lookup implements Lookup.
func (f LookupFunc) Lookup(ctx context.Context, uri string) (Details, error) {
	return f(ctx, uri)
}

// Chain tries each lookup in order and returns the first success. The error
// of the last lookup is returned when all fail.
func Chain(lookups ...Lookup) Lookup {
	return LookupFunc(func(ctx context.Context, uri string) (Details, error) {
		var lastErr error
		for _, lookup := range lookups {
			details, err := lookup.Lookup(ctx, uri)
			if err == nil {
				return details, nil
			}
			lastErr = err
		}
		return Details{}, lastErr
	})
}

// Merge overlays non-empty details onto facts.
func Merge(facts Facts, details Details) Facts {
	if name := strings.TrimSpace(details.Name); name != "" {
		facts.Name = name
	}
	if identifier := strings.TrimSpace(details.Identifier); identifier != "" {
		facts.Identifier = identifier
	}
	return facts
}

// Enrich looks up details for facts.URI on a new goroutine and calls done
// with the merged facts. done is always called exactly once; when the lookup
// fails it receives the unenriched facts along with the error. A nil lookup
// calls done synchronously.
func Enrich(ctx context.Context, facts Facts, lookup Lookup, done func(Facts, error)) {
	if lookup == nil {
		done(facts, nil)
		return
	}

	go func() {
		details, err := lookup.Lookup(ctx, facts.URI)
		if err != nil {
			done(facts, err)
			return
		}
		done(Merge(facts, details), nil)
	}()
}

// SharedLookup collapses concurrent lookups for the same URI into one call
// and remembers successful results.
type SharedLookup struct {
	next  Lookup
	group singleflight.Group

	mu   sync.RWMutex
	memo map[string]Details
}

// NewSharedLookup wraps next.
func NewSharedLookup(next Lookup) *SharedLookup {
	return &SharedLookup{
		next: next,
		memo: make(map[string]Details),
	}
}

// Lookup implements Lookup.
func (s *SharedLookup) Lookup(ctx context.Context, uri string) (Details, error) {
	s.mu.RLock()
	details, ok := s.memo[uri]
	s.mu.RUnlock()
	if ok {
		return details, nil
	}

	result, err, _ := s.group.Do(uri, func() (any, error) {
		details, err := s.next.Lookup(ctx, uri)
		if err != nil {
			return Details{}, err
		}
		s.mu.Lock()
		s.memo[uri] = details
		s.mu.Unlock()
		return details, nil
	})
	if err != nil {
		return Details{}, err
	}
	return result.(Details), nil
}

// Forget drops a remembered result.
func (s *SharedLookup) Forget(uri string) {
	s.mu.Lock()
	delete(s.memo, uri)
	s.mu.Unlock()
	s.group.Forget(uri)
}
