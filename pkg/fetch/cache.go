package fetch

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ErrNotCacheable is returned when a document or URL cannot be stored.
var ErrNotCacheable = errors.New("document is not cacheable")

const indexFile = "index.json"

// DocumentCache keeps successfully fetched license documents on disk. Files
// mirror the document URL, so http://creativecommons.org/licenses/by/4.0/ is
// stored as <dir>/creativecommons.org/licenses/by/4.0/index.json and its
// legalcode next to it as legalcode.json. The scheme is ignored; http and
// https URIs of one license share an entry.
type DocumentCache struct {
	dir string
	ttl time.Duration
	now func() time.Time
}

// NewDocumentCache creates a cache rooted at dir whose entries expire ttl
// after they were fetched.
func NewDocumentCache(dir string, ttl time.Duration) (*DocumentCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory %s: %w", dir, err)
	}
	return &DocumentCache{dir: dir, ttl: ttl, now: time.Now}, nil
}

// Get returns the cached document for uri unless it is missing, unreadable
// or older than the TTL. Expired entries are removed.
func (cache *DocumentCache) Get(uri string) (Document, bool) {
	path, err := cache.pathFor(uri)
	if err != nil {
		return Document{}, false
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, false
	}

	var document Document
	if err := json.Unmarshal(data, &document); err != nil {
		return Document{}, false
	}

	if cache.now().Sub(document.FetchedAt) > cache.ttl {
		_ = os.Remove(path)
		return Document{}, false
	}

	return document, true
}

// Put stores document under its URL. Only 2xx responses with a body are
// kept; anything else returns ErrNotCacheable.
func (cache *DocumentCache) Put(document Document) error {
	if document.StatusCode < 200 || document.StatusCode > 299 {
		return fmt.Errorf("%w: status %d for %s", ErrNotCacheable, document.StatusCode, document.URL)
	}
	if len(document.Body) == 0 {
		return fmt.Errorf("%w: empty body for %s", ErrNotCacheable, document.URL)
	}

	path, err := cache.pathFor(document.URL)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create cache directory for %s: %w", document.URL, err)
	}

	data, err := json.Marshal(document)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", document.URL, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write cache file %s: %w", path, err)
	}

	return nil
}

// pathFor maps a document URL onto its cache file. Dot segments are
// rejected so no entry escapes the cache directory.
func (cache *DocumentCache) pathFor(uri string) (string, error) {
	parsed, err := url.Parse(uri)
	if err != nil || parsed.Hostname() == "" {
		return "", fmt.Errorf("%w: %s", ErrNotCacheable, uri)
	}

	parts := []string{cache.dir, strings.ToLower(parsed.Hostname())}
	for _, segment := range strings.Split(parsed.Path, "/") {
		switch segment {
		case "":
			continue
		case ".", "..":
			return "", fmt.Errorf("%w: dot segment in %s", ErrNotCacheable, uri)
		}
		parts = append(parts, segment)
	}

	if parsed.Path == "" || strings.HasSuffix(parsed.Path, "/") || len(parts) == 2 {
		return filepath.Join(append(parts, indexFile)...), nil
	}

	last := len(parts) - 1
	name := parts[last] + ".json"
	return filepath.Join(append(parts[:last], name)...), nil
}
