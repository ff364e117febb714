// Package cache holds parsed statement sets per document, keyed by the
// document URI and validated against a freshness token.
package cache

import (
	"container/list"
	"slices"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/coolbeans/ccattrib/pkg/rdf"
)

// Entry is the cached result of parsing one document. LastModified is an
// opaque freshness token (typically a modification time).
type Entry struct {
	Statements   []rdf.Statement
	LastModified string
}

type cacheItem struct {
	key     string
	entry   Entry
	element *list.Element
}

// DocumentCache is a mutex-guarded map of document key to Entry. Entries are
// replaced wholesale and never mutated in place. When constructed with
// WithMaxDocuments the least recently used document is evicted once the bound
// is exceeded; otherwise entries live for the lifetime of the cache.
type DocumentCache struct {
	mu           sync.Mutex
	items        map[string]*cacheItem
	recency      *list.List // front = most recently used
	maxDocuments int

	logger  *zap.Logger
	metrics *cacheMetrics
}

// Option configures a DocumentCache.
type Option func(*DocumentCache)

// WithMaxDocuments bounds the number of cached documents. Values <= 0 leave
// the cache unbounded.
func WithMaxDocuments(maxDocuments int) Option {
	return func(c *DocumentCache) {
		c.maxDocuments = maxDocuments
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(logger *zap.Logger) Option {
	return func(c *DocumentCache) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMetrics registers cache metrics with the given registerer.
func WithMetrics(registerer prometheus.Registerer) Option {
	return func(c *DocumentCache) {
		c.metrics = newCacheMetrics(registerer)
	}
}

// New creates an empty document cache.
func New(opts ...Option) *DocumentCache {
	c := &DocumentCache{
		items:   make(map[string]*cacheItem),
		recency: list.New(),
		logger:  zap.NewNop(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Contains reports whether an entry exists for key, regardless of freshness.
func (c *DocumentCache) Contains(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, exists := c.items[key]
	return exists
}

// ContainsFresh reports whether an entry exists for key and was stored with
// the given freshness token. A present but stale entry counts as absent.
func (c *DocumentCache) ContainsFresh(key, token string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	item, exists := c.items[key]
	switch {
	case !exists:
		c.metrics.miss()
		return false
	case item.entry.LastModified != token:
		c.metrics.stale()
		c.logger.Debug("Stale cache entry",
			zap.String("key", key),
			zap.String("cached_token", item.entry.LastModified),
			zap.String("token", token))
		return false
	default:
		c.metrics.hit()
		return true
	}
}

// Put stores entry under key, replacing any prior entry.
func (c *DocumentCache) Put(key string, entry Entry) {
	stored := Entry{
		Statements:   slices.Clone(entry.Statements),
		LastModified: entry.LastModified,
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if item, exists := c.items[key]; exists {
		item.entry = stored
		c.recency.MoveToFront(item.element)
	} else {
		item := &cacheItem{key: key, entry: stored}
		item.element = c.recency.PushFront(item)
		c.items[key] = item
	}
	c.metrics.put(len(c.items))

	c.logger.Debug("Cached document",
		zap.String("key", key),
		zap.String("token", stored.LastModified),
		zap.Int("statements", len(stored.Statements)))

	c.evictUnsafe()
}

// PutFresh stores entry under key with its freshness token set to token.
func (c *DocumentCache) PutFresh(key string, entry Entry, token string) {
	entry.LastModified = token
	c.Put(key, entry)
}

// Get returns the entry for key regardless of freshness.
func (c *DocumentCache) Get(key string) (Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	item, exists := c.items[key]
	if !exists {
		return Entry{}, false
	}
	c.recency.MoveToFront(item.element)

	return Entry{
		Statements:   slices.Clone(item.entry.Statements),
		LastModified: item.entry.LastModified,
	}, true
}

// Invalidate removes the entry for key.
func (c *DocumentCache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if item, exists := c.items[key]; exists {
		c.recency.Remove(item.element)
		delete(c.items, key)
		c.metrics.setDocuments(len(c.items))
	}
}

// Clear removes all entries.
func (c *DocumentCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]*cacheItem)
	c.recency.Init()
	c.metrics.setDocuments(0)
}

// Len returns the number of cached documents.
func (c *DocumentCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Keys returns cached document keys, most recently used first.
func (c *DocumentCache) Keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys := make([]string, 0, len(c.items))
	for element := c.recency.Front(); element != nil; element = element.Next() {
		keys = append(keys, element.Value.(*cacheItem).key)
	}
	return keys
}

// evictUnsafe drops least recently used entries beyond maxDocuments.
func (c *DocumentCache) evictUnsafe() {
	if c.maxDocuments <= 0 {
		return
	}

	for len(c.items) > c.maxDocuments {
		oldest := c.recency.Back()
		if oldest == nil {
			return
		}
		item := oldest.Value.(*cacheItem)
		c.recency.Remove(oldest)
		delete(c.items, item.key)
		c.metrics.evict(len(c.items))

		c.logger.Debug("Evicted cached document", zap.String("key", item.key))
	}
}
