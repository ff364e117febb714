// Package watch re-runs a handler whenever one of a set of statement files
// changes on disk.
package watch

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// ErrStopped is returned when starting a watcher that was already stopped.
var ErrStopped = errors.New("watcher stopped")

// Handler is called with the absolute path of a changed file once its
// changes have settled.
type Handler func(ctx context.Context, path string) error

// Watcher watches individual files. It watches their parent directories so
// that editors which replace a file on save are still observed.
type Watcher struct {
	mu       sync.Mutex
	watcher  *fsnotify.Watcher
	handler  Handler
	files    map[string]bool
	dirs     map[string]bool
	pending  map[string]time.Time
	debounce time.Duration
	logger   *zap.Logger

	stopCh  chan struct{}
	doneCh  chan struct{}
	running bool
	stopped bool

	stats Stats
}

// Stats counts watcher activity.
type Stats struct {
	Events   int
	Handled  int
	Failures int
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets how long a file must stay quiet before the handler runs.
func WithDebounce(debounce time.Duration) Option {
	return func(w *Watcher) {
		if debounce > 0 {
			w.debounce = debounce
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// New creates a watcher that calls handler for changed files.
func New(handler Handler, opts ...Option) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	w := &Watcher{
		watcher:  fsWatcher,
		handler:  handler,
		files:    make(map[string]bool),
		dirs:     make(map[string]bool),
		pending:  make(map[string]time.Time),
		debounce: 200 * time.Millisecond,
		logger:   zap.NewNop(),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Add starts watching path.
func (w *Watcher) Add(path string) error {
	absolute, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", path, err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	dir := filepath.Dir(absolute)
	if !w.dirs[dir] {
		if err := w.watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
		w.dirs[dir] = true
	}
	w.files[absolute] = true

	w.logger.Debug("watching file", zap.String("path", absolute))
	return nil
}

// Files returns the watched files.
func (w *Watcher) Files() []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	files := make([]string, 0, len(w.files))
	for file := range w.files {
		files = append(files, file)
	}
	return files
}

// Start runs the event loop in a goroutine until ctx is done or Stop is
// called. Starting a running watcher does nothing. A stopped watcher cannot
// be restarted and returns ErrStopped.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return ErrStopped
	}
	if w.running {
		return nil
	}
	w.running = true

	go w.run(ctx)
	return nil
}

// Stop stops the event loop, waits for it to exit and releases the
// underlying watcher. Stop on a watcher that was never started only closes
// it; later calls do nothing.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return nil
	}
	wasRunning := w.running
	w.running = false
	w.stopped = true
	w.mu.Unlock()

	if wasRunning {
		close(w.stopCh)
		<-w.doneCh
	}
	return w.watcher.Close()
}

// Stats returns a copy of the activity counters.
func (w *Watcher) Stats() Stats {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stats
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	tick := w.debounce / 4
	if tick < 10*time.Millisecond {
		tick = 10 * time.Millisecond
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-w.stopCh:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("file watcher error", zap.Error(err))

		case <-ticker.C:
			w.processPending(ctx)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) && !event.Has(fsnotify.Rename) {
		return
	}

	path := filepath.Clean(event.Name)

	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.files[path] {
		return
	}
	w.stats.Events++
	w.pending[path] = time.Now()
}

func (w *Watcher) processPending(ctx context.Context) {
	threshold := time.Now().Add(-w.debounce)

	w.mu.Lock()
	var ready []string
	for path, changedAt := range w.pending {
		if changedAt.Before(threshold) {
			ready = append(ready, path)
			delete(w.pending, path)
		}
	}
	w.mu.Unlock()

	for _, path := range ready {
		err := w.handler(ctx, path)

		w.mu.Lock()
		w.stats.Handled++
		if err != nil {
			w.stats.Failures++
		}
		w.mu.Unlock()

		if err != nil {
			w.logger.Warn("failed to handle change", zap.String("path", path), zap.Error(err))
			continue
		}
		w.logger.Debug("handled change", zap.String("path", path))
	}
}
