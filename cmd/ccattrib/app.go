package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"go.uber.org/zap"

	"github.com/coolbeans/ccattrib/pkg/cache"
	"github.com/coolbeans/ccattrib/pkg/config"
	"github.com/coolbeans/ccattrib/pkg/inspect"
	"github.com/coolbeans/ccattrib/pkg/snapshot"
)

// app carries the state shared by every command of one invocation.
type app struct {
	configPath string
	dbPath     string
	verbose    bool
	metrics    bool

	config    *config.Config
	logger    *zap.Logger
	registry  *prometheus.Registry
	inspector *inspect.Inspector
	snapshots *snapshot.Store
}

func (a *app) setup(ctx context.Context) error {
	bootstrap := zap.NewNop()
	if a.verbose {
		bootstrap = a.newLogger("debug", "console")
	}

	cfg, err := config.NewLoader(bootstrap).Load(a.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	a.config = cfg

	level := cfg.Log.Level
	if a.verbose {
		level = "debug"
	}
	a.logger = a.newLogger(level, cfg.Log.Encoding)

	pipeline, err := cfg.Pipeline()
	if err != nil {
		return fmt.Errorf("failed to build site rules: %w", err)
	}

	a.registry = prometheus.NewRegistry()
	documentCache := cache.New(
		cache.WithMaxDocuments(cfg.Cache.MaxDocuments),
		cache.WithLogger(a.logger.Named("cache")),
		cache.WithMetrics(a.registry),
	)

	a.inspector = inspect.New(
		inspect.WithCache(documentCache),
		inspect.WithPipeline(pipeline),
		inspect.WithLocalizer(cfg.Localizer()),
		inspect.WithLogger(a.logger.Named("inspect")),
	)

	dbPath := a.dbPath
	if dbPath == "" {
		if dbPath, err = cfg.SnapshotPath(); err != nil {
			return err
		}
	}
	a.snapshots, err = snapshot.Open(ctx, dbPath, a.logger.Named("snapshot"))
	if err != nil {
		return err
	}

	restored, err := a.snapshots.Restore(ctx, documentCache)
	if err != nil {
		return fmt.Errorf("failed to restore snapshots: %w", err)
	}
	a.logger.Debug("ready", zap.String("db", dbPath), zap.Int("documents", restored))

	return nil
}

// ensureCached reloads key from the snapshot when a bounded cache evicted it
// during Restore. Documents that were never analyzed are left to the query
// layer, which reports them as not cached.
func (a *app) ensureCached(ctx context.Context, key string) error {
	documentCache := a.inspector.Cache()
	if documentCache.Contains(key) {
		return nil
	}

	entry, err := a.snapshots.Load(ctx, key)
	if errors.Is(err, snapshot.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	documentCache.PutFresh(key, entry, entry.LastModified)
	a.logger.Debug("reloaded evicted snapshot", zap.String("document", key))
	return nil
}

func (a *app) newLogger(level, encoding string) *zap.Logger {
	zapConfig := zap.NewProductionConfig()
	zapConfig.Encoding = encoding
	zapConfig.DisableStacktrace = true
	if parsed, err := zap.ParseAtomicLevel(level); err == nil {
		zapConfig.Level = parsed
	}
	if encoding == "console" {
		zapConfig.EncoderConfig = zap.NewDevelopmentEncoderConfig()
	}

	logger, err := zapConfig.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

func (a *app) teardown(stderr io.Writer) error {
	var errs []error

	if a.metrics && a.registry != nil {
		if err := writeMetrics(stderr, a.registry); err != nil {
			errs = append(errs, err)
		}
	}

	if a.snapshots != nil {
		if err := a.snapshots.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close snapshot database: %w", err))
		}
	}

	if a.logger != nil {
		// Sync fails on terminals; nothing useful can be done about it.
		_ = a.logger.Sync()
	}

	return errors.Join(errs...)
}

func writeMetrics(w io.Writer, gatherer prometheus.Gatherer) error {
	families, err := gatherer.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}

	encoder := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, family := range families {
		if err := encoder.Encode(family); err != nil {
			return fmt.Errorf("failed to encode metrics: %w", err)
		}
	}
	return nil
}
