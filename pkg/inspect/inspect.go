// Package inspect ties the document cache, statement queries, license
// resolution and attribution rendering together behind the operations a host
// calls after parsing a page.
package inspect

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/coolbeans/ccattrib/pkg/attribution"
	"github.com/coolbeans/ccattrib/pkg/cache"
	"github.com/coolbeans/ccattrib/pkg/license"
	"github.com/coolbeans/ccattrib/pkg/query"
	"github.com/coolbeans/ccattrib/pkg/rdf"
	"github.com/coolbeans/ccattrib/pkg/transform"
)

// systemScheme marks browser-internal pages that are never analyzed.
const systemScheme = "about:"

// ParseFunc produces the statements of a document. Inspect calls it only
// when the cache holds no fresh entry.
type ParseFunc func(key string) ([]rdf.Statement, error)

// Inspector owns a document cache and answers attribution queries against it.
type Inspector struct {
	cache      *cache.DocumentCache
	querier    *query.Querier
	pipeline   *transform.Pipeline
	localizer  attribution.Localizer
	catalog    license.Lookup
	enrichment license.Lookup
	logger     *zap.Logger
}

// Option configures an Inspector.
type Option func(*Inspector)

// WithCache uses documentCache instead of a fresh unbounded cache.
func WithCache(documentCache *cache.DocumentCache) Option {
	return func(i *Inspector) {
		if documentCache != nil {
			i.cache = documentCache
		}
	}
}

// WithPipeline sets the post-parse transforms applied by Analyze.
func WithPipeline(pipeline *transform.Pipeline) Option {
	return func(i *Inspector) {
		i.pipeline = pipeline
	}
}

// WithLocalizer sets the localizer used for display titles.
func WithLocalizer(localizer attribution.Localizer) Option {
	return func(i *Inspector) {
		if localizer != nil {
			i.localizer = localizer
		}
	}
}

// WithCatalog sets the lookup consulted synchronously whenever license facts
// are assembled. It must not block; nil disables it. Defaults to
// license.NewCatalog().
func WithCatalog(catalog license.Lookup) Option {
	return func(i *Inspector) {
		i.catalog = catalog
	}
}

// WithEnrichment sets the asynchronous lookup used by LicenseDetails.
func WithEnrichment(lookup license.Lookup) Option {
	return func(i *Inspector) {
		i.enrichment = lookup
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(i *Inspector) {
		if logger != nil {
			i.logger = logger
		}
	}
}

// New creates an Inspector.
func New(opts ...Option) *Inspector {
	i := &Inspector{
		localizer: attribution.DefaultMessages(),
		catalog:   license.NewCatalog(),
		logger:    zap.NewNop(),
	}

	for _, opt := range opts {
		opt(i)
	}

	if i.cache == nil {
		i.cache = cache.New(cache.WithLogger(i.logger))
	}
	i.querier = query.NewQuerier(i.cache)

	return i
}

// Cache returns the underlying document cache.
func (i *Inspector) Cache() *cache.DocumentCache {
	return i.cache
}

// Querier returns a querier over the underlying cache.
func (i *Inspector) Querier() *query.Querier {
	return i.querier
}

// Analyze applies the transform pipeline to statements and stores the result
// for key under token, replacing any previous entry.
func (i *Inspector) Analyze(key, token string, statements []rdf.Statement) {
	transformed := i.pipeline.Apply(key, statements)

	i.cache.PutFresh(key, cache.Entry{Statements: transformed}, token)

	i.logger.Debug("analyzed document",
		zap.String("document", key),
		zap.String("token", token),
		zap.Int("statements", len(transformed)),
		zap.Strings("rules", i.pipeline.Matching(key)))
}

// Inspect returns the licensed subjects of key, parsing the document first
// when no entry with a matching token is cached. System pages are skipped and
// yield no subjects.
func (i *Inspector) Inspect(key, token string, parse ParseFunc) ([]rdf.Resource, error) {
	if strings.HasPrefix(key, systemScheme) {
		i.logger.Debug("skipping system page", zap.String("document", key))
		return []rdf.Resource{}, nil
	}

	if !i.cache.ContainsFresh(key, token) {
		statements, err := parse(key)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", key, err)
		}
		i.Analyze(key, token, statements)
	}

	return i.FindLicensedSubjects(key)
}

// FindLicensedSubjects returns every subject of key that asserts a license.
func (i *Inspector) FindLicensedSubjects(key string) ([]rdf.Resource, error) {
	return i.querier.LicensedSubjects(key)
}

// Facts gathers title, author and license facts for subject. A subject
// without a license yields facts with a nil License. A malformed CC license
// URI degrades to Unknown facts rather than failing.
func (i *Inspector) Facts(key string, subject rdf.Resource) (attribution.Facts, error) {
	facts := attribution.Facts{Subject: i.querier.Source(subject)}

	title, _, err := i.querier.Title(key, subject)
	if err != nil {
		return attribution.Facts{}, err
	}
	facts.Title = title

	if facts.AuthorName, _, err = i.querier.Author(key, subject); err != nil {
		return attribution.Facts{}, err
	}
	if facts.AuthorURI, _, err = i.querier.AuthorURI(key, subject); err != nil {
		return attribution.Facts{}, err
	}

	licenseURI, found, err := i.querier.License(key, subject)
	if err != nil {
		return attribution.Facts{}, err
	}
	if found {
		licenseFacts := i.resolveLicense(licenseURI)
		facts.License = &licenseFacts
	}

	return facts, nil
}

func (i *Inspector) resolveLicense(uri string) license.Facts {
	facts, err := license.Resolve(uri)
	if err != nil {
		i.logger.Warn("unrecognized license uri", zap.String("license", uri), zap.Error(err))
		return facts
	}

	if i.catalog != nil {
		details, err := i.catalog.Lookup(context.Background(), facts.URI)
		if err == nil {
			facts = license.Merge(facts, details)
		}
	}
	return facts
}

// AttributionHTML renders the RDFa attribution for subject.
func (i *Inspector) AttributionHTML(key string, subject rdf.Resource) (string, error) {
	return i.render(key, subject, attribution.RenderHTML)
}

// AttributionText renders the plain-text attribution for subject.
func (i *Inspector) AttributionText(key string, subject rdf.Resource) (string, error) {
	return i.render(key, subject, attribution.RenderText)
}

// AttributionMarkdown renders the Markdown attribution for subject.
func (i *Inspector) AttributionMarkdown(key string, subject rdf.Resource) (string, error) {
	return i.render(key, subject, attribution.RenderMarkdown)
}

func (i *Inspector) render(key string, subject rdf.Resource, renderer func(attribution.Facts) (string, error)) (string, error) {
	facts, err := i.Facts(key, subject)
	if err != nil {
		return "", err
	}
	return renderer(facts)
}

// DisplayTitle names subject for display within document key.
func (i *Inspector) DisplayTitle(key string, subject rdf.Resource) (string, error) {
	title, _, err := i.querier.Title(key, subject)
	if err != nil {
		return "", err
	}
	return attribution.DisplayTitle(key, subject.URI, title, i.localizer), nil
}

// Localizer returns the localizer used for display strings.
func (i *Inspector) Localizer() attribution.Localizer {
	return i.localizer
}

// LicenseDetails resolves the license of subject and hands the facts to done,
// enriched by the configured enrichment lookup when there is one. Errors
// from the cache or a missing license are returned directly and done is not
// called; otherwise done is called exactly once, possibly on another
// goroutine. An enrichment failure is logged and the unenriched facts are
// delivered.
func (i *Inspector) LicenseDetails(ctx context.Context, key string, subject rdf.Resource, done func(license.Facts)) error {
	facts, err := i.Facts(key, subject)
	if err != nil {
		return err
	}
	if facts.License == nil {
		return fmt.Errorf("%w: %s", attribution.ErrIncompleteSubject, subject.URI)
	}

	license.Enrich(ctx, *facts.License, i.enrichment, func(enriched license.Facts, err error) {
		if err != nil && !errors.Is(err, context.Canceled) {
			i.logger.Warn("license enrichment failed",
				zap.String("license", enriched.URI),
				zap.Error(err))
		}
		done(enriched)
	})
	return nil
}
