package query

import (
	"errors"
	"fmt"
	"strings"

	"github.com/coolbeans/ccattrib/pkg/cache"
	"github.com/coolbeans/ccattrib/pkg/rdf"
)

// ErrNotCached is returned when a document has no cache entry. Callers must
// run the parse-and-populate path first.
var ErrNotCached = errors.New("document not cached")

// Querier runs statement queries against the entries of a DocumentCache.
type Querier struct {
	cache *cache.DocumentCache
}

// NewQuerier creates a querier over documentCache.
func NewQuerier(documentCache *cache.DocumentCache) *Querier {
	return &Querier{cache: documentCache}
}

// Statements returns the cached statements for key.
func (q *Querier) Statements(key string) ([]rdf.Statement, error) {
	entry, found := q.cache.Get(key)
	if !found {
		return nil, fmt.Errorf("%w: %s", ErrNotCached, key)
	}
	return entry.Statements, nil
}

// LicensedSubjects returns every subject of key asserting a license predicate.
func (q *Querier) LicensedSubjects(key string) ([]rdf.Resource, error) {
	return q.SubjectsByPredicates(key, LicensePredicates)
}

// SubjectsByPredicates runs FindSubjectsByPredicates against the entry for key.
func (q *Querier) SubjectsByPredicates(key string, predicateURIs []string) ([]rdf.Resource, error) {
	statements, err := q.Statements(key)
	if err != nil {
		return nil, err
	}
	return FindSubjectsByPredicates(statements, predicateURIs), nil
}

// Pairs runs FindPairsForSubject against the entry for key.
func (q *Querier) Pairs(key string, subject rdf.Resource) ([]Pair, error) {
	statements, err := q.Statements(key)
	if err != nil {
		return nil, err
	}
	return FindPairsForSubject(statements, subject), nil
}

// Value runs ResolveValue against the entry for key.
func (q *Querier) Value(key string, subject rdf.Resource, predicates []string) (rdf.Term, bool, error) {
	statements, err := q.Statements(key)
	if err != nil {
		return rdf.Term{}, false, err
	}
	term, found := ResolveValue(statements, subject, predicates)
	return term, found, nil
}

// Title returns the subject's title. Resource-valued titles yield their URI.
func (q *Querier) Title(key string, subject rdf.Resource) (string, bool, error) {
	return q.text(key, subject, TitlePredicates)
}

// Type returns the subject's DCMI type with the DCMI namespace stripped
// (for example "StillImage"). Literal types are returned as-is.
func (q *Querier) Type(key string, subject rdf.Resource) (string, bool, error) {
	term, found, err := q.Value(key, subject, TypePredicates)
	if err != nil || !found {
		return "", false, err
	}
	switch term.Kind {
	case rdf.KindResource:
		return strings.TrimPrefix(term.Value, rdf.NamespaceDCMIType), true, nil
	case rdf.KindLiteral:
		return term.Value, true, nil
	default:
		return "", false, nil
	}
}

// Author returns the attribution name.
func (q *Querier) Author(key string, subject rdf.Resource) (string, bool, error) {
	return q.text(key, subject, AuthorNamePredicates)
}

// AuthorURI returns the attribution URL.
func (q *Querier) AuthorURI(key string, subject rdf.Resource) (string, bool, error) {
	return q.text(key, subject, AuthorURIPredicates)
}

// License returns the license URI asserted for subject.
func (q *Querier) License(key string, subject rdf.Resource) (string, bool, error) {
	return q.text(key, subject, LicensePredicates)
}

// Source returns the URI a work can be found at, which is its subject URI.
func (q *Querier) Source(subject rdf.Resource) string {
	return subject.URI
}

// text resolves a value and flattens it to a string. Both term kinds carry
// their content in Value, so the switch only rejects invalid terms.
func (q *Querier) text(key string, subject rdf.Resource, predicates []string) (string, bool, error) {
	term, found, err := q.Value(key, subject, predicates)
	if err != nil || !found {
		return "", false, err
	}
	switch term.Kind {
	case rdf.KindResource, rdf.KindLiteral:
		return term.Value, true, nil
	default:
		return "", false, nil
	}
}
