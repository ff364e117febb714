// Package query answers subject and predicate lookups over a cached
// statement sequence.
//
// The free functions are pure and operate on any statement slice. Querier
// binds them to a DocumentCache and reports ErrNotCached for documents that
// have not been analyzed, so caching mistakes surface instead of producing
// empty results.
package query

import "github.com/coolbeans/ccattrib/pkg/rdf"

// Pair is one predicate-object pair describing a subject.
type Pair struct {
	Predicate rdf.Resource
	Object    rdf.Term
}

// FindSubjectsByPredicates returns every subject asserting at least one of
// the given predicates. Subjects are deduplicated by URI; callers must not
// rely on the order of the result. The result is empty, not nil, when
// nothing matches.
func FindSubjectsByPredicates(statements []rdf.Statement, predicateURIs []string) []rdf.Resource {
	wanted := make(map[string]struct{}, len(predicateURIs))
	for _, predicate := range predicateURIs {
		wanted[predicate] = struct{}{}
	}

	seen := make(map[string]struct{})
	subjects := make([]rdf.Resource, 0)
	for _, statement := range statements {
		if _, ok := wanted[statement.Predicate.URI]; !ok {
			continue
		}
		if _, dup := seen[statement.Subject.URI]; dup {
			continue
		}
		seen[statement.Subject.URI] = struct{}{}
		subjects = append(subjects, statement.Subject)
	}

	return subjects
}

// FindPairsForSubject returns the predicate-object pairs of every statement
// about subject, in storage order.
func FindPairsForSubject(statements []rdf.Statement, subject rdf.Resource) []Pair {
	var pairs []Pair
	for _, statement := range statements {
		if statement.Subject.URI == subject.URI {
			pairs = append(pairs, Pair{Predicate: statement.Predicate, Object: statement.Object})
		}
	}
	return pairs
}

// ResolveValue returns the object for the first predicate, in preference
// order, that has a statement about subject. Later predicates are not
// consulted once one matches.
func ResolveValue(statements []rdf.Statement, subject rdf.Resource, predicates []string) (rdf.Term, bool) {
	pairs := FindPairsForSubject(statements, subject)

	for _, predicate := range predicates {
		for _, pair := range pairs {
			if pair.Predicate.URI == predicate {
				return pair.Object, true
			}
		}
	}

	return rdf.Term{}, false
}
