// Package rdf provides the statement model shared by the cache, query and
// attribution packages, plus N-Triples and Turtle codecs used by the CLI.
package rdf

import "fmt"

// Resource is an IRI-identified node. Two resources are equal when their
// URIs are equal.
type Resource struct {
	URI string
}

// NewResource creates a resource for the given URI.
func NewResource(uri string) Resource {
	return Resource{URI: uri}
}

// Equals reports whether both resources carry the same URI.
func (r Resource) Equals(other Resource) bool {
	return r.URI == other.URI
}

// String returns the resource in angle-bracket form.
func (r Resource) String() string {
	return "<" + r.URI + ">"
}

// TermKind tags the variant held by a Term.
type TermKind int

const (
	// KindResource marks a term holding an IRI.
	KindResource TermKind = iota + 1

	// KindLiteral marks a term holding a plain string value.
	KindLiteral
)

// String returns the kind name.
func (k TermKind) String() string {
	switch k {
	case KindResource:
		return "resource"
	case KindLiteral:
		return "literal"
	default:
		return "invalid"
	}
}

// Term is the object position of a statement: either a Resource or a Literal.
// The zero Term is invalid.
type Term struct {
	Kind  TermKind
	Value string
}

// ResourceTerm wraps a URI as a resource term.
func ResourceTerm(uri string) Term {
	return Term{Kind: KindResource, Value: uri}
}

// LiteralTerm wraps a string as a literal term.
func LiteralTerm(value string) Term {
	return Term{Kind: KindLiteral, Value: value}
}

// Resource returns the term as a Resource when it holds one.
func (t Term) Resource() (Resource, bool) {
	if t.Kind != KindResource {
		return Resource{}, false
	}
	return Resource{URI: t.Value}, true
}

// Literal returns the literal value when the term holds one.
func (t Term) Literal() (string, bool) {
	if t.Kind != KindLiteral {
		return "", false
	}
	return t.Value, true
}

// IsValid reports whether the term carries a known kind.
func (t Term) IsValid() bool {
	return t.Kind == KindResource || t.Kind == KindLiteral
}

// String renders the term in N-Triples notation.
func (t Term) String() string {
	switch t.Kind {
	case KindResource:
		return "<" + escapeIRI(t.Value) + ">"
	case KindLiteral:
		return `"` + escapeLiteralString(t.Value) + `"`
	default:
		return "<invalid>"
	}
}

// Statement is one subject-predicate-object assertion produced by a parser.
type Statement struct {
	Subject   Resource
	Predicate Resource
	Object    Term
}

// NewStatement creates a statement with a resource object.
func NewStatement(subject, predicate, object string) Statement {
	return Statement{
		Subject:   Resource{URI: subject},
		Predicate: Resource{URI: predicate},
		Object:    ResourceTerm(object),
	}
}

// NewLiteralStatement creates a statement with a literal object.
func NewLiteralStatement(subject, predicate, value string) Statement {
	return Statement{
		Subject:   Resource{URI: subject},
		Predicate: Resource{URI: predicate},
		Object:    LiteralTerm(value),
	}
}

// Equals checks if two statements have identical components.
func (s Statement) Equals(other Statement) bool {
	return s.Subject == other.Subject &&
		s.Predicate == other.Predicate &&
		s.Object == other.Object
}

// IsValid returns true if subject and predicate are non-empty and the object
// is a valid term.
func (s Statement) IsValid() bool {
	return s.Subject.URI != "" && s.Predicate.URI != "" && s.Object.IsValid()
}

// String returns the statement in N-Triples format.
func (s Statement) String() string {
	return fmt.Sprintf("%s %s %s .", s.Subject, s.Predicate, s.Object)
}
