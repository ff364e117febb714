// Package transform patches parsed statement sets for particular sites
// before they enter the document cache.
package transform

import (
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/coolbeans/ccattrib/pkg/rdf"
)

// Transform rewrites the statements parsed from documentURI. Implementations
// must not modify the input slice.
type Transform interface {
	Apply(documentURI string, statements []rdf.Statement) []rdf.Statement
}

// Func adapts a function to Transform.
type Func func(documentURI string, statements []rdf.Statement) []rdf.Statement

// Apply implements Transform.
func (f Func) Apply(documentURI string, statements []rdf.Statement) []rdf.Statement {
	return f(documentURI, statements)
}

// Rule applies its transforms to documents whose URI matches Pattern. The
// pattern uses doublestar syntax, so "https://*.example.org/**" matches
// every page below any subdomain.
type Rule struct {
	Name       string
	Pattern    string
	Transforms []Transform
}

// Matches reports whether the rule applies to documentURI.
func (r Rule) Matches(documentURI string) bool {
	matched, err := doublestar.Match(r.Pattern, documentURI)
	return err == nil && matched
}

// Pipeline is an ordered list of rules.
type Pipeline struct {
	rules []Rule
}

// NewPipeline validates the rule patterns and builds a pipeline.
func NewPipeline(rules ...Rule) (*Pipeline, error) {
	for _, rule := range rules {
		if !doublestar.ValidatePattern(rule.Pattern) {
			return nil, fmt.Errorf("invalid pattern %q for rule %q", rule.Pattern, rule.Name)
		}
	}
	return &Pipeline{rules: append([]Rule(nil), rules...)}, nil
}

// Apply runs every matching rule in order. A nil pipeline returns the input.
func (p *Pipeline) Apply(documentURI string, statements []rdf.Statement) []rdf.Statement {
	if p == nil {
		return statements
	}
	for _, rule := range p.rules {
		if !rule.Matches(documentURI) {
			continue
		}
		for _, transform := range rule.Transforms {
			statements = transform.Apply(documentURI, statements)
		}
	}
	return statements
}

// Matching returns the names of the rules that apply to documentURI.
func (p *Pipeline) Matching(documentURI string) []string {
	if p == nil {
		return nil
	}
	var names []string
	for _, rule := range p.rules {
		if rule.Matches(documentURI) {
			names = append(names, rule.Name)
		}
	}
	return names
}

// Len returns the number of rules.
func (p *Pipeline) Len() int {
	if p == nil {
		return 0
	}
	return len(p.rules)
}

// RewritePredicate replaces predicate from with to.
func RewritePredicate(from, to string) Transform {
	return Func(func(_ string, statements []rdf.Statement) []rdf.Statement {
		result := make([]rdf.Statement, len(statements))
		for i, statement := range statements {
			if statement.Predicate.URI == from {
				statement.Predicate = rdf.NewResource(to)
			}
			result[i] = statement
		}
		return result
	})
}

// DropPredicate removes every statement using predicate.
func DropPredicate(predicate string) Transform {
	return Func(func(_ string, statements []rdf.Statement) []rdf.Statement {
		result := make([]rdf.Statement, 0, len(statements))
		for _, statement := range statements {
			if statement.Predicate.URI != predicate {
				result = append(result, statement)
			}
		}
		return result
	})
}

// RewriteSubjectPrefix moves subjects and resource objects starting with
// from onto to, for sites that describe a work under a different URI than
// the one users visit.
func RewriteSubjectPrefix(from, to string) Transform {
	rebase := func(uri string) string {
		if strings.HasPrefix(uri, from) {
			return to + strings.TrimPrefix(uri, from)
		}
		return uri
	}

	return Func(func(_ string, statements []rdf.Statement) []rdf.Statement {
		result := make([]rdf.Statement, len(statements))
		for i, statement := range statements {
			statement.Subject = rdf.NewResource(rebase(statement.Subject.URI))
			if statement.Object.Kind == rdf.KindResource {
				statement.Object = rdf.ResourceTerm(rebase(statement.Object.Value))
			}
			result[i] = statement
		}
		return result
	})
}

// AssertLicense adds an xhv:license statement for the document itself when
// it asserts no license of its own.
func AssertLicense(licenseURI string) Transform {
	return Func(func(documentURI string, statements []rdf.Statement) []rdf.Statement {
		document := rdf.NewResource(documentURI)
		for _, statement := range statements {
			if statement.Subject.Equals(document) && isLicensePredicate(statement.Predicate.URI) {
				return statements
			}
		}

		result := make([]rdf.Statement, len(statements), len(statements)+1)
		copy(result, statements)
		return append(result, rdf.NewStatement(documentURI, rdf.PredicateXHTMLLicense, licenseURI))
	})
}

func isLicensePredicate(uri string) bool {
	switch uri {
	case rdf.PredicateXHTMLLicense, rdf.PredicateCCLicense, rdf.PredicateDCTermsLicense:
		return true
	}
	return false
}
