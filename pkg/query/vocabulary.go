package query

import "github.com/coolbeans/ccattrib/pkg/rdf"

// Predicate preference lists. Earlier entries win.
var (
	// LicensePredicates mark a subject as a licensed work.
	LicensePredicates = []string{
		rdf.PredicateXHTMLLicense,
		rdf.PredicateCCLicense,
		rdf.PredicateDCTermsLicense,
	}

	TitlePredicates = []string{
		rdf.PredicateDCTermsTitle,
		rdf.PredicateDCTitle,
	}

	TypePredicates = []string{
		rdf.PredicateDCTermsType,
		rdf.PredicateDCType,
	}

	AuthorNamePredicates = []string{rdf.PredicateAttributionName}

	AuthorURIPredicates = []string{rdf.PredicateAttributionURL}
)
