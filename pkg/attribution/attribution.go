// Package attribution renders attribution statements for licensed works as
// RDFa-annotated HTML, plain text and Markdown.
package attribution

import (
	"errors"

	"github.com/coolbeans/ccattrib/pkg/license"
)

// ErrIncompleteSubject is returned when a subject has no license, since no
// attribution can be produced without one.
var ErrIncompleteSubject = errors.New("subject has no license")

// Separator joins the fragments of an attribution.
const Separator = " / "

// Facts gathers everything known about one licensed work. Empty strings mean
// the fact is absent.
type Facts struct {
	// Subject is the URI of the work.
	Subject string `json:"subject"`

	Title      string `json:"title,omitempty"`
	AuthorName string `json:"author_name,omitempty"`
	AuthorURI  string `json:"author_uri,omitempty"`

	// License is nil when the work asserts none.
	License *license.Facts `json:"license,omitempty"`
}

func (f Facts) validate() error {
	if f.License == nil {
		return ErrIncompleteSubject
	}
	return nil
}

func (f Facts) hasAttribution() bool {
	return f.AuthorName != "" || f.AuthorURI != ""
}
