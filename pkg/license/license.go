// Package license canonicalizes license URIs, extracts Creative Commons
// license codes and classifies them by permissiveness.
package license

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrMalformedLicenseURI is returned for a Creative Commons URI that does not
// follow the /licenses/<code>/ or /publicdomain/<code>/ structure.
var ErrMalformedLicenseURI = errors.New("malformed creative commons license uri")

// Category is a coarse permissiveness classification.
type Category int

const (
	// Unknown covers non-CC licenses and unrecognized codes.
	Unknown Category = iota
	// Permissive licenses allow commercial use and derivatives.
	Permissive
	// Restricted licenses forbid commercial use or derivatives.
	Restricted
)

// String returns the lowercase category name.
func (c Category) String() string {
	switch c {
	case Permissive:
		return "permissive"
	case Restricted:
		return "restricted"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// Color returns the badge color used for the category, or "" when the
// category has none.
func (c Category) Color() string {
	switch c {
	case Permissive:
		return "green"
	case Restricted:
		return "yellow"
	default:
		return ""
	}
}

// Facts describes one license as asserted on a page.
type Facts struct {
	// URI is the canonical license URI.
	URI string `json:"uri" yaml:"uri"`

	// Name is a human-readable name. It defaults to the URI as asserted.
	Name string `json:"name,omitempty" yaml:"name,omitempty"`

	// Code is the CC license code such as "by-sa"; empty when unknown.
	Code string `json:"code,omitempty" yaml:"code,omitempty"`

	// Version is the license version path segment, e.g. "4.0".
	Version string `json:"version,omitempty" yaml:"version,omitempty"`

	// Jurisdiction is the ported jurisdiction segment, e.g. "uk".
	Jurisdiction string `json:"jurisdiction,omitempty" yaml:"jurisdiction,omitempty"`

	// Identifier is a short label such as "CC BY 4.0", filled by enrichment.
	Identifier string `json:"identifier,omitempty" yaml:"identifier,omitempty"`

	Category Category `json:"category" yaml:"category"`
}

// Label returns the text a license link should show: the identifier when
// known, then the license code, then the name, then the URI.
func (f Facts) Label() string {
	switch {
	case f.Identifier != "":
		return f.Identifier
	case f.Code != "":
		return f.Code
	case f.Name != "":
		return f.Name
	default:
		return f.URI
	}
}

// IsCreativeCommons reports whether the license lives in the CC namespace.
func (f Facts) IsCreativeCommons() bool {
	return IsCreativeCommons(f.URI)
}

var ccNamespaces = []string{
	"http://creativecommons.org/",
	"https://creativecommons.org/",
}

// licenseCodePattern captures kind, code, and the optional version and
// jurisdiction segments of a canonical CC URI.
var licenseCodePattern = regexp.MustCompile(
	`^https?://creativecommons\.org/(licenses|publicdomain)/([a-z\-+]+)/(?:([0-9][0-9.]*)/)?(?:([a-z][a-z\-]*)/)?`)

var categories = map[string]Category{
	"by":           Permissive,
	"by-sa":        Permissive,
	"mark":         Permissive,
	"zero":         Permissive,
	"publicdomain": Permissive,

	"by-nc":        Restricted,
	"by-nd":        Restricted,
	"by-nc-nd":     Restricted,
	"by-nc-sa":     Restricted,
	"sampling+":    Restricted,
	"nc-sampling+": Restricted,

	"sampling":   Unknown,
	"devnations": Unknown,
}

// IsCreativeCommons reports whether uri is in the Creative Commons namespace.
func IsCreativeCommons(uri string) bool {
	for _, namespace := range ccNamespaces {
		if strings.HasPrefix(uri, namespace) {
			return true
		}
	}
	return false
}

// Canonicalize truncates a CC license URI after its last "/" so variants
// such as ".../by/4.0/legalcode" and ".../by/4.0/deed.en" share one
// directory-style URI. Non-CC URIs are returned unchanged.
func Canonicalize(uri string) string {
	if !IsCreativeCommons(uri) {
		return uri
	}
	lastSlash := strings.LastIndex(uri, "/")
	if lastSlash < len(uri)-1 {
		return uri[:lastSlash+1]
	}
	return uri
}

// CategoryFor classifies a license code. Unrecognized codes are Unknown.
func CategoryFor(code string) Category {
	return categories[code]
}

// Resolve derives license facts from a license URI. For CC URIs the URI is
// canonicalized and the code extracted; a CC URI without the expected
// structure yields ErrMalformedLicenseURI together with facts whose code is
// empty and category Unknown. Other URIs pass through as Unknown.
func Resolve(uri string) (Facts, error) {
	facts := Facts{
		URI:      uri,
		Name:     uri,
		Category: Unknown,
	}

	if !IsCreativeCommons(uri) {
		return facts, nil
	}

	facts.URI = Canonicalize(uri)

	match := licenseCodePattern.FindStringSubmatch(facts.URI)
	if match == nil {
		return facts, fmt.Errorf("%w: %s", ErrMalformedLicenseURI, uri)
	}

	facts.Code = match[2]
	facts.Version = match[3]
	facts.Jurisdiction = match[4]
	facts.Category = CategoryFor(facts.Code)

	return facts, nil
}
