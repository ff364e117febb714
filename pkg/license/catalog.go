package license

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrNotInCatalog is returned by Catalog for licenses it has no entry for.
var ErrNotInCatalog = errors.New("license not in catalog")

type catalogEntry struct {
	short string // identifier stem, e.g. "CC BY-SA"
	title string // name stem, e.g. "Attribution-ShareAlike"
}

var catalogEntries = map[string]catalogEntry{
	"by":           {short: "CC BY", title: "Attribution"},
	"by-sa":        {short: "CC BY-SA", title: "Attribution-ShareAlike"},
	"by-nc":        {short: "CC BY-NC", title: "Attribution-NonCommercial"},
	"by-nd":        {short: "CC BY-ND", title: "Attribution-NoDerivatives"},
	"by-nc-nd":     {short: "CC BY-NC-ND", title: "Attribution-NonCommercial-NoDerivatives"},
	"by-nc-sa":     {short: "CC BY-NC-SA", title: "Attribution-NonCommercial-ShareAlike"},
	"zero":         {short: "CC0", title: "CC0"},
	"mark":         {short: "PDM", title: "Public Domain Mark"},
	"publicdomain": {short: "Public Domain", title: "Public Domain Dedication"},
	"sampling":     {short: "Sampling", title: "Sampling"},
	"sampling+":    {short: "Sampling+", title: "Sampling Plus"},
	"nc-sampling+": {short: "NC Sampling+", title: "NonCommercial Sampling Plus"},
	"devnations":   {short: "DevNations", title: "Developing Nations"},
}

// Catalog resolves license details offline from the code, version and
// jurisdiction encoded in a CC license URI.
type Catalog struct{}

// NewCatalog creates a catalog lookup.
func NewCatalog() *Catalog {
	return &Catalog{}
}

// Lookup implements Lookup.
func (c *Catalog) Lookup(_ context.Context, uri string) (Details, error) {
	facts, err := Resolve(uri)
	if err != nil {
		return Details{}, err
	}

	entry, ok := catalogEntries[facts.Code]
	if !ok {
		return Details{}, fmt.Errorf("%w: %s", ErrNotInCatalog, uri)
	}

	return Details{
		Name:       catalogName(entry, facts),
		Identifier: joinNonEmpty(entry.short, facts.Version, strings.ToUpper(facts.Jurisdiction)),
	}, nil
}

// catalogName follows the naming CC uses on its deeds: 4.0 licenses are
// "International", 3.0 unported licenses "Unported", earlier ones "Generic",
// and CC0 is "Universal".
func catalogName(entry catalogEntry, facts Facts) string {
	if facts.Jurisdiction != "" {
		return joinNonEmpty(entry.title, facts.Version, strings.ToUpper(facts.Jurisdiction))
	}

	suffix := ""
	switch {
	case facts.Code == "zero":
		suffix = "Universal"
	case facts.Version == "":
	case strings.HasPrefix(facts.Version, "4"):
		suffix = "International"
	case strings.HasPrefix(facts.Version, "3"):
		suffix = "Unported"
	case strings.HasPrefix(facts.Code, "by"):
		suffix = "Generic"
	}

	return joinNonEmpty(entry.title, facts.Version, suffix)
}

func joinNonEmpty(parts ...string) string {
	kept := parts[:0:0]
	for _, part := range parts {
		if part != "" {
			kept = append(kept, part)
		}
	}
	return strings.Join(kept, " ")
}
