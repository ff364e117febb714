package license

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name         string
		uri          string
		wantURI      string
		wantCode     string
		wantVersion  string
		wantJuris    string
		wantCategory Category
	}{
		{
			name:         "legalcode canonicalized",
			uri:          "http://creativecommons.org/licenses/by/4.0/legalcode",
			wantURI:      "http://creativecommons.org/licenses/by/4.0/",
			wantCode:     "by",
			wantVersion:  "4.0",
			wantCategory: Permissive,
		},
		{
			name:         "restricted",
			uri:          "http://creativecommons.org/licenses/by-nc-sa/3.0/",
			wantURI:      "http://creativecommons.org/licenses/by-nc-sa/3.0/",
			wantCode:     "by-nc-sa",
			wantVersion:  "3.0",
			wantCategory: Restricted,
		},
		{
			name:         "ported",
			uri:          "http://creativecommons.org/licenses/by-sa/2.0/uk/deed.en",
			wantURI:      "http://creativecommons.org/licenses/by-sa/2.0/uk/",
			wantCode:     "by-sa",
			wantVersion:  "2.0",
			wantJuris:    "uk",
			wantCategory: Permissive,
		},
		{
			name:         "public domain dedication",
			uri:          "http://creativecommons.org/publicdomain/zero/1.0/",
			wantURI:      "http://creativecommons.org/publicdomain/zero/1.0/",
			wantCode:     "zero",
			wantVersion:  "1.0",
			wantCategory: Permissive,
		},
		{
			name:         "https accepted",
			uri:          "https://creativecommons.org/licenses/by-nd/4.0/",
			wantURI:      "https://creativecommons.org/licenses/by-nd/4.0/",
			wantCode:     "by-nd",
			wantVersion:  "4.0",
			wantCategory: Restricted,
		},
		{
			name:         "sampling plus",
			uri:          "http://creativecommons.org/licenses/sampling+/1.0/",
			wantURI:      "http://creativecommons.org/licenses/sampling+/1.0/",
			wantCode:     "sampling+",
			wantVersion:  "1.0",
			wantCategory: Restricted,
		},
		{
			name:         "sampling is unknown",
			uri:          "http://creativecommons.org/licenses/sampling/1.0/",
			wantURI:      "http://creativecommons.org/licenses/sampling/1.0/",
			wantCode:     "sampling",
			wantVersion:  "1.0",
			wantCategory: Unknown,
		},
		{
			name:         "devnations is unknown",
			uri:          "http://creativecommons.org/licenses/devnations/2.0/",
			wantURI:      "http://creativecommons.org/licenses/devnations/2.0/",
			wantCode:     "devnations",
			wantVersion:  "2.0",
			wantCategory: Unknown,
		},
		{
			name:         "non cc passes through",
			uri:          "http://www.gnu.org/licenses/gpl-3.0.html",
			wantURI:      "http://www.gnu.org/licenses/gpl-3.0.html",
			wantCategory: Unknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			facts, err := Resolve(tt.uri)
			require.NoError(t, err)
			assert.Equal(t, tt.wantURI, facts.URI)
			assert.Equal(t, tt.uri, facts.Name)
			assert.Equal(t, tt.wantCode, facts.Code)
			assert.Equal(t, tt.wantVersion, facts.Version)
			assert.Equal(t, tt.wantJuris, facts.Jurisdiction)
			assert.Equal(t, tt.wantCategory, facts.Category)
		})
	}
}

func TestResolveMalformed(t *testing.T) {
	for _, uri := range []string{
		"http://creativecommons.org/foo",
		"http://creativecommons.org/",
		"http://creativecommons.org/licenses/",
		"https://creativecommons.org/about/license/",
	} {
		t.Run(uri, func(t *testing.T) {
			facts, err := Resolve(uri)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformedLicenseURI))
			assert.Empty(t, facts.Code)
			assert.Equal(t, Unknown, facts.Category)
			assert.Equal(t, Canonicalize(uri), facts.URI)
		})
	}
}

func TestCanonicalize(t *testing.T) {
	assert.Equal(t, "http://creativecommons.org/licenses/by/4.0/",
		Canonicalize("http://creativecommons.org/licenses/by/4.0/deed.fr"))
	assert.Equal(t, "http://creativecommons.org/licenses/by/4.0/",
		Canonicalize("http://creativecommons.org/licenses/by/4.0/"))
	assert.Equal(t, "http://creativecommons.org/licenses/by/",
		Canonicalize("http://creativecommons.org/licenses/by/4.0"))
	assert.Equal(t, "http://example.org/license/deed",
		Canonicalize("http://example.org/license/deed"))
}

func TestCanonicalizeIdempotent(t *testing.T) {
	for _, uri := range []string{
		"http://creativecommons.org/licenses/by-sa/3.0/legalcode",
		"https://creativecommons.org/publicdomain/mark/1.0/deed.de",
		"http://example.org/x/y",
	} {
		once := Canonicalize(uri)
		assert.Equal(t, once, Canonicalize(once), uri)
	}
}

func TestCategoryFor(t *testing.T) {
	for _, code := range []string{"by", "by-sa", "mark", "zero", "publicdomain"} {
		assert.Equal(t, Permissive, CategoryFor(code), code)
	}
	for _, code := range []string{"by-nc", "by-nd", "by-nc-nd", "by-nc-sa", "sampling+", "nc-sampling+"} {
		assert.Equal(t, Restricted, CategoryFor(code), code)
	}
	for _, code := range []string{"sampling", "devnations", "", "gpl"} {
		assert.Equal(t, Unknown, CategoryFor(code), code)
	}
}

func TestCategoryStringAndColor(t *testing.T) {
	assert.Equal(t, "permissive", Permissive.String())
	assert.Equal(t, "restricted", Restricted.String())
	assert.Equal(t, "unknown", Unknown.String())

	assert.Equal(t, "green", Permissive.Color())
	assert.Equal(t, "yellow", Restricted.Color())
	assert.Empty(t, Unknown.Color())

	text, err := Restricted.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "restricted", string(text))
}

func TestFactsLabel(t *testing.T) {
	facts := Facts{URI: "http://creativecommons.org/licenses/by/4.0/"}
	assert.Equal(t, facts.URI, facts.Label())

	facts.Name = "Attribution 4.0 International"
	assert.Equal(t, "Attribution 4.0 International", facts.Label())

	facts.Code = "by"
	assert.Equal(t, "by", facts.Label())

	facts.Identifier = "CC BY 4.0"
	assert.Equal(t, "CC BY 4.0", facts.Label())
}
