package license

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func staticFetch(body string) FetchFunc {
	return func(context.Context, string) (io.ReadCloser, error) {
		return io.NopCloser(strings.NewReader(body)), nil
	}
}

func TestDocumentLookupRDFaTitle(t *testing.T) {
	body := `<html><head><title>Deed | Creative Commons</title></head><body>
<h1><span property="dct:title">Attribution
  4.0 International</span></h1>
<p>You are free to share.</p></body></html>`

	lookup := NewDocumentLookup(staticFetch(body))
	details, err := lookup.Lookup(context.Background(), "http://creativecommons.org/licenses/by/4.0/")
	require.NoError(t, err)
	assert.Equal(t, "Attribution 4.0 International", details.Name)
	assert.Empty(t, details.Identifier)
}

func TestDocumentLookupPrefersDCTermsOverDC(t *testing.T) {
	body := `<html><body>
<p property="dc:title">Legacy Name</p>
<p property="dct:title">Current Name</p>
</body></html>`

	title, err := DocumentTitle([]byte(body), "http://creativecommons.org/licenses/by/3.0/")
	require.NoError(t, err)
	assert.Equal(t, "Current Name", title)
}

func TestDocumentTitleReadabilityFallback(t *testing.T) {
	paragraph := strings.Repeat("This license lets others distribute, remix, adapt, and build upon your work, even commercially, as long as they credit you for the original creation. ", 6)
	body := `<html><head><title>Attribution Deed</title></head><body><article><h1>Attribution Deed</h1><p>` +
		paragraph + `</p><p>` + paragraph + `</p></article></body></html>`

	title, err := DocumentTitle([]byte(body), "http://creativecommons.org/licenses/by/4.0/")
	require.NoError(t, err)
	assert.Contains(t, title, "Attribution Deed")
}

func TestDocumentLookupFetchError(t *testing.T) {
	fetchErr := errors.New("offline")
	lookup := NewDocumentLookup(func(context.Context, string) (io.ReadCloser, error) {
		return nil, fetchErr
	})

	_, err := lookup.Lookup(context.Background(), "http://creativecommons.org/licenses/by/4.0/")
	assert.ErrorIs(t, err, fetchErr)
}
