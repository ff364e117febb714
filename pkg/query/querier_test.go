package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coolbeans/ccattrib/pkg/cache"
	"github.com/coolbeans/ccattrib/pkg/rdf"
)

func newTestQuerier(t *testing.T) *Querier {
	t.Helper()
	documentCache := cache.New()
	documentCache.PutFresh(pageURL, cache.Entry{Statements: sampleStatements()}, "T1")
	return NewQuerier(documentCache)
}

func TestQuerier_NotCached(t *testing.T) {
	q := NewQuerier(cache.New())

	_, err := q.Statements("http://missing/")
	assert.ErrorIs(t, err, ErrNotCached)

	_, err = q.LicensedSubjects("http://missing/")
	assert.ErrorIs(t, err, ErrNotCached)

	_, err = q.Pairs("http://missing/", rdf.NewResource(imageURL))
	assert.ErrorIs(t, err, ErrNotCached)

	_, _, err = q.Title("http://missing/", rdf.NewResource(imageURL))
	assert.ErrorIs(t, err, ErrNotCached)
}

func TestQuerier_LicensedSubjects(t *testing.T) {
	q := newTestQuerier(t)

	subjects, err := q.LicensedSubjects(pageURL)
	require.NoError(t, err)
	assert.ElementsMatch(t, []rdf.Resource{rdf.NewResource(pageURL), rdf.NewResource(imageURL)}, subjects)
}

func TestQuerier_Getters(t *testing.T) {
	q := newTestQuerier(t)
	image := rdf.NewResource(imageURL)

	title, found, err := q.Title(pageURL, image)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "Photo", title)

	author, found, err := q.Author(pageURL, image)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "Jane", author)

	_, found, err = q.AuthorURI(pageURL, image)
	require.NoError(t, err)
	assert.False(t, found)

	license, found, err := q.License(pageURL, image)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, ccBy, license)

	assert.Equal(t, imageURL, q.Source(image))
}

func TestQuerier_Type(t *testing.T) {
	documentCache := cache.New()
	documentCache.PutFresh(pageURL, cache.Entry{Statements: []rdf.Statement{
		rdf.NewStatement(imageURL, rdf.PredicateDCType, rdf.NamespaceDCMIType+"Text"),
		rdf.NewStatement(imageURL, rdf.PredicateDCTermsType, rdf.NamespaceDCMIType+"StillImage"),
		rdf.NewLiteralStatement("http://example.org/b", rdf.PredicateDCType, "Sound"),
	}}, "T1")
	q := NewQuerier(documentCache)

	kind, found, err := q.Type(pageURL, rdf.NewResource(imageURL))
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "StillImage", kind)

	kind, found, err = q.Type(pageURL, rdf.NewResource("http://example.org/b"))
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "Sound", kind)

	_, found, err = q.Type(pageURL, rdf.NewResource("http://example.org/none"))
	require.NoError(t, err)
	assert.False(t, found)
}

func TestQuerier_ResourceValuedTitle(t *testing.T) {
	documentCache := cache.New()
	documentCache.PutFresh(pageURL, cache.Entry{Statements: []rdf.Statement{
		rdf.NewStatement(imageURL, rdf.PredicateDCTermsTitle, "http://example.org/titles/1"),
	}}, "T1")
	q := NewQuerier(documentCache)

	title, found, err := q.Title(pageURL, rdf.NewResource(imageURL))
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "http://example.org/titles/1", title)
}
