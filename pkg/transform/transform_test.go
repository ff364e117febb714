package transform

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coolbeans/ccattrib/pkg/rdf"
)

const page = "http://photos.example.org/view/42"

func sample() []rdf.Statement {
	return []rdf.Statement{
		rdf.NewStatement("http://static.example.org/42.jpg", rdf.PredicateCCLicense, "http://creativecommons.org/licenses/by/4.0/"),
		rdf.NewLiteralStatement("http://static.example.org/42.jpg", "http://example.org/ns#caption", "Sunset"),
		rdf.NewLiteralStatement("http://static.example.org/42.jpg", rdf.PredicateAttributionName, "Jane"),
	}
}

func TestRuleMatches(t *testing.T) {
	rule := Rule{Pattern: "http://*.example.org/view/**"}
	assert.True(t, rule.Matches(page))
	assert.False(t, rule.Matches("http://photos.example.org/edit/42"))
	assert.False(t, rule.Matches("http://example.com/view/42"))
}

func TestNewPipelineRejectsInvalidPattern(t *testing.T) {
	_, err := NewPipeline(Rule{Name: "broken", Pattern: "http://example.org/[a-"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken")
}

func TestPipelineAppliesMatchingRulesInOrder(t *testing.T) {
	pipeline, err := NewPipeline(
		Rule{
			Name:       "caption-as-title",
			Pattern:    "http://photos.example.org/**",
			Transforms: []Transform{RewritePredicate("http://example.org/ns#caption", rdf.PredicateDCTermsTitle)},
		},
		Rule{
			Name:       "other-site",
			Pattern:    "http://other.example.com/**",
			Transforms: []Transform{DropPredicate(rdf.PredicateCCLicense)},
		},
		Rule{
			Name:       "drop-author",
			Pattern:    "http://photos.example.org/view/*",
			Transforms: []Transform{DropPredicate(rdf.PredicateAttributionName)},
		},
	)
	require.NoError(t, err)
	assert.Equal(t, 3, pipeline.Len())
	assert.Equal(t, []string{"caption-as-title", "drop-author"}, pipeline.Matching(page))

	input := sample()
	got := pipeline.Apply(page, input)

	want := []rdf.Statement{
		rdf.NewStatement("http://static.example.org/42.jpg", rdf.PredicateCCLicense, "http://creativecommons.org/licenses/by/4.0/"),
		rdf.NewLiteralStatement("http://static.example.org/42.jpg", rdf.PredicateDCTermsTitle, "Sunset"),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Apply() mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(sample(), input); diff != "" {
		t.Errorf("input was modified (-want +got):\n%s", diff)
	}
}

func TestNilPipeline(t *testing.T) {
	var pipeline *Pipeline
	input := sample()
	assert.Equal(t, input, pipeline.Apply(page, input))
	assert.Nil(t, pipeline.Matching(page))
	assert.Zero(t, pipeline.Len())
}

func TestRewriteSubjectPrefix(t *testing.T) {
	statements := []rdf.Statement{
		rdf.NewStatement("http://static.example.org/42.jpg", rdf.PredicateCCLicense, "http://creativecommons.org/licenses/by/4.0/"),
		rdf.NewStatement("http://example.org/album", "http://example.org/ns#contains", "http://static.example.org/42.jpg"),
		rdf.NewLiteralStatement("http://static.example.org/42.jpg", rdf.PredicateDCTermsTitle, "http://static.example.org/literal"),
	}

	got := RewriteSubjectPrefix("http://static.example.org/", "http://photos.example.org/view/").Apply(page, statements)

	want := []rdf.Statement{
		rdf.NewStatement("http://photos.example.org/view/42.jpg", rdf.PredicateCCLicense, "http://creativecommons.org/licenses/by/4.0/"),
		rdf.NewStatement("http://example.org/album", "http://example.org/ns#contains", "http://photos.example.org/view/42.jpg"),
		rdf.NewLiteralStatement("http://photos.example.org/view/42.jpg", rdf.PredicateDCTermsTitle, "http://static.example.org/literal"),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("RewriteSubjectPrefix mismatch (-want +got):\n%s", diff)
	}
}

func TestAssertLicense(t *testing.T) {
	assertion := AssertLicense("http://creativecommons.org/licenses/by-sa/4.0/")

	got := assertion.Apply(page, nil)
	require.Len(t, got, 1)
	assert.Equal(t, rdf.NewStatement(page, rdf.PredicateXHTMLLicense, "http://creativecommons.org/licenses/by-sa/4.0/"), got[0])

	licensed := []rdf.Statement{
		rdf.NewStatement(page, rdf.PredicateDCTermsLicense, "http://creativecommons.org/licenses/by/4.0/"),
	}
	assert.Equal(t, licensed, assertion.Apply(page, licensed))

	// A license on another subject does not count for the document.
	others := sample()
	got = assertion.Apply(page, others)
	assert.Len(t, got, len(others)+1)
	assert.Len(t, others, 3)
}
