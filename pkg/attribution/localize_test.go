package attribution

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDisplayTitle(t *testing.T) {
	messages := DefaultMessages()
	page := "http://example.org/page"

	assert.Equal(t, "Photo", DisplayTitle(page, "http://example.org/img.jpg", "Photo", messages))
	assert.Equal(t, "Photo", DisplayTitle(page, page, "Photo", messages))
	assert.Equal(t, "Current page", DisplayTitle(page, page, "", messages))
	assert.Equal(t, "http://example.org/img.jpg", DisplayTitle(page, "http://example.org/img.jpg", "", messages))
}

func TestMessagesGet(t *testing.T) {
	messages := DefaultMessages().Merge(map[string]string{
		MessageCurrentPage: "Page actuelle",
	})

	assert.Equal(t, "Page actuelle", messages.Get(MessageCurrentPage))
	assert.Equal(t, "missing.label", messages.Get("missing.label"))
	assert.Equal(t, "Current page", DefaultMessages().Get(MessageCurrentPage), "merge must not mutate the original")
}

func TestMessagesPlural(t *testing.T) {
	messages := DefaultMessages()

	assert.Equal(t, "1 licensed object", messages.Plural(MessageLicensedObjects, 1))
	assert.Equal(t, "0 licensed objects", messages.Plural(MessageLicensedObjects, 0))
	assert.Equal(t, "3 licensed objects", messages.Plural(MessageLicensedObjects, 3))
}

func TestMessagesPluralCustomRule(t *testing.T) {
	// A single-form language.
	messages := NewMessages(map[string]string{"n": "%d items"}, func(int) int { return 0 })
	assert.Equal(t, "5 items", messages.Plural("n", 5))

	// Rule pointing past the available forms falls back to the last one.
	messages = NewMessages(map[string]string{"n": "one;many"}, func(int) int { return 7 })
	assert.Equal(t, "many", messages.Plural("n", 2))
}
