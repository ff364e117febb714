package attribution

import (
	"strconv"
	"strings"
)

// Message names used by the formatter.
const (
	MessageCurrentPage     = "object.title.current-page.label"
	MessageLicensedObjects = "objects.count.label"
)

// Localizer supplies user-facing strings. Plural picks the form matching n
// and substitutes "%d" with n.
type Localizer interface {
	Get(name string) string
	Plural(name string, n int) string
}

// PluralRule maps a count to the index of a plural form.
type PluralRule func(n int) int

// EnglishPlural selects form 0 for one and form 1 otherwise.
func EnglishPlural(n int) int {
	if n == 1 {
		return 0
	}
	return 1
}

// Messages is an in-memory Localizer. Plural messages hold their forms
// separated by ";". Unknown names resolve to the name itself.
type Messages struct {
	strings map[string]string
	rule    PluralRule
}

// DefaultMessages returns the English message set.
func DefaultMessages() *Messages {
	return NewMessages(map[string]string{
		MessageCurrentPage:     "Current page",
		MessageLicensedObjects: "%d licensed object;%d licensed objects",
	}, EnglishPlural)
}

// NewMessages creates a Localizer from a message table. A nil rule means
// EnglishPlural.
func NewMessages(table map[string]string, rule PluralRule) *Messages {
	if rule == nil {
		rule = EnglishPlural
	}
	copied := make(map[string]string, len(table))
	for name, value := range table {
		copied[name] = value
	}
	return &Messages{strings: copied, rule: rule}
}

// Merge returns a copy of m with overrides applied.
func (m *Messages) Merge(overrides map[string]string) *Messages {
	merged := NewMessages(m.strings, m.rule)
	for name, value := range overrides {
		merged.strings[name] = value
	}
	return merged
}

// Get implements Localizer.
func (m *Messages) Get(name string) string {
	if value, ok := m.strings[name]; ok {
		return value
	}
	return name
}

// Plural implements Localizer. An out-of-range form index falls back to the
// last form.
func (m *Messages) Plural(name string, n int) string {
	forms := strings.Split(m.Get(name), ";")
	index := m.rule(n)
	if index < 0 || index >= len(forms) {
		index = len(forms) - 1
	}
	return strings.ReplaceAll(forms[index], "%d", strconv.Itoa(n))
}

// DisplayTitle names a work for display: its title when known, the localized
// current-page label when the work is the document itself, and its URI
// otherwise.
func DisplayTitle(documentURI, subjectURI, title string, localizer Localizer) string {
	if title != "" {
		return title
	}
	if subjectURI == documentURI {
		return localizer.Get(MessageCurrentPage)
	}
	return subjectURI
}
