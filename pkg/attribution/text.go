package attribution

import (
	"fmt"
	"strings"
)

// RenderText renders a plain-text attribution such as
//
//	Photo (http://example.org/img.jpg) / Jane / CC BY 4.0 (http://creativecommons.org/licenses/by/4.0/)
func RenderText(f Facts) (string, error) {
	if err := f.validate(); err != nil {
		return "", fmt.Errorf("%w: %s", err, f.Subject)
	}

	fragments := make([]string, 0, 3)

	if f.Title != "" {
		fragments = append(fragments, fmt.Sprintf("%s (%s)", f.Title, f.Subject))
	} else {
		fragments = append(fragments, "Work found at "+f.Subject)
	}

	switch {
	case f.AuthorName != "" && f.AuthorURI != "":
		fragments = append(fragments, fmt.Sprintf("%s (%s)", f.AuthorName, f.AuthorURI))
	case f.AuthorName != "":
		fragments = append(fragments, f.AuthorName)
	case f.AuthorURI != "":
		fragments = append(fragments, fmt.Sprintf("(%s)", f.AuthorURI))
	}

	fragments = append(fragments, fmt.Sprintf("%s (%s)", f.License.Label(), f.License.URI))

	return strings.Join(fragments, Separator), nil
}
