package attribution

import (
	"fmt"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
)

// RenderMarkdown renders the HTML attribution and converts it to Markdown,
// turning the license and author links into Markdown links.
func RenderMarkdown(f Facts) (string, error) {
	rendered, err := RenderHTML(f)
	if err != nil {
		return "", err
	}

	converter := md.NewConverter("", true, nil)
	markdown, err := converter.ConvertString(rendered)
	if err != nil {
		return "", fmt.Errorf("failed to convert attribution to markdown: %w", err)
	}
	return strings.TrimSpace(markdown), nil
}
