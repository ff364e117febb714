package license

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	readability "github.com/go-shiori/go-readability"
	"golang.org/x/net/html"
)

// ErrNoTitle is returned when a license document carries no usable title.
var ErrNoTitle = errors.New("license document has no title")

// maxDocumentBytes bounds how much of a license document is read.
const maxDocumentBytes = 2 << 20

// FetchFunc supplies the body of the license document at uri. The caller
// owns the transport; this package never opens connections itself.
type FetchFunc func(ctx context.Context, uri string) (io.ReadCloser, error)

// titleProperties are the RDFa property values that name a license.
var titleProperties = []string{"dct:title", "dc:title"}

// DocumentLookup reads license names from license documents. Titles tagged
// with an RDFa dct:title or dc:title property win; otherwise the readable
// article title of the page is used.
type DocumentLookup struct {
	fetch FetchFunc
}

// NewDocumentLookup creates a lookup backed by fetch.
func NewDocumentLookup(fetch FetchFunc) *DocumentLookup {
	return &DocumentLookup{fetch: fetch}
}

// Lookup implements Lookup.
func (d *DocumentLookup) Lookup(ctx context.Context, uri string) (Details, error) {
	body, err := d.fetch(ctx, uri)
	if err != nil {
		return Details{}, fmt.Errorf("failed to fetch license document: %w", err)
	}
	defer body.Close()

	data, err := io.ReadAll(io.LimitReader(body, maxDocumentBytes))
	if err != nil {
		return Details{}, fmt.Errorf("failed to read license document: %w", err)
	}

	title, err := DocumentTitle(data, uri)
	if err != nil {
		return Details{}, err
	}
	return Details{Name: title}, nil
}

// DocumentTitle extracts the license name from an HTML license document.
func DocumentTitle(data []byte, uri string) (string, error) {
	doc, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to parse license document: %w", err)
	}

	if title := findPropertyText(doc, titleProperties); title != "" {
		return title, nil
	}

	pageURL, err := url.Parse(uri)
	if err != nil {
		return "", fmt.Errorf("failed to parse license uri: %w", err)
	}
	article, err := readability.FromReader(bytes.NewReader(data), pageURL)
	if err == nil {
		if title := strings.TrimSpace(article.Title); title != "" {
			return title, nil
		}
	}

	return "", fmt.Errorf("%w: %s", ErrNoTitle, uri)
}

// findPropertyText returns the text of the first element whose property
// attribute is one of properties, trying properties in order.
func findPropertyText(doc *html.Node, properties []string) string {
	for _, property := range properties {
		var found *html.Node
		var find func(*html.Node)
		find = func(n *html.Node) {
			if found != nil {
				return
			}
			if n.Type == html.ElementNode && attr(n, "property") == property {
				found = n
				return
			}
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				find(c)
			}
		}
		find(doc)

		if found != nil {
			if text := strings.Join(strings.Fields(textContent(found)), " "); text != "" {
				return text
			}
		}
	}
	return ""
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.TextNode {
			sb.WriteString(node.Data)
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}
