package attribution

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/coolbeans/ccattrib/pkg/license"
	"github.com/coolbeans/ccattrib/pkg/rdf"
)

// RenderHTML renders an RDFa-annotated attribution:
//
//	<div about="S" xmlns:dct="..." xmlns:cc="..."><span property="dct:title">T</span>
//	 / <span property="cc:attributionName">N</span> / <a rel="license" href="L">X</a></div>
//
// A work without a title is introduced as "Work found at" followed by a
// link to the subject. All values are escaped by the renderer.
func RenderHTML(f Facts) (string, error) {
	root, err := buildTree(f)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	if err := html.Render(&sb, root); err != nil {
		return "", fmt.Errorf("failed to render attribution: %w", err)
	}
	return sb.String(), nil
}

func buildTree(f Facts) (*html.Node, error) {
	if err := f.validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", err, f.Subject)
	}

	root := element(atom.Div, attribute("about", f.Subject))

	if f.Title != "" {
		root.Attr = append(root.Attr, attribute("xmlns:dct", rdf.NamespaceDCTerms))
	}
	if f.hasAttribution() {
		root.Attr = append(root.Attr, attribute("xmlns:cc", rdf.NamespaceCC))
	}

	fragments := [][]*html.Node{titleFragment(f)}
	if f.hasAttribution() {
		fragments = append(fragments, []*html.Node{attributionFragment(f)})
	}
	fragments = append(fragments, []*html.Node{licenseFragment(f.License)})

	for i, fragment := range fragments {
		if i > 0 {
			root.AppendChild(text(Separator))
		}
		for _, node := range fragment {
			root.AppendChild(node)
		}
	}

	return root, nil
}

func titleFragment(f Facts) []*html.Node {
	if f.Title != "" {
		span := element(atom.Span, attribute("property", "dct:title"))
		span.AppendChild(text(f.Title))
		return []*html.Node{span}
	}

	link := element(atom.A, attribute("href", f.Subject))
	link.AppendChild(text(f.Subject))
	return []*html.Node{text("Work found at "), link}
}

func attributionFragment(f Facts) *html.Node {
	switch {
	case f.AuthorURI == "":
		span := element(atom.Span, attribute("property", "cc:attributionName"))
		span.AppendChild(text(f.AuthorName))
		return span

	case f.AuthorName == "":
		link := element(atom.A,
			attribute("rel", "cc:attributionURL"),
			attribute("href", f.AuthorURI))
		link.AppendChild(text(f.AuthorURI))
		return link

	default:
		link := element(atom.A,
			attribute("rel", "cc:attributionURL"),
			attribute("property", "cc:attributionName"),
			attribute("href", f.AuthorURI))
		link.AppendChild(text(f.AuthorName))
		return link
	}
}

func licenseFragment(l *license.Facts) *html.Node {
	link := element(atom.A,
		attribute("rel", "license"),
		attribute("href", l.URI))
	link.AppendChild(text(l.Label()))
	return link
}

func element(tag atom.Atom, attrs ...html.Attribute) *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		DataAtom: tag,
		Data:     tag.String(),
		Attr:     attrs,
	}
}

func attribute(key, value string) html.Attribute {
	return html.Attribute{Key: key, Val: value}
}

func text(data string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: data}
}
