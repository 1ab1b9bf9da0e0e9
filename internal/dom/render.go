package dom

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// OuterHTML serializes n including its own tag.
func OuterHTML(n *html.Node) string {
	if n == nil {
		return ""
	}
	var sb strings.Builder
	if err := html.Render(&sb, n); err != nil {
		return ""
	}
	return sb.String()
}

// InnerHTML serializes the children of n.
func InnerHTML(n *html.Node) string {
	if n == nil {
		return ""
	}
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&sb, c); err != nil {
			return ""
		}
	}
	return sb.String()
}

// TextContent returns the concatenated text of n and its descendants.
func TextContent(n *html.Node) string {
	var sb strings.Builder
	Walk(n, func(c *html.Node) bool {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
		}
		return true
	})
	return sb.String()
}

// ParseFragment parses markup in the context of element context and returns
// the resulting top-level nodes, detached.
func ParseFragment(context *html.Node, markup string) ([]*html.Node, error) {
	if context == nil {
		context = NewElement("body")
	}
	nodes, err := html.ParseFragment(strings.NewReader(markup), context)
	if err != nil {
		return nil, fmt.Errorf("parsing fragment: %w", err)
	}
	return nodes, nil
}

// SetInnerHTML replaces the children of n with the parsed markup.
func SetInnerHTML(n *html.Node, markup string) error {
	nodes, err := ParseFragment(n, markup)
	if err != nil {
		return err
	}
	Empty(n)
	for _, c := range nodes {
		n.AppendChild(c)
	}
	return nil
}

// ParseBody parses a full document and returns its body element.
func ParseBody(r io.Reader) (*html.Node, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing document: %w", err)
	}
	body := findElement(doc, atom.Body)
	if body == nil {
		return nil, fmt.Errorf("parsing document: no body element")
	}
	return body, nil
}

// ParseBodyString parses markup as a document and returns its body.
func ParseBodyString(markup string) (*html.Node, error) {
	return ParseBody(strings.NewReader(markup))
}

func findElement(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, a); found != nil {
			return found
		}
	}
	return nil
}
