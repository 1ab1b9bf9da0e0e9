package caret

import (
	"testing"

	"golang.org/x/net/html"

	"github.com/dshills/caretkit/internal/dom"
)

func mustBody(t *testing.T, markup string) *html.Node {
	t.Helper()
	body, err := dom.ParseBodyString(markup)
	if err != nil {
		t.Fatalf("ParseBodyString() error = %v", err)
	}
	return body
}

func mustQuery(t *testing.T, root *html.Node, selector string) *html.Node {
	t.Helper()
	n := dom.QueryFirst(root, selector)
	if n == nil {
		t.Fatalf("QueryFirst(%q) = nil", selector)
	}
	return n
}
