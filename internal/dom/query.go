package dom

import (
	"sync"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

var (
	selectorMu    sync.Mutex
	selectorCache = make(map[string]cascadia.Selector)
)

func compile(selector string) (cascadia.Selector, bool) {
	selectorMu.Lock()
	defer selectorMu.Unlock()

	if sel, ok := selectorCache[selector]; ok {
		return sel, sel != nil
	}
	sel, err := cascadia.Compile(selector)
	if err != nil {
		selectorCache[selector] = nil
		return nil, false
	}
	selectorCache[selector] = sel
	return sel, true
}

// Matches reports whether n is an element matching the CSS selector.
// Invalid selectors never match.
func Matches(n *html.Node, selector string) bool {
	if !IsElement(n) {
		return false
	}
	sel, ok := compile(selector)
	if !ok {
		return false
	}
	return sel.Match(n)
}

// QueryAll returns the descendants of root matching selector in document
// order. Invalid selectors return nil.
func QueryAll(root *html.Node, selector string) []*html.Node {
	if root == nil {
		return nil
	}
	sel, ok := compile(selector)
	if !ok {
		return nil
	}
	return goquery.NewDocumentFromNode(root).FindMatcher(sel).Nodes
}

// QueryFirst returns the first descendant of root matching selector.
func QueryFirst(root *html.Node, selector string) *html.Node {
	nodes := QueryAll(root, selector)
	if len(nodes) == 0 {
		return nil
	}
	return nodes[0]
}
