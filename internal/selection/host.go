package selection

import (
	"golang.org/x/net/html"

	"github.com/dshills/caretkit/internal/dom"
	"github.com/dshills/caretkit/internal/geom"
)

// Host is the editing surface: the document root plus the native selection
// primitive and focus.
type Host interface {
	// Root returns the editing root.
	Root() *html.Node

	// Range returns the native selection. The second result is false when
	// there is no selection or the native range is stale.
	Range() (dom.Range, bool)

	// SetRange writes the native selection.
	SetRange(r dom.Range)

	// Geometry returns the client rect provider, or nil if there is no
	// layout.
	Geometry() geom.Provider

	Focus()
	HasFocus() bool

	// ScrollIntoView brings n into view.
	ScrollIntoView(n *html.Node, alignToTop bool)
}
