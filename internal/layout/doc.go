// Package layout lays out a document tree on a monospace cell grid and
// reports the resulting client rects.
//
// Every cell is one unit wide and every line one unit high, so a rect's
// Left is a column and its Top a row. Blocks stack; inline content flows
// left to right and wraps at word boundaries when it reaches the viewport
// width. Atomic inline nodes occupy a fixed number of cells taken from
// their width attribute; atomic blocks and <hr> occupy a full line. Nodes
// marked data-mce-bogus="all" are positioned out of flow and take no
// space, as in a browser where they are absolutely positioned.
//
// The engine implements geom.Provider. Layout is recomputed lazily: any
// query first checks a structural signature of the tree and re-runs the
// layout when the tree changed since the last run.
package layout
