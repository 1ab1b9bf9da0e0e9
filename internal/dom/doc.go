// Package dom provides the document tree primitives used by the caret engine.
//
// The editable document is an x/net/html node tree. This package adds the
// narrow surface the caret and selection packages need on top of it:
//
//   - Range: a (container, offset) pair for start and end, the shape of a
//     native selection range
//   - Tree helpers: node index, child access, insertion, removal, text
//     splitting and attribute access
//   - Serialization: outer/inner markup and text content
//   - Queries: CSS selector lookups via goquery and cascadia
//
// Offsets inside text nodes are byte offsets into html.Node.Data. Offsets
// inside element nodes count children.
//
// None of the helpers panic on detached or malformed nodes; they return zero
// values instead so callers can treat stale references as "no result".
package dom
