// Package surface provides an in-memory editing surface: a document tree
// with a native selection range, focus state, monospace layout geometry and
// a clipboard.
//
// The surface plays the part a browser plays for an embedded editor. It
// knows nothing about atomic nodes beyond the caret walker's rules: its
// native actions (arrow moves, typing, deletion, click placement) are the
// defaults that run when no handler prevents them.
package surface
