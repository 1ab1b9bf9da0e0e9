// Package caret provides the atomic-aware caret model for the editing surface.
//
// The caret package handles:
//
//   - Node classification: text nodes, atomic nodes (non-editable leaves or
//     subtrees), block elements and caret candidates
//   - Position: an immutable (container, offset) value with geometry queries
//   - Caret containers: transient zero-width placeholders inserted next to
//     atomic nodes so a native selection has a legal text position to occupy
//   - Walker: next/previous legal position in document order, treating each
//     atomic node as a single opaque step
//
// Atomic Nodes:
//
// An atomic node is an element marked contenteditable="false" that contains
// no editable region, or one of the replaced inline elements (img, input,
// hr, iframe, video, audio, object, textarea). The caret may rest
// immediately before or after an atomic node but never inside it.
//
// Caret Containers:
//
// Inline placeholders are text nodes holding a single ZWSP marker. Block
// placeholders are empty block elements carrying the data-mce-caret
// attribute and a bogus <br>. Both are inert until promoted to real content
// once the user types into them.
//
// Basic usage:
//
//	w := caret.NewWalker(root)
//	pos := caret.FromRangeStart(rng)
//	if next, ok := w.Next(pos); ok {
//	    if atomic := caret.BeforeAtomic(next); atomic != nil {
//	        // boundary: render a fake caret before atomic
//	    }
//	}
//
// Thread Safety:
//
// Position is an immutable value type. Walker holds only its root and is
// safe to share, but the tree it walks must not be mutated concurrently.
package caret
