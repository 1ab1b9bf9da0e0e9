// Package selection intercepts caret and selection handling around atomic
// nodes: elements the caret may approach but never enter.
//
// A Coordinator sits between a Host (the editing surface with its native
// selection) and the input events of one editor instance. For every event it
// decides whether the host's native behavior is adequate or must be
// replaced, and it tracks one of three states:
//
//   - Text: an ordinary text selection, handled natively.
//   - Boundary: a collapsed caret beside an atomic node, hosted by a caret
//     container placeholder and shown by the fake caret.
//   - ObjectSelected: an atomic node is the selection target. The native
//     selection covers a clone of the node in an offscreen mirror element so
//     that copy and cut produce usable clipboard content.
//
// Handlers call PreventDefault on the event they override before writing the
// replacement selection. Observers are notified through an event.Bus; some
// notifications are cancelable and veto the transition.
//
// Public operations never return errors to the host. Stale nodes, missing
// geometry and invalid native ranges abort the operation and leave the
// native selection untouched.
package selection
