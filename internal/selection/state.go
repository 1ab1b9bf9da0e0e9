package selection

// State is the logical selection state.
type State int

const (
	// StateText is an ordinary text selection.
	StateText State = iota

	// StateBoundary is a collapsed caret beside an atomic node.
	StateBoundary

	// StateObjectSelected means an atomic node is the selection target.
	StateObjectSelected
)

var stateNames = map[State]string{
	StateText:           "text",
	StateBoundary:       "boundary",
	StateObjectSelected: "object",
}

// String returns the state name.
func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}
