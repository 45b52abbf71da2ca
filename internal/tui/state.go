package tui

// State is the lifecycle state of a ListModel.
type State int

// List states. Fetches in both directions may overlap.
const (
	StateIdle State = iota
	StatePopulated
	StateFetchingPrev
	StateFetchingNext
	StateFetchingBoth
)

// String returns the state name shown in the status line.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePopulated:
		return "populated"
	case StateFetchingPrev:
		return "fetching prev"
	case StateFetchingNext:
		return "fetching next"
	case StateFetchingBoth:
		return "fetching both"
	default:
		return "unknown"
	}
}

// Fetching reports whether any page fetch is in progress.
func (s State) Fetching() bool {
	return s >= StateFetchingPrev
}
