package model

// State is the lifecycle state of a crawl session.
//
// The state machine is:
//
//	Idle -> Initializing -> Running -> Completed
//	                        Running -> Failed
//
// Completed and Failed are terminal. There is no cancelled state;
// cancelling the context surfaces through the Failed path.
type State int

// Crawl session states in lifecycle order.
const (
	// StateIdle means the session has been created but not started.
	StateIdle State = iota

	// StateInitializing means the seed URL is being validated and the
	// frontier is being pre-seeded with exclusions.
	StateInitializing

	// StateRunning means batches are being processed.
	StateRunning

	// StateCompleted means the crawl finished normally: the frontier
	// drained or the page budget was reached.
	StateCompleted

	// StateFailed means an external collaborator failed and the crawl
	// was aborted. Results emitted before the failure remain valid.
	StateFailed
)

// String returns the human-readable state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateInitializing:
		return "initializing"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether the state is terminal.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateFailed
}

// MarshalJSON encodes the state by name rather than ordinal, so reports
// stay readable and stable if states are ever reordered.
func (s State) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}
