package monitor

import "time"

// State is a phase of the monitor loop
type State int

const (
	StatePriming State = iota
	StatePolling
	StateRendering
	StateSleeping
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StatePriming:
		return "priming"
	case StatePolling:
		return "polling"
	case StateRendering:
		return "rendering"
	case StateSleeping:
		return "sleeping"
	case StateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Event describes a state transition of the monitor loop
type Event struct {
	State State
	At    time.Time
	// Seen is the size of the seen-set after the transition
	Seen int
	// Announced is the number of records announced since monitoring started
	Announced int
	// Err is the fetch failure that led into StateSleeping, if any
	Err error
}
