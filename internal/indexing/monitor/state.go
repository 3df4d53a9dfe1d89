package monitor

import (
	"time"
)

// State is a network monitor's lifecycle state.
type State string

const (
	StateConnecting State = "connecting"
	StateIdle       State = "idle"
	StatePolling    State = "polling"
	StateStopped    State = "stopped"
)

// AllStates lists every state, for metrics.
var AllStates = []State{StateConnecting, StateIdle, StatePolling, StateStopped}

// ValidTransitions defines allowed state transitions.
// Key is the current state, value is the list of valid next states.
var ValidTransitions = map[State][]State{
	StateConnecting: {StateIdle, StateStopped},
	StateIdle:       {StatePolling, StateStopped},
	StatePolling:    {StateIdle, StateStopped},
	StateStopped:    {},
}

// CanTransition checks if a transition from one state to another is valid.
func CanTransition(from, to State) bool {
	validTargets, ok := ValidTransitions[from]
	if !ok {
		return false
	}

	for _, target := range validTargets {
		if target == to {
			return true
		}
	}
	return false
}

// Transition represents a state change with metadata.
type Transition struct {
	From      State
	To        State
	Reason    string
	Timestamp time.Time
}

// NewTransition creates a new transition record.
func NewTransition(from, to State, reason string) Transition {
	return Transition{
		From:      from,
		To:        to,
		Reason:    reason,
		Timestamp: time.Now(),
	}
}

// IsValid returns true if this transition is allowed by the state machine.
func (t Transition) IsValid() bool {
	return CanTransition(t.From, t.To)
}

// StateDescription returns a human-readable description of a state.
func StateDescription(s State) string {
	switch s {
	case StateConnecting:
		return "Connecting - checking the RPC endpoint"
	case StateIdle:
		return "Idle - nothing to watch or waiting after an error"
	case StatePolling:
		return "Polling - filter installed, fetching changes"
	case StateStopped:
		return "Stopped - initial connect failed or shutting down"
	default:
		return "Unknown state"
	}
}
