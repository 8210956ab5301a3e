package walletd

// State represents the lifecycle state of a Server.
type State int

const (
	StateStopped State = iota
	StateStarting
	StateRunning
	StateStopping
	StateCrashed
)

func (s State) String() string {
	switch s {
	case StateStopped:
		return "Stopped"
	case StateStarting:
		return "Starting"
	case StateRunning:
		return "Running"
	case StateStopping:
		return "Stopping"
	case StateCrashed:
		return "Crashed"
	default:
		return "Unknown"
	}
}

// StateChangeEvent is emitted on every lifecycle transition.
type StateChangeEvent struct {
	Previous State
	Current  State
	Reason   string
}

// EventHandler receives lifecycle events.
type EventHandler interface {
	OnStateChange(event StateChangeEvent)
}

// EventHandlerFunc adapts a function to EventHandler.
type EventHandlerFunc func(StateChangeEvent)

// OnStateChange calls f(event).
func (f EventHandlerFunc) OnStateChange(event StateChangeEvent) { f(event) }
