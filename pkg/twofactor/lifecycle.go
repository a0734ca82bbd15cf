package twofactor

import "fmt"

// Event triggers a lifecycle transition.
type Event string

const (
	EventEnable  Event = "enable"  // issue a fresh secret and backup codes
	EventConfirm Event = "confirm" // first valid code after enrollment
	EventDisable Event = "disable"
	EventRotate  Event = "rotate" // replace backup codes
)

// transitions maps from-status and event to the resulting status. Anything
// missing here is rejected.
var transitions = map[Status]map[Event]Status{
	StatusUnset: {
		EventEnable:  StatusPending,
		EventDisable: StatusUnset,
	},
	StatusPending: {
		EventEnable:  StatusPending,
		EventConfirm: StatusActive,
		EventDisable: StatusUnset,
	},
	StatusActive: {
		EventEnable:  StatusPending,
		EventConfirm: StatusActive,
		EventDisable: StatusUnset,
		EventRotate:  StatusActive,
	},
}

// ErrNoTransition is returned when an event is not allowed in the current status.
type ErrNoTransition struct {
	From  Status
	Event Event
}

func (e *ErrNoTransition) Error() string {
	return fmt.Sprintf("no transition from status '%s' for event '%s'", e.From, e.Event)
}

func (e *ErrNoTransition) Unwrap() error { return ErrInvalidTransition }

// Transition returns the status reached by firing ev in from.
func Transition(from Status, ev Event) (Status, error) {
	to, ok := transitions[from][ev]
	if !ok {
		return from, &ErrNoTransition{From: from, Event: ev}
	}
	return to, nil
}

// CanTransition reports whether ev is allowed in from.
func CanTransition(from Status, ev Event) bool {
	_, err := Transition(from, ev)
	return err == nil
}
