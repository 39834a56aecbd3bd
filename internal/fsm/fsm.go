// Package fsm holds the dictation controller's transition table.
package fsm

import "fmt"

type State string

type Event string

const (
	StateIdle          State = "idle"
	StateRecording     State = "recording"
	StatePasteInFlight State = "paste_in_flight"
)

const (
	// EventStart fires once a transcription session opened successfully.
	EventStart Event = "start"
	// EventStop fires when the trigger is released.
	EventStop Event = "stop"
	// EventCommit fires when text has been written to the clipboard and a paste is scheduled.
	EventCommit Event = "commit"
	// EventSettled fires after the synthetic paste was posted.
	EventSettled Event = "settled"
	EventReset   Event = "reset"
)

// Transition returns the next state for event, or the unchanged state and an
// error when the pair is not part of the table.
func Transition(current State, event Event) (State, error) {
	if event == EventReset {
		switch current {
		case StateIdle, StateRecording, StatePasteInFlight:
			return StateIdle, nil
		}
	}

	switch current {
	case StateIdle:
		switch event {
		case EventStart:
			return StateRecording, nil
		case EventCommit:
			return StatePasteInFlight, nil
		default:
			return current, invalidTransition(current, event)
		}
	case StateRecording:
		switch event {
		case EventStop:
			return StateIdle, nil
		case EventCommit, EventSettled:
			// A final transcript can be delivered while the trigger is still held.
			return StateRecording, nil
		default:
			return current, invalidTransition(current, event)
		}
	case StatePasteInFlight:
		switch event {
		case EventSettled:
			return StateIdle, nil
		default:
			return current, invalidTransition(current, event)
		}
	default:
		return current, fmt.Errorf("unknown state %q", current)
	}
}

func invalidTransition(state State, event Event) error {
	return fmt.Errorf("invalid transition: %s --(%s)--> ?", state, event)
}
