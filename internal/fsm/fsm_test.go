package fsm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTransitionDictationCycle(t *testing.T) {
	next, err := Transition(StateIdle, EventStart)
	require.NoError(t, err)
	require.Equal(t, StateRecording, next)

	next, err = Transition(next, EventStop)
	require.NoError(t, err)
	require.Equal(t, StateIdle, next)

	next, err = Transition(next, EventCommit)
	require.NoError(t, err)
	require.Equal(t, StatePasteInFlight, next)

	next, err = Transition(next, EventSettled)
	require.NoError(t, err)
	require.Equal(t, StateIdle, next)
}

func TestTransitionDeliveryWhileRecording(t *testing.T) {
	next, err := Transition(StateRecording, EventCommit)
	require.NoError(t, err)
	require.Equal(t, StateRecording, next)

	next, err = Transition(next, EventSettled)
	require.NoError(t, err)
	require.Equal(t, StateRecording, next)

	next, err = Transition(next, EventStop)
	require.NoError(t, err)
	require.Equal(t, StateIdle, next)
}

func TestTransitionResetFromAnyState(t *testing.T) {
	for _, state := range []State{StateIdle, StateRecording, StatePasteInFlight} {
		next, err := Transition(state, EventReset)
		require.NoError(t, err)
		require.Equal(t, StateIdle, next)
	}
}

func TestTransitionMatrixInvalidTransitions(t *testing.T) {
	tests := []struct {
		name  string
		state State
		event Event
	}{
		{name: "idle stop", state: StateIdle, event: EventStop},
		{name: "idle settled", state: StateIdle, event: EventSettled},
		{name: "recording start", state: StateRecording, event: EventStart},
		{name: "paste start", state: StatePasteInFlight, event: EventStart},
		{name: "paste stop", state: StatePasteInFlight, event: EventStop},
		{name: "paste commit", state: StatePasteInFlight, event: EventCommit},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			next, err := Transition(tc.state, tc.event)
			require.Error(t, err)
			require.Contains(t, err.Error(), "invalid transition")
			require.Equal(t, tc.state, next)
		})
	}
}

func TestTransitionUnknownState(t *testing.T) {
	next, err := Transition(State("mystery"), EventStart)
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown state")
	require.Equal(t, State("mystery"), next)
}
