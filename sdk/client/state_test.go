package client

import "testing"

func TestStateString(t *testing.T) {
	tests := map[State]string{
		StateInitial:             "initial",
		StateAwaitingResponse:    "awaiting_response",
		StateSuccess:             "success",
		StateAuthFailureDetected: "auth_failure_detected",
		StateRefreshInFlight:     "refresh_in_flight",
		StateRetryIssued:         "retry_issued",
		StatePropagated:          "propagated",
		State(99):                "unknown",
	}
	for state, want := range tests {
		if got := state.String(); got != want {
			t.Errorf("State(%d).String() = %q, want %q", int(state), got, want)
		}
	}
}
