package client

// State names the step a request is at inside Client.Do.
type State int

const (
	// StateInitial is a descriptor that has not been sent yet.
	StateInitial State = iota
	// StateAwaitingResponse is a request on the wire.
	StateAwaitingResponse
	// StateSuccess is a response that needs no credential recovery. The status may still be an error.
	StateSuccess
	// StateAuthFailureDetected is a 401 on a descriptor that has not been retried.
	StateAuthFailureDetected
	// StateRefreshInFlight is a request waiting on the shared refresh.
	StateRefreshInFlight
	// StateRetryIssued is the single replay after a successful refresh.
	StateRetryIssued
	// StatePropagated is a 401 handed back to the caller without recovery.
	StatePropagated
)

func (s State) String() string {
	switch s {
	case StateInitial:
		return "initial"
	case StateAwaitingResponse:
		return "awaiting_response"
	case StateSuccess:
		return "success"
	case StateAuthFailureDetected:
		return "auth_failure_detected"
	case StateRefreshInFlight:
		return "refresh_in_flight"
	case StateRetryIssued:
		return "retry_issued"
	case StatePropagated:
		return "propagated"
	default:
		return "unknown"
	}
}
