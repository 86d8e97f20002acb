package client

import (
	"context"
	"net/http"

	"github.com/stackit-qa/stackit-client/internal/logging"
)

// Descriptor is a replayable snapshot of an outgoing call. The body is kept as bytes so the
// request can be reissued after a credential refresh. A Descriptor belongs to one Do call at
// a time and is not safe for concurrent use.
type Descriptor struct {
	ID     string
	Method string
	// Path is relative to the client's base URL and may carry a query string.
	Path   string
	Header http.Header
	Body   []byte

	retried  bool
	sentWith string
}

// NewDescriptor captures a call. The ID is taken from ctx when a request ID is attached,
// otherwise a new one is generated.
func NewDescriptor(ctx context.Context, method, path string, body []byte) *Descriptor {
	id := logging.GetRequestID(ctx)
	if id == "" {
		id = logging.GenerateRequestID()
	}
	return &Descriptor{
		ID:     id,
		Method: method,
		Path:   path,
		Header: make(http.Header),
		Body:   body,
	}
}

// Retried reports whether the descriptor has already been reissued once.
func (d *Descriptor) Retried() bool { return d.retried }

// MarkRetried sets the one-shot retry marker. It returns false when the marker was already set.
func (d *Descriptor) MarkRetried() bool {
	if d.retried {
		return false
	}
	d.retried = true
	return true
}

// SentWith returns the access credential attached on the most recent send, or "" when the
// request went out unauthenticated.
func (d *Descriptor) SentWith() string { return d.sentWith }
