package client

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoRefreshToken is reported when a 401 arrives and no refresh credential is stored.
	ErrNoRefreshToken = errors.New("client: no refresh credential")
	// ErrRefreshRejected is reported when the refresh endpoint answers with a non-2xx status
	// or a body without an access credential.
	ErrRefreshRejected = errors.New("client: refresh rejected")
)

const maxErrorBody = 512

// StatusError is a non-2xx API response.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Body       []byte
}

func (e *StatusError) Error() string {
	body := strings.TrimSpace(string(e.Body))
	if len(body) > maxErrorBody {
		body = body[:maxErrorBody] + "..."
	}
	if body == "" {
		return fmt.Sprintf("client: %s %s: HTTP %d", e.Method, e.Path, e.StatusCode)
	}
	return fmt.Sprintf("client: %s %s: HTTP %d: %s", e.Method, e.Path, e.StatusCode, body)
}

// IsStatus reports whether err is a *StatusError with the given code.
func IsStatus(err error, code int) bool {
	var statusErr *StatusError
	return errors.As(err, &statusErr) && statusErr.StatusCode == code
}
