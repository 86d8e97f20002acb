package util

import (
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
)

// requestLogTransport logs each request line, status and latency at debug level. Bodies are
// never read and the Authorization header is masked.
type requestLogTransport struct {
	next http.RoundTripper
}

func (t *requestLogTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	entry := log.WithFields(log.Fields{
		"request_id": req.Header.Get("X-Request-ID"),
		"auth":       MaskSensitiveHeaderValue("Authorization", req.Header.Get("Authorization")),
	})
	resp, err := t.next.RoundTrip(req)
	elapsed := time.Since(start).Round(time.Millisecond)
	if err != nil {
		entry.WithError(err).Debugf("%s %s failed after %s", req.Method, req.URL.Path, elapsed)
		return nil, err
	}
	entry.Debugf("%s %s -> %d (%s)", req.Method, req.URL.Path, resp.StatusCode, elapsed)
	return resp, nil
}

// WithRequestLog wraps the client's transport with request logging.
func WithRequestLog(httpClient *http.Client) *http.Client {
	next := httpClient.Transport
	if next == nil {
		next = http.DefaultTransport
	}
	httpClient.Transport = &requestLogTransport{next: next}
	return httpClient
}
