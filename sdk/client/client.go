// Package client is the authenticated HTTP client for the StackIt Q&A API. Every call goes
// through a request pipeline that attaches the stored bearer credential and a coordinator
// that recovers from an expired access credential by refreshing it and replaying the call once.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/stackit-qa/stackit-client/internal/buildinfo"
	"github.com/stackit-qa/stackit-client/internal/config"
	"github.com/stackit-qa/stackit-client/internal/credential"
	"github.com/stackit-qa/stackit-client/internal/logging"
	"github.com/stackit-qa/stackit-client/internal/metrics"
	"github.com/stackit-qa/stackit-client/internal/session"
	"golang.org/x/oauth2"
)

// Store is the credential store the client reads from and writes refreshed credentials to.
// *credential.Store satisfies it.
type Store interface {
	oauth2.TokenSource
	Profile() string
	Get(kind credential.Kind) (string, bool)
	SetPair(ctx context.Context, pair credential.Pair) error
	Clear(ctx context.Context) error
}

// Options configures a Client.
type Options struct {
	// BaseURL is the API root, e.g. "http://localhost:8000/api".
	BaseURL string
	Store   Store
	// HTTPClient defaults to a client with config.DefaultRequestTimeout.
	HTTPClient *http.Client
	Notifier   *session.Notifier
	Metrics    *metrics.Metrics
	// UserAgent defaults to buildinfo.UserAgent().
	UserAgent string
	// RefreshTimeout bounds one shared refresh. Defaults to config.DefaultRefreshTimeout.
	RefreshTimeout time.Duration
}

// Response is a fully read API response. Body has any content encoding removed.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// OK reports a 2xx status.
func (r *Response) OK() bool { return r.StatusCode >= 200 && r.StatusCode < 300 }

// Client sends API requests with credential attachment and one-shot refresh-and-retry.
type Client struct {
	baseURL    string
	httpClient *http.Client
	store      Store
	notifier   *session.Notifier
	metrics    *metrics.Metrics
	pipeline   *pipeline
	refresher  *refresher
}

// New validates opts and builds a Client.
func New(opts Options) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if base == "" {
		return nil, fmt.Errorf("client: base URL is required")
	}
	if u, err := url.Parse(base); err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("client: invalid base URL %q", opts.BaseURL)
	}
	if opts.Store == nil {
		return nil, fmt.Errorf("client: credential store is required")
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: config.DefaultRequestTimeout}
	}
	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = buildinfo.UserAgent()
	}
	timeout := opts.RefreshTimeout
	if timeout <= 0 {
		timeout = config.DefaultRefreshTimeout
	}
	return &Client{
		baseURL:    base,
		httpClient: httpClient,
		store:      opts.Store,
		notifier:   opts.Notifier,
		metrics:    opts.Metrics,
		pipeline:   &pipeline{baseURL: base, userAgent: userAgent, tokens: opts.Store},
		refresher: &refresher{
			httpClient: httpClient,
			endpoint:   base + RefreshPath,
			userAgent:  userAgent,
			timeout:    timeout,
			store:      opts.Store,
			notifier:   opts.Notifier,
			metrics:    opts.Metrics,
		},
	}, nil
}

// BaseURL returns the normalized API root.
func (c *Client) BaseURL() string { return c.baseURL }

// Store returns the credential store the client was built with.
func (c *Client) Store() Store { return c.store }

// Notifier returns the session notifier, which may be nil.
func (c *Client) Notifier() *session.Notifier { return c.notifier }

// Metrics returns the client collectors, which may be nil.
func (c *Client) Metrics() *metrics.Metrics { return c.metrics }

// Do sends d and resolves it:
//   - a non-401 response, or a 401 on an already retried descriptor, is returned unchanged;
//   - a first 401 marks d retried and refreshes the access credential;
//   - after a successful refresh d is sent once more and that response is returned as is;
//   - after a failed refresh the store is cleared, a session.Invalidated event is emitted
//     and the original 401 is returned.
//
// The error is non-nil only for transport failures and context cancellation. Non-2xx
// statuses are reported through Response.StatusCode.
func (c *Client) Do(ctx context.Context, d *Descriptor) (*Response, error) {
	start := time.Now()
	entry := logging.Entry(d.ID).WithFields(log.Fields{"method": d.Method, "path": d.Path})
	state := StateInitial
	transition := func(next State) {
		entry.WithField("state", next).Debugf("request %s -> %s", state, next)
		state = next
	}

	transition(StateAwaitingResponse)
	resp, err := c.send(ctx, d)
	if err != nil {
		c.metrics.ObserveRequest(d.Method, 0, time.Since(start))
		return nil, err
	}
	resp, err = c.resolve(ctx, d, resp, transition)
	status := 0
	if resp != nil {
		status = resp.StatusCode
	}
	c.metrics.ObserveRequest(d.Method, status, time.Since(start))
	return resp, err
}

func (c *Client) resolve(ctx context.Context, d *Descriptor, resp *Response, transition func(State)) (*Response, error) {
	if resp.StatusCode != http.StatusUnauthorized {
		transition(StateSuccess)
		return resp, nil
	}
	if !d.MarkRetried() {
		transition(StatePropagated)
		return resp, nil
	}
	transition(StateAuthFailureDetected)
	transition(StateRefreshInFlight)
	outcome, err := c.refresher.refresh(ctx, d.SentWith())
	if err != nil {
		return nil, err
	}
	if !outcome.Refreshed() {
		transition(StatePropagated)
		return resp, nil
	}
	transition(StateRetryIssued)
	c.metrics.ObserveRetry()
	return c.send(ctx, d)
}

func (c *Client) send(ctx context.Context, d *Descriptor) (*Response, error) {
	req, err := c.pipeline.build(ctx, d)
	if err != nil {
		return nil, err
	}
	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("client: send request: %w", err)
	}
	defer func() {
		if errClose := httpResp.Body.Close(); errClose != nil {
			log.Errorf("response body close error: %v", errClose)
		}
	}()
	body, err := readBody(httpResp)
	if err != nil {
		return nil, err
	}
	return &Response{StatusCode: httpResp.StatusCode, Header: httpResp.Header, Body: body}, nil
}

// Send marshals payload (when non-nil) as the JSON request body, sends it through Do and
// returns the 2xx body. Non-2xx responses become *StatusError.
func (c *Client) Send(ctx context.Context, method, path string, payload any) ([]byte, error) {
	var body []byte
	if payload != nil {
		var err error
		if body, err = json.Marshal(payload); err != nil {
			return nil, fmt.Errorf("client: marshal request: %w", err)
		}
	}
	resp, err := c.Do(ctx, NewDescriptor(ctx, method, path, body))
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, &StatusError{Method: method, Path: path, StatusCode: resp.StatusCode, Body: resp.Body}
	}
	return resp.Body, nil
}

// DoJSON is Send followed by decoding a non-empty body into out (when non-nil).
func (c *Client) DoJSON(ctx context.Context, method, path string, payload, out any) error {
	body, err := c.Send(ctx, method, path, payload)
	if err != nil {
		return err
	}
	if out == nil || len(body) == 0 {
		return nil
	}
	if err = json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("client: decode %s %s: %w", method, path, err)
	}
	return nil
}
