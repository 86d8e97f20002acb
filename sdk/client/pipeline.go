package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/stackit-qa/stackit-client/internal/misc"
	"golang.org/x/oauth2"
)

// pipeline turns a Descriptor into an *http.Request carrying the current access credential.
type pipeline struct {
	baseURL   string
	userAgent string
	tokens    oauth2.TokenSource
}

// build attaches "Authorization: Bearer <access>" when the token source has a credential and
// sends unauthenticated otherwise. The credential used is recorded on d.
func (p *pipeline) build(ctx context.Context, d *Descriptor) (*http.Request, error) {
	var body io.Reader
	if len(d.Body) > 0 {
		body = bytes.NewReader(d.Body)
	}
	req, err := http.NewRequestWithContext(ctx, d.Method, p.baseURL+d.Path, body)
	if err != nil {
		return nil, fmt.Errorf("client: build request: %w", err)
	}
	for key, values := range d.Header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	if len(d.Body) > 0 {
		misc.EnsureHeader(req.Header, nil, "Content-Type", "application/json")
	}
	misc.EnsureHeader(req.Header, nil, "Accept", "application/json")
	misc.EnsureHeader(req.Header, nil, "User-Agent", p.userAgent)
	req.Header.Set("Accept-Encoding", acceptEncoding)
	req.Header.Set("X-Request-ID", d.ID)

	d.sentWith = ""
	req.Header.Del("Authorization")
	if tok, errToken := p.tokens.Token(); errToken == nil && tok.AccessToken != "" {
		tok.SetAuthHeader(req)
		d.sentWith = tok.AccessToken
	}
	return req, nil
}
