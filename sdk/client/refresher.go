package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/stackit-qa/stackit-client/internal/credential"
	"github.com/stackit-qa/stackit-client/internal/metrics"
	"github.com/stackit-qa/stackit-client/internal/session"
	"github.com/stackit-qa/stackit-client/internal/util"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
	"golang.org/x/sync/singleflight"
)

// RefreshPath is the token refresh endpoint relative to the base URL.
const RefreshPath = "/token/refresh/"

// Outcome is the result of one refresh attempt.
type Outcome struct {
	Access string
	Err    error
}

// Refreshed reports whether a new access credential is available.
func (o Outcome) Refreshed() bool { return o.Err == nil && o.Access != "" }

// refresher exchanges the refresh credential for a new access credential. Concurrent callers
// holding the same refresh credential share a single exchange.
type refresher struct {
	group      singleflight.Group
	httpClient *http.Client
	endpoint   string
	userAgent  string
	timeout    time.Duration
	store      Store
	notifier   *session.Notifier
	metrics    *metrics.Metrics
}

// refresh runs or joins the shared refresh for a request that was rejected while carrying
// the access credential stale. The returned error is non-nil only when ctx ends while
// waiting; the refresh itself keeps running for the other callers.
func (r *refresher) refresh(ctx context.Context, stale string) (Outcome, error) {
	refreshToken, _ := r.store.Get(credential.Refresh)
	ch := r.group.DoChan("refresh:"+refreshToken, func() (any, error) {
		// Another request already replaced the credential this one was rejected with.
		current, ok := r.store.Get(credential.Access)
		if ok && current != stale {
			r.metrics.ObserveRefresh(metrics.RefreshSkipped)
			return Outcome{Access: current}, nil
		}
		// An earlier failed refresh already cleared the session this request belonged to.
		if stale != "" && !ok && refreshToken == "" {
			return Outcome{Err: ErrNoRefreshToken}, nil
		}
		runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.timeout)
		defer cancel()
		return r.run(runCtx, refreshToken), nil
	})
	select {
	case <-ctx.Done():
		return Outcome{}, ctx.Err()
	case res := <-ch:
		return res.Val.(Outcome), nil
	}
}

func (r *refresher) run(ctx context.Context, refreshToken string) Outcome {
	if refreshToken == "" {
		r.fail(ctx, session.ReasonNoRefreshToken, ErrNoRefreshToken)
		return Outcome{Err: ErrNoRefreshToken}
	}
	access, rotated, err := r.exchange(ctx, refreshToken)
	if err != nil {
		r.fail(ctx, session.ReasonRefreshFailed, err)
		return Outcome{Err: err}
	}
	pair := credential.Pair{Access: access, Refresh: refreshToken}
	if rotated != "" {
		pair.Refresh = rotated
	}
	if err = r.store.SetPair(ctx, pair); err != nil {
		r.fail(ctx, session.ReasonRefreshFailed, err)
		return Outcome{Err: err}
	}
	r.metrics.ObserveRefresh(metrics.RefreshSucceeded)
	log.WithField("profile", r.store.Profile()).Debugf("access credential refreshed: %s", util.HideToken(access))
	return Outcome{Access: access}
}

// exchange posts {"refresh": ...} and returns the new access credential and, when the server
// rotates it, the new refresh credential.
func (r *refresher) exchange(ctx context.Context, refreshToken string) (string, string, error) {
	body, err := sjson.SetBytes([]byte(`{}`), "refresh", refreshToken)
	if err != nil {
		return "", "", fmt.Errorf("client: build refresh body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", "", fmt.Errorf("client: build refresh request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Encoding", acceptEncoding)
	req.Header.Set("User-Agent", r.userAgent)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("client: refresh request: %w", err)
	}
	defer func() {
		if errClose := resp.Body.Close(); errClose != nil {
			log.Errorf("response body close error: %v", errClose)
		}
	}()
	data, err := readBody(resp)
	if err != nil {
		return "", "", err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", "", fmt.Errorf("%w: HTTP %d", ErrRefreshRejected, resp.StatusCode)
	}
	access := gjson.GetBytes(data, "access")
	if access.Type != gjson.String || access.String() == "" {
		return "", "", fmt.Errorf("%w: response carries no access credential", ErrRefreshRejected)
	}
	return access.String(), gjson.GetBytes(data, "refresh").String(), nil
}

// fail clears the store and announces the end of the session. It runs once per failed
// shared refresh.
func (r *refresher) fail(ctx context.Context, reason session.Reason, cause error) {
	entry := log.WithFields(log.Fields{"profile": r.store.Profile(), "reason": reason})
	entry.WithError(cause).Warn("credential refresh failed, clearing session")
	if errors.Is(cause, context.DeadlineExceeded) {
		entry.Warnf("refresh did not complete within %s", r.timeout)
	}
	if errClear := r.store.Clear(context.WithoutCancel(ctx)); errClear != nil {
		entry.WithError(errClear).Error("failed to clear credential store")
	}
	r.metrics.ObserveRefresh(metrics.RefreshFailed)
	r.metrics.ObserveInvalidation(string(reason))
	r.notifier.Notify(ctx, session.Invalidated{
		Profile: r.store.Profile(),
		Reason:  reason,
		Error:   cause.Error(),
	})
}
