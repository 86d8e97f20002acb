package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stackit-qa/stackit-client/internal/credential"
	"github.com/stackit-qa/stackit-client/internal/session"
	"github.com/tidwall/gjson"
)

// fakeAPI is a gin-backed stand-in for the Q&A API. Requests under /api/public/ need no
// credential, /api/forbidden/ always answers 403 and every other path requires the current
// valid access credential.
type fakeAPI struct {
	mu                 sync.Mutex
	validAccess        string
	refreshStatus      int
	refreshAccess      string
	refreshRotate      string
	refreshDelay       time.Duration
	alwaysUnauthorized bool
	onUnauthorized     func()
	seenAuth           []string
	refreshBodies      []string

	refreshCalls atomic.Int32
	apiCalls     atomic.Int32
	server       *httptest.Server
}

func newFakeAPI(t *testing.T) *fakeAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)
	f := &fakeAPI{refreshStatus: http.StatusOK, refreshAccess: "A2"}

	r := gin.New()
	r.POST("/api/token/refresh/", f.handleRefresh)
	r.NoRoute(f.handleAPI)
	f.server = httptest.NewServer(r)
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeAPI) baseURL() string { return f.server.URL + "/api" }

func (f *fakeAPI) handleRefresh(c *gin.Context) {
	f.refreshCalls.Add(1)
	raw, _ := c.GetRawData()

	f.mu.Lock()
	f.refreshBodies = append(f.refreshBodies, string(raw))
	delay, status, access, rotate := f.refreshDelay, f.refreshStatus, f.refreshAccess, f.refreshRotate
	f.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-c.Request.Context().Done():
			return
		}
	}
	if gjson.GetBytes(raw, "refresh").String() == "" {
		c.JSON(http.StatusBadRequest, gin.H{"refresh": []string{"This field is required."}})
		return
	}
	if status != http.StatusOK {
		c.JSON(status, gin.H{"detail": "Token is invalid or expired", "code": "token_not_valid"})
		return
	}
	body := gin.H{}
	if access != "" {
		body["access"] = access
		f.mu.Lock()
		f.validAccess = access
		f.mu.Unlock()
	}
	if rotate != "" {
		body["refresh"] = rotate
	}
	c.JSON(http.StatusOK, body)
}

func (f *fakeAPI) handleAPI(c *gin.Context) {
	f.apiCalls.Add(1)
	auth := c.GetHeader("Authorization")

	f.mu.Lock()
	f.seenAuth = append(f.seenAuth, auth)
	valid := f.validAccess
	always := f.alwaysUnauthorized
	hook := f.onUnauthorized
	f.onUnauthorized = nil
	f.mu.Unlock()

	switch {
	case c.Request.URL.Path == "/api/forbidden/":
		c.JSON(http.StatusForbidden, gin.H{"detail": "You do not have permission to perform this action."})
	case c.Request.URL.Path == "/api/public/":
		c.JSON(http.StatusOK, gin.H{"public": true})
	case always || valid == "" || auth != "Bearer "+valid:
		if hook != nil {
			hook()
		}
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "Given token not valid for any token type"})
	default:
		raw, _ := c.GetRawData()
		c.JSON(http.StatusOK, gin.H{"method": c.Request.Method, "path": c.Request.URL.Path, "body": string(raw)})
	}
}

func (f *fakeAPI) set(mutate func(*fakeAPI)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	mutate(f)
}

func (f *fakeAPI) refreshBody(i int) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.refreshBodies[i]
}

func (f *fakeAPI) auths() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.seenAuth...)
}

type harness struct {
	api    *fakeAPI
	store  *credential.Store
	client *Client
	events chan session.Invalidated
}

func newHarness(t *testing.T, pair credential.Pair, mutate func(*Options)) *harness {
	t.Helper()
	api := newFakeAPI(t)
	ctx := context.Background()
	store, err := credential.Open(ctx, credential.NewMemoryBackend(), "default")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	if !pair.Empty() {
		if err = store.SetPair(ctx, pair); err != nil {
			t.Fatalf("seed store: %v", err)
		}
	}
	events := make(chan session.Invalidated, 16)
	notifier := session.NewNotifier()
	notifier.Subscribe(func(ev session.Invalidated) { events <- ev })

	opts := Options{BaseURL: api.baseURL(), Store: store, Notifier: notifier}
	if mutate != nil {
		mutate(&opts)
	}
	c, err := New(opts)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return &harness{api: api, store: store, client: c, events: events}
}

func (h *harness) get(t *testing.T, path string) *Response {
	t.Helper()
	resp, err := h.client.Do(context.Background(), NewDescriptor(context.Background(), http.MethodGet, path, nil))
	if err != nil {
		t.Fatalf("Do(%s) error = %v", path, err)
	}
	return resp
}
