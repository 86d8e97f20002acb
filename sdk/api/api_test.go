package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stackit-qa/stackit-client/internal/credential"
	"github.com/stackit-qa/stackit-client/internal/metrics"
	"github.com/stackit-qa/stackit-client/internal/session"
	"github.com/stackit-qa/stackit-client/sdk/client"
)

type recordedRequest struct {
	Method string
	Path   string
	Query  string
	Body   string
	Auth   string
}

type recorder struct {
	mu       sync.Mutex
	requests []recordedRequest
	replies  map[string]string
	status   int
}

func (r *recorder) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	body, _ := io.ReadAll(req.Body)
	r.mu.Lock()
	r.requests = append(r.requests, recordedRequest{
		Method: req.Method,
		Path:   req.URL.Path,
		Query:  req.URL.RawQuery,
		Body:   string(body),
		Auth:   req.Header.Get("Authorization"),
	})
	reply, ok := r.replies[req.Method+" "+req.URL.Path]
	status := r.status
	r.mu.Unlock()

	if status == 0 {
		status = http.StatusOK
	}
	if !ok {
		reply = "{}"
	}
	if reply == "" {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, reply)
}

func (r *recorder) last(t *testing.T) recordedRequest {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.requests) == 0 {
		t.Fatalf("no request recorded")
	}
	return r.requests[len(r.requests)-1]
}

func newTestAPI(t *testing.T, replies map[string]string) (*API, *recorder, *credential.Store, *session.Notifier) {
	t.Helper()
	rec := &recorder{replies: replies}
	server := httptest.NewServer(rec)
	t.Cleanup(server.Close)

	store, err := credential.Open(context.Background(), credential.NewMemoryBackend(), "default")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	notifier := session.NewNotifier()
	c, err := client.New(client.Options{BaseURL: server.URL + "/api", Store: store, Notifier: notifier})
	if err != nil {
		t.Fatalf("client.New() error = %v", err)
	}
	return New(c), rec, store, notifier
}

func jsonEqual(t *testing.T, got, want string) {
	t.Helper()
	var g, w any
	if err := json.Unmarshal([]byte(got), &g); err != nil {
		t.Fatalf("decode %q: %v", got, err)
	}
	if err := json.Unmarshal([]byte(want), &w); err != nil {
		t.Fatalf("decode %q: %v", want, err)
	}
	gb, _ := json.Marshal(g)
	wb, _ := json.Marshal(w)
	if string(gb) != string(wb) {
		t.Fatalf("body = %s, want %s", gb, wb)
	}
}

func TestWrappersSendDocumentedRequests(t *testing.T) {
	ctx := context.Background()
	a, rec, store, _ := newTestAPI(t, map[string]string{
		"GET /api/questions/":      `[{"id":1,"title":"How?"}]`,
		"GET /api/answers/":        `[{"id":7}]`,
		"GET /api/tags/":           `[{"id":1,"name":"go"}]`,
		"GET /api/notifications/":  `[{"id":3,"is_read":false}]`,
		"DELETE /api/questions/5/": "",
	})
	if err := store.SetPair(ctx, credential.Pair{Access: "A1", Refresh: "R1"}); err != nil {
		t.Fatalf("seed store: %v", err)
	}

	tests := []struct {
		name   string
		call   func() error
		method string
		path   string
		query  string
		body   string
	}{
		{"register", func() error {
			_, err := a.Auth.Register(ctx, "ann", "ann@example.com", "pw")
			return err
		}, "POST", "/api/auth/register/", "", `{"username":"ann","email":"ann@example.com","password":"pw"}`},
		{"current user", func() error { _, err := a.Auth.CurrentUser(ctx); return err }, "GET", "/api/auth/user/", "", ""},
		{"list questions", func() error {
			out, err := a.Questions.List(ctx, url.Values{"search": {"go"}})
			if err == nil && len(out) != 1 {
				t.Errorf("List() returned %d questions", len(out))
			}
			return err
		}, "GET", "/api/questions/", "search=go", ""},
		{"get question", func() error { _, err := a.Questions.Get(ctx, 5); return err }, "GET", "/api/questions/5/", "", ""},
		{"create question", func() error {
			_, err := a.Questions.Create(ctx, Object{"title": "t", "description": "d", "tags": []string{"go"}})
			return err
		}, "POST", "/api/questions/", "", `{"title":"t","description":"d","tags":["go"]}`},
		{"update question", func() error {
			_, err := a.Questions.Update(ctx, 5, Object{"title": "t2"})
			return err
		}, "PUT", "/api/questions/5/", "", `{"title":"t2"}`},
		{"delete question", func() error { return a.Questions.Delete(ctx, 5) }, "DELETE", "/api/questions/5/", "", ""},
		{"list answers", func() error { _, err := a.Answers.List(ctx, 5); return err }, "GET", "/api/answers/", "question=5", ""},
		{"create answer", func() error {
			_, err := a.Answers.Create(ctx, Object{"question": 5, "content": "c"})
			return err
		}, "POST", "/api/answers/", "", `{"question":5,"content":"c"}`},
		{"accept answer", func() error { _, err := a.Answers.Accept(ctx, 7); return err }, "POST", "/api/answers/7/accept/", "", ""},
		{"list tags", func() error { _, err := a.Tags.List(ctx); return err }, "GET", "/api/tags/", "", ""},
		{"vote", func() error { _, err := a.Votes.Vote(ctx, 7, -1); return err }, "POST", "/api/votes/", "", `{"answer":7,"value":-1}`},
		{"list notifications", func() error { _, err := a.Notifications.List(ctx); return err }, "GET", "/api/notifications/", "", ""},
		{"mark read", func() error { return a.Notifications.MarkRead(ctx, 3) }, "POST", "/api/notifications/3/mark_read/", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.call(); err != nil {
				t.Fatalf("call error = %v", err)
			}
			got := rec.last(t)
			if got.Method != tt.method || got.Path != tt.path || got.Query != tt.query {
				t.Fatalf("request = %s %s?%s, want %s %s?%s", got.Method, got.Path, got.Query, tt.method, tt.path, tt.query)
			}
			if got.Auth != "Bearer A1" {
				t.Fatalf("Authorization = %q", got.Auth)
			}
			if tt.body == "" {
				if got.Body != "" {
					t.Fatalf("unexpected body %q", got.Body)
				}
				return
			}
			jsonEqual(t, got.Body, tt.body)
		})
	}
}

func TestLoginStoresCredentialPair(t *testing.T) {
	ctx := context.Background()
	a, rec, store, _ := newTestAPI(t, map[string]string{
		"POST /api/token/": `{"access":"A1","refresh":"R1"}`,
	})

	pair, err := a.Auth.Login(ctx, "ann", "pw")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if pair != (credential.Pair{Access: "A1", Refresh: "R1"}) {
		t.Fatalf("Login() = %+v", pair)
	}
	if store.Pair() != pair {
		t.Fatalf("store = %+v, want %+v", store.Pair(), pair)
	}
	jsonEqual(t, rec.last(t).Body, `{"username":"ann","password":"pw"}`)
	if auth := rec.last(t).Auth; auth != "" {
		t.Fatalf("login sent Authorization %q without a stored credential", auth)
	}
}

func TestLoginWithoutAccessInResponseFails(t *testing.T) {
	a, _, store, _ := newTestAPI(t, map[string]string{"POST /api/token/": `{"detail":"ok"}`})
	if _, err := a.Auth.Login(context.Background(), "ann", "pw"); err == nil {
		t.Fatalf("expected error")
	}
	if !store.Pair().Empty() {
		t.Fatalf("store must stay empty")
	}
}

func TestLogoutClearsStoreAndNotifies(t *testing.T) {
	ctx := context.Background()
	a, rec, store, notifier := newTestAPI(t, nil)
	if err := store.SetPair(ctx, credential.Pair{Access: "A1", Refresh: "R1"}); err != nil {
		t.Fatalf("seed store: %v", err)
	}
	var got []session.Invalidated
	notifier.Subscribe(func(ev session.Invalidated) { got = append(got, ev) })

	if err := a.Auth.Logout(ctx); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}
	if !store.Pair().Empty() {
		t.Fatalf("store not cleared: %+v", store.Pair())
	}
	if len(got) != 1 || got[0].Reason != session.ReasonLogout {
		t.Fatalf("events = %+v", got)
	}
	if len(rec.requests) != 0 {
		t.Fatalf("logout must not call the server, got %d requests", len(rec.requests))
	}
}

func TestLogoutCountsInvalidation(t *testing.T) {
	ctx := context.Background()
	server := httptest.NewServer(&recorder{})
	t.Cleanup(server.Close)
	store, err := credential.Open(ctx, credential.NewMemoryBackend(), "default")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	reg := prometheus.NewRegistry()
	c, err := client.New(client.Options{BaseURL: server.URL + "/api", Store: store, Metrics: metrics.New(reg)})
	if err != nil {
		t.Fatalf("client.New() error = %v", err)
	}

	if err = New(c).Auth.Logout(ctx); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}
	want := `
# HELP stackit_client_session_invalidated_total Sessions ended by reason.
# TYPE stackit_client_session_invalidated_total counter
stackit_client_session_invalidated_total{reason="logout"} 1
`
	if err = testutil.GatherAndCompare(reg, strings.NewReader(want), "stackit_client_session_invalidated_total"); err != nil {
		t.Fatalf("invalidation counter: %v", err)
	}
}

func TestUnreadCount(t *testing.T) {
	a, _, _, _ := newTestAPI(t, map[string]string{
		"GET /api/notifications/unread-count/": `{"unread_count":4}`,
	})
	n, err := a.Notifications.UnreadCount(context.Background())
	if err != nil {
		t.Fatalf("UnreadCount() error = %v", err)
	}
	if n != 4 {
		t.Fatalf("UnreadCount() = %d, want 4", n)
	}
}

func TestVoteRejectsInvalidValue(t *testing.T) {
	a, rec, _, _ := newTestAPI(t, nil)
	if _, err := a.Votes.Vote(context.Background(), 7, 2); err == nil {
		t.Fatalf("expected error for value 2")
	}
	if len(rec.requests) != 0 {
		t.Fatalf("invalid vote must not be sent")
	}
}

func TestAcceptForbiddenSurfacesStatusError(t *testing.T) {
	a, rec, _, _ := newTestAPI(t, map[string]string{
		"POST /api/answers/7/accept/": `{"error":"You are not the question owner"}`,
	})
	rec.status = http.StatusForbidden

	_, err := a.Answers.Accept(context.Background(), 7)
	if !client.IsStatus(err, http.StatusForbidden) {
		t.Fatalf("err = %v, want 403 StatusError", err)
	}
}
