package tui

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stackit-qa/stackit-client/internal/credential"
	"github.com/stackit-qa/stackit-client/internal/session"
	"github.com/stackit-qa/stackit-client/sdk/api"
	"github.com/stackit-qa/stackit-client/sdk/client"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T, routes map[string]string, loggedIn bool) (App, *credential.Store) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := routes[r.Method+" "+r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)

	ctx := context.Background()
	store, err := credential.Open(ctx, credential.NewMemoryBackend(), "default")
	require.NoError(t, err)
	if loggedIn {
		require.NoError(t, store.SetPair(ctx, credential.Pair{Access: "A1", Refresh: "R1"}))
	}
	c, err := client.New(client.Options{BaseURL: srv.URL, Store: store, Notifier: session.NewNotifier()})
	require.NoError(t, err)

	app := NewApp(ctx, Options{API: api.New(c), Profile: "default", WebURL: "http://localhost:3000", LoggedIn: loggedIn})
	model, _ := app.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return model.(App), store
}

func send(t *testing.T, app App, msg tea.Msg) (App, tea.Cmd) {
	t.Helper()
	model, cmd := app.Update(msg)
	return model.(App), cmd
}

func typeText(t *testing.T, app App, text string) App {
	t.Helper()
	app, _ = send(t, app, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
	return app
}

func TestLoginGateLogsIn(t *testing.T) {
	app, store := newTestApp(t, map[string]string{
		"POST /token/": `{"access":"A1","refresh":"R1"}`,
	}, false)
	require.Contains(t, app.View(), "StackIt login")

	app = typeText(t, app, "alice")
	app, _ = send(t, app, tea.KeyMsg{Type: tea.KeyEnter})
	app = typeText(t, app, "secret")
	app, cmd := send(t, app, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	require.True(t, app.login.busy)

	msg := cmd()
	result, ok := msg.(loginResultMsg)
	require.True(t, ok)
	require.NoError(t, result.err)

	app, _ = send(t, app, msg)
	require.True(t, app.authenticated)
	require.Equal(t, credential.Pair{Access: "A1", Refresh: "R1"}, store.Pair())
	require.Contains(t, app.View(), "alice @ profile default")
}

func TestLoginGateRequiresBothFields(t *testing.T) {
	app, _ := newTestApp(t, nil, false)
	app = typeText(t, app, "alice")
	app, _ = send(t, app, tea.KeyMsg{Type: tea.KeyEnter})
	app, cmd := send(t, app, tea.KeyMsg{Type: tea.KeyEnter})
	require.Nil(t, cmd)
	require.Contains(t, app.View(), "Username and password are required")
}

func TestSessionEndedReturnsToLoginGate(t *testing.T) {
	app, _ := newTestApp(t, nil, true)
	gen := app.pollGen

	app, _ = send(t, app, sessionEndedMsg{reason: session.ReasonRefreshFailed})
	require.False(t, app.authenticated)
	require.Greater(t, app.pollGen, gen)
	require.Contains(t, app.View(), "Session expired (refresh_failed), please log in again")

	app, _ = send(t, app, sessionEndedMsg{reason: session.ReasonLogout})
	require.Contains(t, app.View(), "Session expired", "a second event must not overwrite the notice")
}

func TestStaleUnreadTicksAreIgnored(t *testing.T) {
	app, _ := newTestApp(t, nil, true)

	app, cmd := send(t, app, unreadMsg{gen: app.pollGen, count: 4})
	require.NotNil(t, cmd)
	require.Equal(t, 4, app.unread)
	require.Contains(t, app.View(), "Notifications (4)")

	app, cmd = send(t, app, unreadMsg{gen: app.pollGen - 1, count: 9})
	require.Nil(t, cmd)
	require.Equal(t, 4, app.unread)

	_, cmd = send(t, app, unreadTickMsg{gen: app.pollGen + 1})
	require.Nil(t, cmd)
}

func TestQuestionsTabNavigatesToDetail(t *testing.T) {
	app, _ := newTestApp(t, map[string]string{
		"GET /questions/":   `[{"id":1,"title":"First","tags":[{"name":"go"}],"answers":[]},{"id":2,"title":"Second","tags":[],"answers":[{}]}]`,
		"GET /questions/2/": `{"id":2,"title":"Second","body":"Why?","author":"alice","tags":[]}`,
		"GET /answers/":     `[{"id":8,"body":"Because.","author":"bob","is_accepted":true}]`,
	}, true)

	app, _ = send(t, app, app.questions.fetchQuestions())
	require.Contains(t, app.View(), "First")
	require.Contains(t, app.View(), "go")

	app, _ = send(t, app, tea.KeyMsg{Type: tea.KeyDown})
	require.Equal(t, 1, app.questions.cursor)

	app, cmd := send(t, app, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	app, _ = send(t, app, cmd())
	view := app.View()
	require.Contains(t, view, "Why?")
	require.Contains(t, view, "Because.")
	require.Contains(t, view, "accepted")

	app, _ = send(t, app, tea.KeyMsg{Type: tea.KeyEsc})
	require.Nil(t, app.questions.detail)
}

func TestQuestionsSearchCapturesKeys(t *testing.T) {
	app, _ := newTestApp(t, map[string]string{"GET /questions/": `[]`}, true)

	app = typeText(t, app, "/")
	require.True(t, app.questions.searching)
	app = typeText(t, app, "q")
	require.True(t, app.authenticated, "q types into the search field instead of quitting")
	require.Equal(t, "q", app.questions.search.Value())

	app, cmd := send(t, app, tea.KeyMsg{Type: tea.KeyEnter})
	require.False(t, app.questions.searching)
	require.NotNil(t, cmd)
	_, ok := cmd().(questionsMsg)
	require.True(t, ok)
}

func TestNotificationsEnterMarksReadAndOpens(t *testing.T) {
	app, _ := newTestApp(t, map[string]string{
		"GET /notifications/":              `[{"id":5,"message":"New answer","link":"/questions/2/","is_read":false,"created_at":"2024-05-01"}]`,
		"POST /notifications/5/mark_read/": `{"status":"ok"}`,
	}, true)
	var opened string
	prev := openURL
	openURL = func(target string) error { opened = target; return nil }
	t.Cleanup(func() { openURL = prev })

	app, _ = send(t, app, tea.KeyMsg{Type: tea.KeyTab})
	require.Equal(t, tabNotifications, app.activeTab)
	app, _ = send(t, app, app.notifications.fetch())
	require.Contains(t, app.View(), "New answer")

	app, cmd := send(t, app, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	app, _ = send(t, app, cmd())
	require.Equal(t, "http://localhost:3000/questions/2/", opened)
	require.Equal(t, true, app.notifications.items[0]["is_read"])
}

func TestCopyLinkUsesClipboard(t *testing.T) {
	var copied string
	prev := writeClipboard
	writeClipboard = func(text string) error { copied = text; return nil }
	t.Cleanup(func() { writeClipboard = prev })

	status := copyLink("http://localhost:3000", questionLink(3))
	require.Equal(t, "http://localhost:3000/questions/3/", copied)
	require.True(t, strings.Contains(status, "copied"))
}

func TestHelpers(t *testing.T) {
	require.Equal(t, 7, objectID(api.Object{"id": float64(7)}))
	require.Equal(t, 0, objectID(nil))
	require.Equal(t, "", stringField(api.Object{}, "title"))
	require.Equal(t, "3", stringField(api.Object{"n": float64(3)}, "n"))
	require.Equal(t, "go, web", joinTags([]any{map[string]any{"name": "go"}, "web"}))
	require.Equal(t, "ab", fitStringWidth("abc", 2))
}
