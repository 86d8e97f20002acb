package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/stackit-qa/stackit-client/internal/browser"
	"github.com/stackit-qa/stackit-client/internal/session"
	"github.com/stackit-qa/stackit-client/sdk/api"
)

// Tab identifiers
const (
	tabQuestions = iota
	tabNotifications
)

var tabNames = []string{"Questions", "Notifications"}

const defaultUnreadInterval = 30 * time.Second

// Options configures the interactive client.
type Options struct {
	API     *api.API
	Profile string
	WebURL  string

	// LoggedIn skips the login gate when a session already exists.
	LoggedIn bool

	// UnreadInterval is how often the unread badge is refreshed.
	UnreadInterval time.Duration
}

// App is the root bubbletea model.
type App struct {
	ctx  context.Context
	opts Options

	authenticated bool
	user          string
	notice        string
	login         loginModel

	activeTab     int
	questions     questionsTabModel
	notifications notificationsTabModel

	unread  int
	pollGen int

	width  int
	height int
	ready  bool
}

// sessionEndedMsg is delivered when the credential store was cleared.
type sessionEndedMsg struct {
	reason session.Reason
}

type unreadMsg struct {
	gen   int
	count int
	err   error
}

type unreadTickMsg struct {
	gen int
}

type logoutMsg struct {
	err error
}

// NewApp creates the root model.
func NewApp(ctx context.Context, opts Options) App {
	if opts.UnreadInterval <= 0 {
		opts.UnreadInterval = defaultUnreadInterval
	}
	return App{
		ctx:           ctx,
		opts:          opts,
		authenticated: opts.LoggedIn,
		login:         newLoginModel(),
		questions:     newQuestionsTabModel(ctx, opts.API, opts.WebURL),
		notifications: newNotificationsTabModel(ctx, opts.API, opts.WebURL),
	}
}

func (a App) Init() tea.Cmd {
	if !a.authenticated {
		return textinput.Blink
	}
	return tea.Batch(a.questions.Init(), a.notifications.Init(), a.pollUnread())
}

func (a App) pollUnread() tea.Cmd {
	gen := a.pollGen
	return func() tea.Msg {
		count, err := a.opts.API.Notifications.UnreadCount(a.ctx)
		return unreadMsg{gen: gen, count: count, err: err}
	}
}

func (a App) submitLogin(username, password string) tea.Cmd {
	return func() tea.Msg {
		_, err := a.opts.API.Auth.Login(a.ctx, username, password)
		return loginResultMsg{username: username, err: err}
	}
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.ready = true
		contentH := max(1, a.height-3) // tab bar + status bar
		a.questions.SetSize(a.width, contentH)
		a.notifications.SetSize(a.width, contentH)
		return a, nil

	case sessionEndedMsg:
		if !a.authenticated {
			return a, nil
		}
		a.authenticated = false
		a.unread = 0
		a.pollGen++
		a.login.reset()
		if msg.reason == session.ReasonLogout {
			a.notice = "Logged out"
		} else {
			a.notice = fmt.Sprintf("Session expired (%s), please log in again", msg.reason)
		}
		return a, textinput.Blink

	case loginResultMsg:
		a.login.busy = false
		if msg.err != nil {
			a.login.err = msg.err.Error()
			return a, nil
		}
		a.authenticated = true
		a.user = msg.username
		a.notice = ""
		a.login.err = ""
		a.login.reset()
		a.pollGen++
		return a, tea.Batch(a.questions.Init(), a.notifications.Init(), a.pollUnread())

	case unreadMsg:
		if msg.gen != a.pollGen {
			return a, nil
		}
		if msg.err == nil {
			a.unread = msg.count
		}
		gen := msg.gen
		return a, tea.Tick(a.opts.UnreadInterval, func(time.Time) tea.Msg { return unreadTickMsg{gen: gen} })

	case logoutMsg:
		if msg.err != nil {
			a.questions.status = errorStyle.Render("✗ logout: " + msg.err.Error())
			a.questions.viewport.SetContent(a.questions.renderContent())
		}
		return a, nil

	case unreadTickMsg:
		if msg.gen != a.pollGen || !a.authenticated {
			return a, nil
		}
		return a, a.pollUnread()

	case tea.KeyMsg:
		if !a.authenticated {
			switch msg.String() {
			case "ctrl+c", "esc":
				return a, tea.Quit
			}
			var cmd tea.Cmd
			a.login, cmd = a.login.Update(msg, a.submitLogin)
			return a, cmd
		}

		inputActive := a.activeTab == tabQuestions && a.questions.inputActive()
		switch msg.String() {
		case "ctrl+c":
			return a, tea.Quit
		case "q":
			if !inputActive {
				return a, tea.Quit
			}
		case "L":
			if !inputActive {
				return a, a.logout()
			}
		case "tab":
			if !inputActive {
				a.activeTab = (a.activeTab + 1) % len(tabNames)
				return a, nil
			}
		case "shift+tab":
			if !inputActive {
				a.activeTab = (a.activeTab - 1 + len(tabNames)) % len(tabNames)
				return a, nil
			}
		}
	}

	if !a.authenticated {
		var cmd tea.Cmd
		a.login, cmd = a.login.Update(msg, a.submitLogin)
		return a, cmd
	}

	// Data messages go to their tab regardless of which one is active.
	var cmd tea.Cmd
	switch msg.(type) {
	case questionsMsg, questionDetailMsg:
		a.questions, cmd = a.questions.Update(msg)
		return a, cmd
	case notificationsMsg, markReadMsg:
		a.notifications, cmd = a.notifications.Update(msg)
		return a, cmd
	}

	switch a.activeTab {
	case tabQuestions:
		a.questions, cmd = a.questions.Update(msg)
	case tabNotifications:
		a.notifications, cmd = a.notifications.Update(msg)
	}
	return a, cmd
}

// logout clears the store; the resulting session event moves the app to the login gate.
func (a App) logout() tea.Cmd {
	return func() tea.Msg {
		return logoutMsg{err: a.opts.API.Auth.Logout(a.ctx)}
	}
}

func (a App) View() string {
	if !a.authenticated {
		return a.login.View(a.notice)
	}
	if !a.ready {
		return "Initializing..."
	}

	var sb strings.Builder
	sb.WriteString(a.renderTabBar())
	sb.WriteString("\n")
	switch a.activeTab {
	case tabQuestions:
		sb.WriteString(a.questions.View())
	case tabNotifications:
		sb.WriteString(a.notifications.View())
	}
	sb.WriteString("\n")
	sb.WriteString(a.renderStatusBar())
	return sb.String()
}

func (a App) renderTabBar() string {
	tabs := make([]string, 0, len(tabNames))
	for i, name := range tabNames {
		if i == tabNotifications && a.unread > 0 {
			name = fmt.Sprintf("%s (%d)", name, a.unread)
		}
		if i == a.activeTab {
			tabs = append(tabs, tabActiveStyle.Render(name))
		} else {
			tabs = append(tabs, tabInactiveStyle.Render(name))
		}
	}
	return tabBarStyle.Width(a.width).Render(lipgloss.JoinHorizontal(lipgloss.Top, tabs...))
}

func (a App) renderStatusBar() string {
	left := "profile " + a.opts.Profile
	if a.user != "" {
		left = a.user + " @ " + left
	}
	right := "tab switch • L logout • q quit"

	width := max(1, a.width)
	contentWidth := max(0, width-2)
	gap := max(0, contentWidth-lipgloss.Width(left)-lipgloss.Width(right))
	line := left + strings.Repeat(" ", gap) + right
	if lipgloss.Width(line) > contentWidth {
		line = fitStringWidth(line, contentWidth)
	}
	return statusBarStyle.Width(width).Render(line)
}

func fitStringWidth(text string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	if lipgloss.Width(text) <= maxWidth {
		return text
	}
	out := ""
	for _, r := range text {
		next := out + string(r)
		if lipgloss.Width(next) > maxWidth {
			break
		}
		out = next
	}
	return out
}

var (
	openURL        = browser.OpenURL
	writeClipboard = clipboard.WriteAll
)

func openLink(webURL, link string) string {
	target, err := browser.ResolveLink(webURL, link)
	if err == nil {
		err = openURL(target)
	}
	if err != nil {
		return errorStyle.Render("✗ " + err.Error())
	}
	return successStyle.Render("✓ opened " + target)
}

func copyLink(webURL, link string) string {
	target, err := browser.ResolveLink(webURL, link)
	if err == nil {
		err = writeClipboard(target)
	}
	if err != nil {
		return errorStyle.Render("✗ " + err.Error())
	}
	return successStyle.Render("✓ copied " + target)
}

func objectID(o api.Object) int {
	if o == nil {
		return 0
	}
	id, _ := o["id"].(float64)
	return int(id)
}

func stringField(o api.Object, key string) string {
	switch v := o[key].(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

func joinTags(raw any) string {
	items, _ := raw.([]any)
	names := make([]string, 0, len(items))
	for _, item := range items {
		if tag, ok := item.(map[string]any); ok {
			names = append(names, fmt.Sprint(tag["name"]))
			continue
		}
		names = append(names, fmt.Sprint(item))
	}
	return strings.Join(names, ", ")
}

// Run starts the interactive client and blocks until the user quits or ctx ends.
// Session invalidation events from notifier return the app to its login gate.
func Run(ctx context.Context, opts Options, notifier *session.Notifier, output io.Writer) error {
	if output == nil {
		output = os.Stdout
	}
	p := tea.NewProgram(NewApp(ctx, opts), tea.WithAltScreen(), tea.WithOutput(output), tea.WithContext(ctx))
	unsubscribe := notifier.Subscribe(func(ev session.Invalidated) {
		p.Send(sessionEndedMsg{reason: ev.Reason})
	})
	defer unsubscribe()

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
