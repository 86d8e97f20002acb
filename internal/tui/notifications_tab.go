package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stackit-qa/stackit-client/sdk/api"
)

// notificationsTabModel lists notifications and marks them read.
type notificationsTabModel struct {
	ctx      context.Context
	api      *api.API
	webURL   string
	viewport viewport.Model

	items  []api.Object
	cursor int
	err    error
	status string
}

type notificationsMsg struct {
	items []api.Object
	err   error
}

type markReadMsg struct {
	id   int
	open bool
	err  error
}

func newNotificationsTabModel(ctx context.Context, a *api.API, webURL string) notificationsTabModel {
	return notificationsTabModel{ctx: ctx, api: a, webURL: webURL, viewport: viewport.New(0, 0)}
}

func (m notificationsTabModel) Init() tea.Cmd {
	return m.fetch
}

func (m notificationsTabModel) fetch() tea.Msg {
	items, err := m.api.Notifications.List(m.ctx)
	return notificationsMsg{items: items, err: err}
}

func (m notificationsTabModel) markRead(id int, open bool) tea.Cmd {
	return func() tea.Msg {
		return markReadMsg{id: id, open: open, err: m.api.Notifications.MarkRead(m.ctx, id)}
	}
}

// SetSize resizes the viewport to the content area.
func (m *notificationsTabModel) SetSize(w, h int) {
	m.viewport.Width = w
	m.viewport.Height = max(1, h-2)
	m.viewport.SetContent(m.renderContent())
}

func (m notificationsTabModel) selected() api.Object {
	if m.cursor < len(m.items) {
		return m.items[m.cursor]
	}
	return nil
}

func (m notificationsTabModel) Update(msg tea.Msg) (notificationsTabModel, tea.Cmd) {
	switch msg := msg.(type) {
	case notificationsMsg:
		m.err = msg.err
		if msg.err == nil {
			m.items = msg.items
			if m.cursor >= len(m.items) {
				m.cursor = max(0, len(m.items)-1)
			}
		}
		m.viewport.SetContent(m.renderContent())
		return m, nil

	case markReadMsg:
		if msg.err != nil {
			m.status = errorStyle.Render("✗ " + msg.err.Error())
			m.viewport.SetContent(m.renderContent())
			return m, nil
		}
		m.status = successStyle.Render(fmt.Sprintf("✓ notification #%d marked read", msg.id))
		for _, n := range m.items {
			if objectID(n) == msg.id {
				n["is_read"] = true
				if msg.open {
					m.status = openLink(m.webURL, stringField(n, "link"))
				}
			}
		}
		m.viewport.SetContent(m.renderContent())
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "r":
			m.status = ""
			return m, m.fetch
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
				m.viewport.SetContent(m.renderContent())
			}
			return m, nil
		case "down", "j":
			if m.cursor < len(m.items)-1 {
				m.cursor++
				m.viewport.SetContent(m.renderContent())
			}
			return m, nil
		case "m":
			if n := m.selected(); n != nil {
				return m, m.markRead(objectID(n), false)
			}
			return m, nil
		case "enter":
			if n := m.selected(); n != nil {
				return m, m.markRead(objectID(n), true)
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m notificationsTabModel) View() string {
	return helpStyle.Render("↑/↓ select • enter open • m mark read • r reload") + "\n" + m.viewport.View()
}

func (m notificationsTabModel) renderContent() string {
	var sb strings.Builder
	if m.err != nil {
		sb.WriteString(errorStyle.Render("✗ " + m.err.Error()))
		sb.WriteString("\n\n")
	}
	if m.status != "" {
		sb.WriteString(m.status)
		sb.WriteString("\n\n")
	}
	if len(m.items) == 0 {
		sb.WriteString(subtitleStyle.Render("No notifications"))
		return sb.String()
	}
	for i, n := range m.items {
		marker := "●"
		if read, _ := n["is_read"].(bool); read {
			marker = " "
		}
		line := fmt.Sprintf("%s %s", marker, stringField(n, "message"))
		if i == m.cursor {
			sb.WriteString(selectedStyle.Render(line))
		} else {
			sb.WriteString(bodyStyle.Render(line))
		}
		sb.WriteString(helpStyle.Render("  " + stringField(n, "created_at")))
		sb.WriteString("\n")
	}
	return sb.String()
}
