package tui

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stackit-qa/stackit-client/sdk/api"
)

// questionsTabModel lists questions and shows one with its answers.
type questionsTabModel struct {
	ctx      context.Context
	api      *api.API
	webURL   string
	viewport viewport.Model
	search   textinput.Model

	searching bool
	questions []api.Object
	cursor    int
	detail    api.Object
	answers   []api.Object
	err       error
	status    string
	width     int
	height    int
}

type questionsMsg struct {
	items []api.Object
	err   error
}

type questionDetailMsg struct {
	question api.Object
	answers  []api.Object
	err      error
}

func newQuestionsTabModel(ctx context.Context, a *api.API, webURL string) questionsTabModel {
	ti := textinput.New()
	ti.Prompt = "  Search: "
	ti.CharLimit = 200
	return questionsTabModel{ctx: ctx, api: a, webURL: webURL, search: ti, viewport: viewport.New(0, 0)}
}

func (m questionsTabModel) Init() tea.Cmd {
	return m.fetchQuestions
}

func (m questionsTabModel) fetchQuestions() tea.Msg {
	params := url.Values{}
	if term := strings.TrimSpace(m.search.Value()); term != "" {
		params.Set("search", term)
	}
	items, err := m.api.Questions.List(m.ctx, params)
	return questionsMsg{items: items, err: err}
}

func (m questionsTabModel) fetchDetail(id int) tea.Cmd {
	return func() tea.Msg {
		question, err := m.api.Questions.Get(m.ctx, id)
		if err != nil {
			return questionDetailMsg{err: err}
		}
		answers, err := m.api.Answers.List(m.ctx, id)
		return questionDetailMsg{question: question, answers: answers, err: err}
	}
}

// SetSize resizes the viewport to the content area.
func (m *questionsTabModel) SetSize(w, h int) {
	m.width = w
	m.height = h
	m.viewport.Width = w
	m.viewport.Height = max(1, h-2)
	m.viewport.SetContent(m.renderContent())
}

func (m questionsTabModel) selectedID() int {
	if m.detail != nil {
		return objectID(m.detail)
	}
	if m.cursor < len(m.questions) {
		return objectID(m.questions[m.cursor])
	}
	return 0
}

// inputActive reports whether keystrokes go to the search field.
func (m questionsTabModel) inputActive() bool {
	return m.searching
}

func (m questionsTabModel) Update(msg tea.Msg) (questionsTabModel, tea.Cmd) {
	switch msg := msg.(type) {
	case questionsMsg:
		m.err = msg.err
		if msg.err == nil {
			m.questions = msg.items
			if m.cursor >= len(m.questions) {
				m.cursor = max(0, len(m.questions)-1)
			}
		}
		m.viewport.SetContent(m.renderContent())
		return m, nil

	case questionDetailMsg:
		m.err = msg.err
		if msg.err == nil {
			m.detail = msg.question
			m.answers = msg.answers
			m.viewport.GotoTop()
		}
		m.viewport.SetContent(m.renderContent())
		return m, nil

	case tea.KeyMsg:
		if m.searching {
			switch msg.String() {
			case "enter":
				m.searching = false
				m.search.Blur()
				m.cursor = 0
				return m, m.fetchQuestions
			case "esc":
				m.searching = false
				m.search.Blur()
				m.viewport.SetContent(m.renderContent())
				return m, nil
			}
			var cmd tea.Cmd
			m.search, cmd = m.search.Update(msg)
			return m, cmd
		}

		switch msg.String() {
		case "/":
			if m.detail == nil {
				m.searching = true
				m.search.Focus()
				return m, textinput.Blink
			}
		case "r":
			m.status = ""
			if id := objectID(m.detail); m.detail != nil && id > 0 {
				return m, m.fetchDetail(id)
			}
			return m, m.fetchQuestions
		case "esc", "backspace":
			if m.detail != nil {
				m.detail = nil
				m.answers = nil
				m.viewport.SetContent(m.renderContent())
				return m, nil
			}
		case "up", "k":
			if m.detail == nil && m.cursor > 0 {
				m.cursor--
				m.viewport.SetContent(m.renderContent())
				return m, nil
			}
		case "down", "j":
			if m.detail == nil && m.cursor < len(m.questions)-1 {
				m.cursor++
				m.viewport.SetContent(m.renderContent())
				return m, nil
			}
		case "enter":
			if m.detail == nil && m.cursor < len(m.questions) {
				return m, m.fetchDetail(objectID(m.questions[m.cursor]))
			}
		case "o":
			if id := m.selectedID(); id > 0 {
				m.status = openLink(m.webURL, questionLink(id))
				m.viewport.SetContent(m.renderContent())
			}
			return m, nil
		case "y":
			if id := m.selectedID(); id > 0 {
				m.status = copyLink(m.webURL, questionLink(id))
				m.viewport.SetContent(m.renderContent())
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m questionsTabModel) View() string {
	var sb strings.Builder
	if m.searching {
		sb.WriteString(m.search.View())
	} else if m.detail != nil {
		sb.WriteString(helpStyle.Render("esc back • r reload • o open in browser • y copy link"))
	} else {
		sb.WriteString(helpStyle.Render("↑/↓ select • enter open • / search • r reload • o browser • y copy link"))
	}
	sb.WriteString("\n")
	sb.WriteString(m.viewport.View())
	return sb.String()
}

func (m questionsTabModel) renderContent() string {
	var sb strings.Builder
	if m.err != nil {
		sb.WriteString(errorStyle.Render("✗ " + m.err.Error()))
		sb.WriteString("\n\n")
	}
	if m.status != "" {
		sb.WriteString(m.status)
		sb.WriteString("\n\n")
	}
	if m.detail != nil {
		sb.WriteString(renderQuestion(m.detail, m.answers))
		return sb.String()
	}
	if term := strings.TrimSpace(m.search.Value()); term != "" {
		sb.WriteString(subtitleStyle.Render(fmt.Sprintf("Results for %q", term)))
		sb.WriteString("\n\n")
	}
	if len(m.questions) == 0 {
		sb.WriteString(subtitleStyle.Render("No questions"))
		return sb.String()
	}
	for i, q := range m.questions {
		answers, _ := q["answers"].([]any)
		line := fmt.Sprintf("#%-5d %s", objectID(q), stringField(q, "title"))
		meta := fmt.Sprintf("  %d answers", len(answers))
		if tags := joinTags(q["tags"]); tags != "" {
			meta += "  " + tagStyle.Render(tags)
		}
		if i == m.cursor {
			sb.WriteString(selectedStyle.Render(line))
		} else {
			sb.WriteString(bodyStyle.Render(line))
		}
		sb.WriteString(helpStyle.Render(meta))
		sb.WriteString("\n")
	}
	return sb.String()
}

func renderQuestion(q api.Object, answers []api.Object) string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render(fmt.Sprintf("#%d %s", objectID(q), stringField(q, "title"))))
	sb.WriteString("\n")
	meta := "asked by " + stringField(q, "author")
	if tags := joinTags(q["tags"]); tags != "" {
		meta += "  " + tags
	}
	sb.WriteString(subtitleStyle.Render(meta))
	sb.WriteString("\n\n")
	sb.WriteString(bodyStyle.Render(stringField(q, "body")))
	sb.WriteString("\n\n")
	sb.WriteString(titleStyle.Render(fmt.Sprintf("%d answers", len(answers))))
	sb.WriteString("\n")
	for _, a := range answers {
		header := fmt.Sprintf("#%d by %s", objectID(a), stringField(a, "author"))
		if accepted, _ := a["is_accepted"].(bool); accepted {
			header = successStyle.Render("✓ accepted ") + header
		}
		sb.WriteString(sectionStyle.Render(header + "\n" + stringField(a, "body")))
		sb.WriteString("\n")
	}
	return sb.String()
}

func questionLink(id int) string {
	return fmt.Sprintf("/questions/%d/", id)
}
