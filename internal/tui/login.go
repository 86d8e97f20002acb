package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// loginModel is the gate shown while no session exists.
type loginModel struct {
	inputs []textinput.Model
	focus  int
	err    string
	busy   bool
}

type loginResultMsg struct {
	username string
	err      error
}

func newLoginModel() loginModel {
	username := textinput.New()
	username.Prompt = "  Username: "
	username.CharLimit = 150
	username.Focus()

	password := textinput.New()
	password.Prompt = "  Password: "
	password.CharLimit = 256
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '*'

	return loginModel{inputs: []textinput.Model{username, password}}
}

// reset clears the password and moves focus back to the username.
func (m *loginModel) reset() {
	m.inputs[1].SetValue("")
	m.busy = false
	m.setFocus(0)
}

func (m *loginModel) setFocus(idx int) {
	m.focus = idx
	for i := range m.inputs {
		if i == idx {
			m.inputs[i].Focus()
		} else {
			m.inputs[i].Blur()
		}
	}
}

func (m loginModel) values() (string, string) {
	return strings.TrimSpace(m.inputs[0].Value()), m.inputs[1].Value()
}

// Update handles input for the focused field. submit is called once both fields are filled
// and enter is pressed on the password field.
func (m loginModel) Update(msg tea.Msg, submit func(username, password string) tea.Cmd) (loginModel, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
		return m, cmd
	}
	switch key.String() {
	case "tab", "down", "shift+tab", "up":
		m.setFocus((m.focus + 1) % len(m.inputs))
		return m, textinput.Blink
	case "enter":
		if m.busy {
			return m, nil
		}
		if m.focus == 0 {
			m.setFocus(1)
			return m, textinput.Blink
		}
		username, password := m.values()
		if username == "" || password == "" {
			m.err = "Username and password are required"
			return m, nil
		}
		m.err = ""
		m.busy = true
		return m, submit(username, password)
	}
	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m loginModel) View(notice string) string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("StackIt login"))
	sb.WriteString("\n")
	if notice != "" {
		sb.WriteString(warningStyle.Render(notice))
		sb.WriteString("\n\n")
	}
	for _, in := range m.inputs {
		sb.WriteString(in.View())
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
	switch {
	case m.busy:
		sb.WriteString(subtitleStyle.Render("Logging in..."))
		sb.WriteString("\n")
	case m.err != "":
		sb.WriteString(errorStyle.Render(m.err))
		sb.WriteString("\n")
	}
	sb.WriteString(helpStyle.Render("tab switch field • enter submit • esc quit"))
	return sb.String()
}
