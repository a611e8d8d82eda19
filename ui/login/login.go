package login

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/deemkeen/postbox/ui/common"
	"github.com/deemkeen/postbox/util"
	"github.com/deemkeen/postbox/view"
)

var (
	Style = lipgloss.NewStyle().
		Align(lipgloss.Center, lipgloss.Center).
		BorderStyle(lipgloss.ThickBorder()).
		Margin(0, 3)
)

type Model struct {
	Username textinput.Model
	Password textinput.Model
	Step     int // 0=username, 1=password
	Err      string

	env   *view.Env
	login *view.Login
}

func InitialModel(env *view.Env) Model {
	username := textinput.New()
	username.Placeholder = "alice"
	username.Focus()
	username.CharLimit = 30
	username.Width = 30

	password := textinput.New()
	password.Placeholder = "password"
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'
	password.CharLimit = 64
	password.Width = 30

	return Model{
		Username: username,
		Password: password,
		env:      env,
		login:    view.NewLogin(env),
	}
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.login == nil {
		return m, nil
	}

	var cmd tea.Cmd
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "tab", "shift+tab", "up", "down":
			m.toggleStep()
			return m, nil
		case "enter":
			if m.Step == 0 {
				m.toggleStep()
				return m, nil
			}
			return m.submit(), nil
		}
	}

	switch m.Step {
	case 0:
		m.Username, cmd = m.Username.Update(msg)
	case 1:
		m.Password, cmd = m.Password.Update(msg)
	}
	return m, cmd
}

func (m *Model) toggleStep() {
	if m.Step == 0 {
		m.Step = 1
		m.Username.Blur()
		m.Password.Focus()
		return
	}
	m.Step = 0
	m.Password.Blur()
	m.Username.Focus()
}

func (m Model) submit() Model {
	username := strings.TrimSpace(m.Username.Value())
	password := m.Password.Value()
	if username == "" || password == "" {
		m.Err = "username and password are required"
		return m
	}
	m.Err = ""
	m.Password.SetValue("")

	login := m.login
	m.env.Loop.Post(func() {
		login.Submit(username, password)
	})
	return m
}

func (m Model) View() string {
	var s strings.Builder
	s.WriteString(fmt.Sprintf("Logging into %s\n\n", util.GetNameAndVersion()))
	s.WriteString("username\n" + m.Username.View() + "\n\n")
	s.WriteString("password\n" + m.Password.View() + "\n\n")
	if m.Err != "" {
		s.WriteString(common.ErrorStyle.Render(m.Err) + "\n\n")
	}
	s.WriteString(common.HelpStyle.Render("(tab to switch fields, enter to log in, ctrl-c to quit)"))
	return s.String()
}

// ViewWithWidth centers the bordered form in the terminal.
func (m Model) ViewWithWidth(termWidth, termHeight int) string {
	contentWidth := termWidth - 8
	if contentWidth < 40 {
		contentWidth = 40
	}
	bordered := Style.Width(contentWidth).Render(m.View())
	return lipgloss.Place(termWidth, termHeight, lipgloss.Center, lipgloss.Center, bordered)
}

func (m Model) Unmount() {
	if m.login == nil {
		return
	}
	login := m.login
	m.env.Loop.Post(login.Unmount)
}
