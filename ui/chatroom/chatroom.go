// Package chatroom is the chat overlay.
package chatroom

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/deemkeen/postbox/chat"
	"github.com/deemkeen/postbox/ui/common"
	"github.com/deemkeen/postbox/view"
)

// visible is how many of the latest messages the overlay shows.
const visible = 12

var (
	ownStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color(common.COLOR_PURPLE))
	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(common.COLOR_LIGHTBLUE)).
			Padding(0, 1)
)

type Model struct {
	Input textinput.Model

	env         *view.Env
	client      *chat.Client
	unsubscribe func()
}

func InitialModel(env *view.Env, client *chat.Client, notify func()) Model {
	input := textinput.New()
	input.Placeholder = "say something"
	input.CharLimit = 500
	input.Width = 50
	input.Focus()

	return Model{
		Input:       input,
		env:         env,
		client:      client,
		unsubscribe: client.Subscribe(common.Refresh[chat.State](notify)),
	}
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.client == nil {
		return m, nil
	}

	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "esc":
			m.env.Loop.Post(m.client.Hide)
			return m, nil
		case "enter":
			text := m.Input.Value()
			if strings.TrimSpace(text) == "" {
				return m, nil
			}
			m.Input.SetValue("")
			client := m.client
			m.env.Loop.Post(func() {
				client.Send(text)
			})
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.Input, cmd = m.Input.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	s := m.client.GetState()
	me := m.env.Global.GetState().Session.Username

	var b strings.Builder
	status := "offline"
	if s.Connected {
		status = "connected"
	}
	b.WriteString(common.CaptionStyle.Render("chat • " + status))
	b.WriteString("\n")

	msgs := s.Messages
	if len(msgs) > visible {
		msgs = msgs[len(msgs)-visible:]
	}
	if len(msgs) == 0 {
		b.WriteString(common.EmptyStyle.Render("No messages yet."))
		b.WriteString("\n")
	}
	for _, msg := range msgs {
		name := common.AuthorStyle.Render(msg.Username)
		if msg.Username == me {
			name = ownStyle.Render(msg.Username)
		}
		b.WriteString(name + ": " + msg.Message + "\n")
	}
	b.WriteString("\n")
	b.WriteString(m.Input.View())
	b.WriteString("\n")
	b.WriteString(common.HelpStyle.Render("enter: send • esc: close"))
	return panelStyle.Render(b.String())
}

func (m Model) Unmount() {
	if m.client == nil {
		return
	}
	m.unsubscribe()
}
