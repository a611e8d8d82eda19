// Package followers renders the follower and following tabs of a profile.
// Both tabs list plain users, so one model serves either.
package followers

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/deemkeen/postbox/domain"
	"github.com/deemkeen/postbox/ui/common"
)

var itemStyle = lipgloss.NewStyle().PaddingLeft(2)

type Model struct {
	Title  string
	Empty  string
	Users  []domain.User
	Offset int
}

func InitialModel(title string, empty string) Model {
	return Model{Title: title, Empty: empty}
}

func (m Model) SetUsers(users []domain.User) Model {
	m.Users = users
	if m.Offset >= len(users) {
		m.Offset = 0
	}
	return m
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "up", "k":
		if m.Offset > 0 {
			m.Offset--
		}
	case "down", "j":
		if len(m.Users) > 0 && m.Offset < len(m.Users)-1 {
			m.Offset++
		}
	case "enter":
		if m.Offset < len(m.Users) {
			return m, common.Navigate(common.ProfilePath(m.Users[m.Offset].Username))
		}
	}
	return m, nil
}

func (m Model) View() string {
	var s strings.Builder

	s.WriteString(common.CaptionStyle.Render(fmt.Sprintf("%s (%d)", m.Title, len(m.Users))))
	s.WriteString("\n")

	if len(m.Users) == 0 {
		s.WriteString(common.EmptyStyle.Render(m.Empty))
		return s.String()
	}

	for i, u := range m.Users {
		line := "• @" + u.Username
		if i == m.Offset {
			s.WriteString(common.SelectedStyle.Render(line))
		} else {
			s.WriteString(itemStyle.Render(line))
		}
		s.WriteString("\n")
	}
	return s.String()
}
