package header

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/deemkeen/postbox/state"
	"github.com/deemkeen/postbox/ui/common"
	"github.com/deemkeen/postbox/util"
)

type Model struct {
	Width   int
	Global  state.State
	Loading string
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(tea.Msg) (Model, tea.Cmd) {
	return m, nil
}

func (m Model) View() string {
	return GetHeaderStyle(m.Global, m.Loading, m.Width)
}

// GetHeaderStyle draws the user box, the version box and the chat box
// side by side. Each box adds 4 columns of border and padding.
func GetHeaderStyle(g state.State, loading string, width int) string {
	overhead := 12
	availableWidth := width - overhead
	if availableWidth < 40 {
		availableWidth = 40
	}

	userWidth := availableWidth / 3
	chatWidth := availableWidth / 4
	versionWidth := availableWidth - userWidth - chatWidth

	who := "not logged in"
	if g.Session.LoggedIn {
		who = "@" + g.Session.Username
	}

	user := box(who, userWidth).
		Background(lipgloss.Color(common.COLOR_PURPLE)).
		String()

	version := box(util.GetNameAndVersion()+" "+loading, versionWidth).
		Background(lipgloss.Color(common.COLOR_GREY)).
		String()

	chat := box(chatLabel(g), chatWidth).
		Background(lipgloss.Color(common.COLOR_MAGENTA)).
		String()

	return lipgloss.JoinHorizontal(lipgloss.Left, user, version, chat)
}

func chatLabel(g state.State) string {
	switch {
	case g.IsChatOpen:
		return "chat: open"
	case g.UnreadChatCount > 0:
		return fmt.Sprintf("chat: %d unread", g.UnreadChatCount)
	default:
		return "chat"
	}
}

func box(text string, width int) lipgloss.Style {
	return lipgloss.
		NewStyle().
		SetString(text).
		Align(lipgloss.Left).
		Padding(1).
		Height(2).
		Width(width).
		Border(lipgloss.NormalBorder(), true, false, true, false).
		BorderForeground(lipgloss.Color(common.COLOR_MAGENTA))
}
