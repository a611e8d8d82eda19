package common

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

const (
	COLOR_GREY      = "241"
	COLOR_MAGENTA   = "170"
	COLOR_LIGHTBLUE = "69"
	COLOR_PURPLE    = "#7D56F4"
	COLOR_RED       = "196"
	COLOR_GREEN     = "42"
)

var (
	HelpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color(COLOR_GREY)).Padding(0, 2)
	CaptionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(COLOR_MAGENTA)).Padding(1, 0)
	ErrorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color(COLOR_RED))
	EmptyStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color(COLOR_GREY)).Italic(true)
	TimeStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color(COLOR_PURPLE))
	AuthorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color(COLOR_LIGHTBLUE)).Bold(true)
	FlashStyle   = lipgloss.NewStyle().
			Foreground(lipgloss.Color(COLOR_GREEN)).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(COLOR_GREEN)).
			Padding(0, 1)
	SelectedStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(lipgloss.Color(COLOR_MAGENTA)).
			PaddingLeft(1)
	UnselectedStyle = lipgloss.NewStyle().PaddingLeft(2)
)

var noColor bool

// ApplyColorProfile switches lipgloss and the markdown renderer to plain
// output when colours are disabled.
func ApplyColorProfile(disabled bool) {
	noColor = disabled
	if disabled {
		lipgloss.SetColorProfile(termenv.Ascii)
		return
	}
	lipgloss.SetColorProfile(termenv.ColorProfile())
}

func DefaultWindowWidth(width int) int {
	return width - 10
}

func DefaultWindowHeight(heigth int) int {
	return heigth - 10
}

func DefaultListHeight(height int) int {
	return height
}
