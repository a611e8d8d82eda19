package ui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/deemkeen/postbox/app"
	"github.com/deemkeen/postbox/state"
	"github.com/deemkeen/postbox/ui/common"
)

// Run drives the terminal client until the user quits. The app must have
// been built with bridge as its Navigator.
func Run(a *app.App, bridge *Bridge) error {
	common.ApplyColorProfile(a.Conf.Conf.NoColor)

	m := NewModel(a.Env, a.Chat, bridge.Changed, 80, 24)
	p := tea.NewProgram(m, tea.WithAltScreen())
	bridge.Attach(p)

	unsubscribe := a.Global.Subscribe(common.Refresh[state.State](bridge.Changed))
	defer unsubscribe()

	// Start blocks on the loop; the program must already be reading.
	go a.Start()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running terminal client: %w", err)
	}
	return nil
}
