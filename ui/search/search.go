// Package search is the search overlay opened from any screen.
package search

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/deemkeen/postbox/domain"
	"github.com/deemkeen/postbox/state"
	"github.com/deemkeen/postbox/ui/common"
	"github.com/deemkeen/postbox/ui/postlist"
	"github.com/deemkeen/postbox/view"
)

type Model struct {
	Input   textinput.Model
	Results postlist.Model
	// Browsing moves the keys from the input to the result list.
	Browsing bool

	env         *view.Env
	search      *view.Loader[[]domain.Post]
	unsubscribe func()
}

func InitialModel(env *view.Env, notify func()) Model {
	input := textinput.New()
	input.Placeholder = "What are you interested in?"
	input.CharLimit = 100
	input.Width = 40
	input.Focus()

	search := view.NewSearch(env)
	return Model{
		Input:       input,
		Results:     postlist.NewPager("results", "No results."),
		env:         env,
		search:      search,
		unsubscribe: search.Subscribe(common.Refresh[view.LoaderState[[]domain.Post]](notify)),
	}
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.search == nil {
		return m, nil
	}

	switch msg := msg.(type) {
	case common.StateChangedMsg:
		m.Results = m.Results.SetPosts(m.search.GetState().Data)
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			global := m.env.Global
			m.env.Loop.Post(func() {
				global.Dispatch(state.CloseSearch{})
			})
			return m, nil
		case "tab":
			m.Browsing = !m.Browsing
			if m.Browsing {
				m.Input.Blur()
				return m, nil
			}
			return m, m.Input.Focus()
		case "enter":
			if !m.Browsing {
				term := strings.TrimSpace(m.Input.Value())
				search := m.search
				m.env.Loop.Post(func() {
					search.SetKey(term)
				})
				return m, nil
			}
			// opening a result leaves the overlay
			if p, ok := m.Results.Selected(); ok {
				global := m.env.Global
				m.env.Loop.Post(func() {
					global.Dispatch(state.CloseSearch{})
				})
				return m, common.Navigate(common.PostPath(p.Id))
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	if m.Browsing {
		m.Results, cmd = m.Results.Update(msg)
	} else {
		m.Input, cmd = m.Input.Update(msg)
	}
	return m, cmd
}

func (m Model) Loading() bool {
	if m.search == nil {
		return false
	}
	s := m.search.GetState()
	return s.IsLoading && s.Key != ""
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(common.CaptionStyle.Render("search"))
	b.WriteString("\n")
	b.WriteString(m.Input.View())
	b.WriteString("\n")
	if m.search.GetState().Key != "" {
		b.WriteString(m.Results.View())
		b.WriteString("\n")
	}
	b.WriteString(common.HelpStyle.Render("enter: search • tab: browse results • esc: close"))
	return b.String()
}

func (m Model) Unmount() {
	if m.search == nil {
		return
	}
	m.unsubscribe()
	m.env.Loop.Post(m.search.Unmount)
}
