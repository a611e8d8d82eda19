// Package timeline is the logged-in home screen: posts from followed users.
package timeline

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/deemkeen/postbox/domain"
	"github.com/deemkeen/postbox/ui/common"
	"github.com/deemkeen/postbox/ui/postlist"
	"github.com/deemkeen/postbox/view"
)

type Model struct {
	List postlist.Model

	env         *view.Env
	feed        *view.Loader[[]domain.Post]
	unsubscribe func()
}

// InitialModel binds the feed to username and starts the first fetch.
func InitialModel(env *view.Env, username string, notify func()) Model {
	feed := view.NewHomeFeed(env)
	m := Model{
		List:        postlist.NewPager("your feed", "Your feed is empty. Follow someone to see their posts here."),
		env:         env,
		feed:        feed,
		unsubscribe: feed.Subscribe(common.Refresh[view.LoaderState[[]domain.Post]](notify)),
	}
	env.Loop.Post(func() {
		feed.SetKey(username)
	})
	return m
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.feed == nil {
		return m, nil
	}

	switch msg := msg.(type) {
	case common.StateChangedMsg:
		m.List = m.List.SetPosts(m.feed.GetState().Data)
		return m, nil
	case tea.KeyMsg:
		if msg.String() == "r" {
			feed := m.feed
			m.env.Loop.Post(func() {
				feed.Reload()
			})
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.List, cmd = m.List.Update(msg)
	return m, cmd
}

func (m Model) Loading() bool {
	return m.feed != nil && m.feed.GetState().IsLoading
}

func (m Model) View() string {
	var s strings.Builder
	if m.Loading() {
		s.WriteString(common.EmptyStyle.Render("loading your feed..."))
		s.WriteString("\n")
	}
	s.WriteString(m.List.View())
	s.WriteString("\n")
	s.WriteString(common.HelpStyle.Render("j/k: move • enter: open • r: reload"))
	return s.String()
}

func (m Model) Unmount() {
	if m.feed == nil {
		return
	}
	m.unsubscribe()
	m.env.Loop.Post(m.feed.Unmount)
}
