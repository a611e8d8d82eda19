// Package profile is the profile screen: summary header plus the posts,
// followers and following tabs.
package profile

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/deemkeen/postbox/domain"
	"github.com/deemkeen/postbox/ui/common"
	"github.com/deemkeen/postbox/ui/followers"
	"github.com/deemkeen/postbox/ui/postlist"
	"github.com/deemkeen/postbox/view"
)

var (
	tabStyle       = lipgloss.NewStyle().Padding(0, 2).Foreground(lipgloss.Color(common.COLOR_GREY))
	activeTabStyle = lipgloss.NewStyle().Padding(0, 2).Bold(true).
			Foreground(lipgloss.Color(common.COLOR_MAGENTA)).
			Underline(true)
)

type Model struct {
	Posts     postlist.Model
	Followers followers.Model
	Following followers.Model

	env          *view.Env
	page         *view.ProfilePage
	selected     view.Tab
	unsubscribes []func()
}

func InitialModel(env *view.Env, username string, notify func()) Model {
	page := view.NewProfilePage(env)
	m := Model{
		Posts:     postlist.NewPager("posts", "This user has not posted anything yet."),
		Followers: followers.InitialModel("followers", "Nobody follows this user yet."),
		Following: followers.InitialModel("following", "This user does not follow anyone yet."),
		env:       env,
		page:      page,
		unsubscribes: []func(){
			page.Summary.Subscribe(common.Refresh[view.LoaderState[domain.ProfileSummary]](notify)),
			page.Posts.Subscribe(common.Refresh[view.LoaderState[[]domain.Post]](notify)),
			page.Followers.Subscribe(common.Refresh[view.LoaderState[[]domain.User]](notify)),
			page.Following.Subscribe(common.Refresh[view.LoaderState[[]domain.User]](notify)),
		},
	}
	env.Loop.Post(func() {
		page.SetUsername(username)
	})
	return m
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.page == nil {
		return m, nil
	}

	switch msg := msg.(type) {
	case common.StateChangedMsg:
		m.Posts = m.Posts.SetPosts(m.page.Posts.GetState().Data)
		m.Followers = m.Followers.SetUsers(m.page.Followers.GetState().Data)
		m.Following = m.Following.SetUsers(m.page.Following.GetState().Data)
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "1":
			return m.selectTab(view.TabPosts), nil
		case "2":
			return m.selectTab(view.TabFollowers), nil
		case "3":
			return m.selectTab(view.TabFollowing), nil
		case "right", "l":
			return m.selectTab((m.tab() + 1) % 3), nil
		case "left", "h":
			return m.selectTab((m.tab() + 2) % 3), nil
		}
	}

	var cmd tea.Cmd
	switch m.tab() {
	case view.TabFollowers:
		m.Followers, cmd = m.Followers.Update(msg)
	case view.TabFollowing:
		m.Following, cmd = m.Following.Update(msg)
	default:
		m.Posts, cmd = m.Posts.Update(msg)
	}
	return m, cmd
}

// tab is the model's own copy of the selection; ProfilePage.Tab belongs to
// the loop.
func (m Model) tab() view.Tab {
	return m.selected
}

func (m Model) selectTab(tab view.Tab) Model {
	m.selected = tab
	page := m.page
	m.env.Loop.Post(func() {
		page.SelectTab(tab)
	})
	return m
}

func (m Model) Loading() bool {
	if m.page == nil {
		return false
	}
	if m.page.Summary.GetState().IsLoading {
		return true
	}
	switch m.tab() {
	case view.TabFollowers:
		return m.page.Followers.GetState().IsLoading
	case view.TabFollowing:
		return m.page.Following.GetState().IsLoading
	default:
		return m.page.Posts.GetState().IsLoading
	}
}

func (m Model) View() string {
	summary := m.page.Summary.GetState()
	if summary.NotFound {
		return common.CaptionStyle.Render("404") + "\n" +
			common.EmptyStyle.Render("That user does not exist.")
	}

	var b strings.Builder
	p := summary.Data
	b.WriteString(common.AuthorStyle.Render("@" + p.ProfileUsername))
	if p.IsFollowing {
		b.WriteString(" " + common.HelpStyle.Render("(following)"))
	}
	b.WriteString("\n")

	labels := []string{
		fmt.Sprintf("1 posts: %d", p.Counts.PostCount),
		fmt.Sprintf("2 followers: %d", p.Counts.FollowerCount),
		fmt.Sprintf("3 following: %d", p.Counts.FollowingCount),
	}
	tabs := make([]string, len(labels))
	for i, label := range labels {
		if view.Tab(i) == m.tab() {
			tabs[i] = activeTabStyle.Render(label)
		} else {
			tabs[i] = tabStyle.Render(label)
		}
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, tabs...))
	b.WriteString("\n")

	switch m.tab() {
	case view.TabFollowers:
		b.WriteString(m.Followers.View())
	case view.TabFollowing:
		b.WriteString(m.Following.View())
	default:
		b.WriteString(m.Posts.View())
	}
	b.WriteString("\n")
	b.WriteString(common.HelpStyle.Render("1-3 or ←/→: tabs • j/k: move • enter: open"))
	return b.String()
}

func (m Model) Unmount() {
	if m.page == nil {
		return
	}
	for _, unsubscribe := range m.unsubscribes {
		unsubscribe()
	}
	m.env.Loop.Post(m.page.Unmount)
}
