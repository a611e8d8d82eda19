// Package postview shows one post with its owner controls.
package postview

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/deemkeen/postbox/domain"
	"github.com/deemkeen/postbox/ui/common"
	"github.com/deemkeen/postbox/util"
	"github.com/deemkeen/postbox/view"
)

var titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(common.COLOR_MAGENTA))

type Model struct {
	Viewport   viewport.Model
	Confirming bool

	env         *view.Env
	post        *view.PostView
	id          string
	rendered    string
	width       int
	unsubscribe func()
}

func InitialModel(env *view.Env, id string, notify func(), width int, height int) Model {
	post := view.NewPostView(env)
	vp := viewport.New(width, max(height-6, 5))
	m := Model{
		Viewport:    vp,
		env:         env,
		post:        post,
		id:          id,
		width:       width,
		unsubscribe: post.Subscribe(common.Refresh[view.LoaderState[*domain.Post]](notify)),
	}
	env.Loop.Post(func() {
		post.SetKey(id)
	})
	return m
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.post == nil {
		return m, nil
	}

	switch msg := msg.(type) {
	case common.StateChangedMsg:
		m.refreshBody()
		return m, nil
	case tea.WindowSizeMsg:
		m.width = common.DefaultWindowWidth(msg.Width)
		m.Viewport.Width = m.width
		m.Viewport.Height = max(common.DefaultWindowHeight(msg.Height)-6, 5)
		m.rendered = ""
		m.refreshBody()
		return m, nil
	case tea.KeyMsg:
		if m.Confirming {
			return m.confirm(msg.String()), nil
		}
		s := m.post.GetState()
		switch msg.String() {
		case "e":
			if m.post.IsOwner() {
				return m, common.Navigate(common.EditPath(m.id))
			}
		case "d":
			if m.post.IsOwner() {
				m.Confirming = true
			}
			return m, nil
		case "a":
			if !s.Data.IsEmpty() {
				return m, common.Navigate(common.ProfilePath(s.Data.Author.Username))
			}
		}
	}

	var cmd tea.Cmd
	m.Viewport, cmd = m.Viewport.Update(msg)
	return m, cmd
}

// confirm answers the delete prompt. The question was already asked on
// screen, so the view's confirm hook only replays the answer.
func (m Model) confirm(key string) Model {
	m.Confirming = false
	if key != "y" && key != "Y" {
		return m
	}
	post := m.post
	m.env.Loop.Post(func() {
		post.Delete(func() bool { return true })
	})
	return m
}

func (m *Model) refreshBody() {
	s := m.post.GetState()
	if s.IsLoading || s.NotFound || s.Data.IsEmpty() {
		return
	}
	body := common.RenderMarkdown(s.Data.Body, m.width)
	if body != m.rendered {
		m.rendered = body
		m.Viewport.SetContent(body)
	}
}

func (m Model) Loading() bool {
	return m.post != nil && m.post.GetState().IsLoading
}

func (m Model) View() string {
	s := m.post.GetState()
	switch {
	case s.NotFound:
		return common.CaptionStyle.Render("404") + "\n" +
			common.EmptyStyle.Render("Whoops, we cannot find that post.")
	case s.IsLoading:
		return common.EmptyStyle.Render("loading post...")
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(s.Data.Title))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("%s %s",
		common.AuthorStyle.Render("@"+s.Data.Author.Username),
		common.TimeStyle.Render("on "+util.PostDateFormat(s.Data.CreatedDate))))
	b.WriteString("\n\n")
	b.WriteString(m.Viewport.View())
	b.WriteString("\n")

	if m.Confirming {
		b.WriteString(common.ErrorStyle.Render("Do you really want to delete this post? (y/n)"))
		return b.String()
	}
	help := "a: author • ↑/↓: scroll"
	if m.post.IsOwner() {
		help = "e: edit • d: delete • " + help
	}
	b.WriteString(common.HelpStyle.Render(help))
	return b.String()
}

func (m Model) Unmount() {
	if m.post == nil {
		return
	}
	m.unsubscribe()
	m.env.Loop.Post(m.post.Unmount)
}
