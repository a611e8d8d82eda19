// Package postlist renders a selectable list of posts. It holds no data of
// its own; callers hand it the current snapshot on every frame.
package postlist

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/deemkeen/postbox/domain"
	"github.com/deemkeen/postbox/ui/common"
	"github.com/deemkeen/postbox/util"
)

const itemsPerPage = 10

type Model struct {
	Posts  []domain.Post
	Offset int
	Title  string
	Empty  string
	now    func() time.Time
}

func NewPager(title string, empty string) Model {
	return Model{Title: title, Empty: empty, now: time.Now}
}

// SetPosts swaps the list contents. The selection is kept when it still
// points inside the list.
func (m Model) SetPosts(posts []domain.Post) Model {
	m.Posts = posts
	if m.Offset >= len(posts) {
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
		if len(m.Posts) > 0 && m.Offset < len(m.Posts)-1 {
			m.Offset++
		}
	case "enter":
		if p, ok := m.Selected(); ok {
			return m, common.Navigate(common.PostPath(p.Id))
		}
	}
	return m, nil
}

func (m Model) Selected() (domain.Post, bool) {
	if m.Offset < 0 || m.Offset >= len(m.Posts) {
		return domain.Post{}, false
	}
	return m.Posts[m.Offset], true
}

func (m Model) View() string {
	var s strings.Builder

	s.WriteString(common.CaptionStyle.Render(fmt.Sprintf("%s (%d)", m.Title, len(m.Posts))))
	s.WriteString("\n")

	if len(m.Posts) == 0 {
		s.WriteString(common.EmptyStyle.Render(m.Empty))
		return s.String()
	}

	start := m.Offset - m.Offset%itemsPerPage
	end := start + itemsPerPage
	if end > len(m.Posts) {
		end = len(m.Posts)
	}

	now := time.Now
	if m.now != nil {
		now = m.now
	}
	for i := start; i < end; i++ {
		post := m.Posts[i]
		item := lipgloss.JoinVertical(lipgloss.Left,
			common.TimeStyle.Render(formatTime(now().Sub(post.CreatedDate))),
			common.AuthorStyle.Render("@"+post.Author.Username)+" "+util.Truncate(post.Title, 60),
			util.Truncate(firstLine(post.Body), 100),
		)
		if i == m.Offset {
			s.WriteString(common.SelectedStyle.Render(item))
		} else {
			s.WriteString(common.UnselectedStyle.Render(item))
		}
		s.WriteString("\n\n")
	}
	return s.String()
}

func formatTime(d time.Duration) string {
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
