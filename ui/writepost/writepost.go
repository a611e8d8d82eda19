// Package writepost is the post editor screen, used both for new posts and
// for editing an existing one.
package writepost

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/deemkeen/postbox/request"
	"github.com/deemkeen/postbox/ui/common"
	"github.com/deemkeen/postbox/view"
)

const MaxLetters = 5000

var fieldStyle = lipgloss.NewStyle().PaddingLeft(2)

type form interface {
	Change(field string, value string)
	Check(field string)
	Submit() *request.Handle
	Unmount()
}

type snapshot struct {
	Form     view.FormState
	Fetching bool
	NotFound bool
}

type Model struct {
	Title    textinput.Model
	Body     textarea.Model
	Focus    string
	filled   bool
	caption  string
	env      *view.Env
	form     form
	snapshot func() snapshot

	unsubscribe func()
}

func inputs(width int) (textinput.Model, textarea.Model) {
	title := textinput.New()
	title.Placeholder = "title"
	title.CharLimit = 200
	title.Width = max(width-6, 20)
	title.Focus()

	body := textarea.New()
	body.Placeholder = "body content (markdown)"
	body.CharLimit = MaxLetters
	body.ShowLineNumbers = false
	body.SetWidth(max(width-6, 20))
	body.SetHeight(12)
	return title, body
}

// NewCreate builds the empty new-post form.
func NewCreate(env *view.Env, notify func(), width int) Model {
	v := view.NewCreatePost(env)
	title, body := inputs(width)
	return Model{
		Title:       title,
		Body:        body,
		Focus:       view.FieldTitle,
		filled:      true,
		caption:     "new post",
		env:         env,
		form:        v,
		snapshot:    func() snapshot { return snapshot{Form: v.GetState()} },
		unsubscribe: v.Subscribe(common.Refresh[view.FormState](notify)),
	}
}

// NewEdit builds the editor for post id and starts fetching it.
func NewEdit(env *view.Env, id string, notify func(), width int) Model {
	v := view.NewEditPost(env, id)
	title, body := inputs(width)
	m := Model{
		Title:   title,
		Body:    body,
		Focus:   view.FieldTitle,
		caption: "edit post",
		env:     env,
		form:    v,
		snapshot: func() snapshot {
			s := v.GetState()
			return snapshot{Form: s.FormState, Fetching: s.IsFetching, NotFound: s.NotFound}
		},
		unsubscribe: v.Subscribe(common.Refresh[view.EditState](notify)),
	}
	env.Loop.Post(func() {
		v.Load()
	})
	return m
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}

	switch msg := msg.(type) {
	case common.StateChangedMsg:
		s := m.snapshot()
		if !m.filled && !s.Fetching && !s.NotFound {
			m.Title.SetValue(s.Form.Value(view.FieldTitle))
			m.Body.SetValue(s.Form.Value(view.FieldBody))
			m.filled = true
		}
		return m, nil
	case tea.KeyMsg:
		s := m.snapshot()
		if s.Fetching || s.NotFound {
			return m, nil
		}
		switch msg.Type {
		case tea.KeyTab, tea.KeyShiftTab:
			return m.switchField(), nil
		case tea.KeyCtrlS:
			form := m.form
			m.env.Loop.Post(func() {
				form.Submit()
			})
			return m, nil
		}
	}

	var cmd tea.Cmd
	switch m.Focus {
	case view.FieldTitle:
		before := m.Title.Value()
		m.Title, cmd = m.Title.Update(msg)
		m.changed(view.FieldTitle, before, m.Title.Value())
	case view.FieldBody:
		before := m.Body.Value()
		m.Body, cmd = m.Body.Update(msg)
		m.changed(view.FieldBody, before, m.Body.Value())
	}
	return m, cmd
}

func (m Model) changed(field string, before string, after string) {
	if before == after {
		return
	}
	form := m.form
	m.env.Loop.Post(func() {
		form.Change(field, after)
	})
}

// switchField validates the field being left, like a blur.
func (m Model) switchField() Model {
	left := m.Focus
	form := m.form
	m.env.Loop.Post(func() {
		form.Check(left)
	})

	if m.Focus == view.FieldTitle {
		m.Focus = view.FieldBody
		m.Title.Blur()
		m.Body.Focus()
	} else {
		m.Focus = view.FieldTitle
		m.Body.Blur()
		m.Title.Focus()
	}
	return m
}

func (m Model) Loading() bool {
	if m.form == nil {
		return false
	}
	s := m.snapshot()
	return s.Fetching || s.Form.IsSaving
}

func (m Model) View() string {
	s := m.snapshot()
	if s.NotFound {
		return common.CaptionStyle.Render("404") + "\n" +
			common.EmptyStyle.Render("Whoops, we cannot find that post.")
	}
	if s.Fetching {
		return common.EmptyStyle.Render("loading post...")
	}

	var b strings.Builder
	b.WriteString(common.CaptionStyle.Render(m.caption))
	b.WriteString("\n")
	b.WriteString(fieldStyle.Render(m.Title.View()))
	b.WriteString("\n")
	b.WriteString(fieldError(s.Form, view.FieldTitle))
	b.WriteString(fieldStyle.Render(m.Body.View()))
	b.WriteString("\n")
	b.WriteString(fieldError(s.Form, view.FieldBody))

	status := fmt.Sprintf("characters left: %d", m.Body.CharLimit-m.Body.Length())
	if s.Form.IsSaving {
		status = "saving..."
	}
	b.WriteString(common.HelpStyle.Render(status + " • tab: switch field • ctrl+s: save"))
	return b.String()
}

func fieldError(f view.FormState, field string) string {
	fs := f.Fields[field]
	if !fs.IsInvalid {
		return ""
	}
	return fieldStyle.Render(common.ErrorStyle.Render(fs.Message)) + "\n"
}

func (m Model) Unmount() {
	if m.form == nil {
		return
	}
	m.unsubscribe()
	m.env.Loop.Post(m.form.Unmount)
}
