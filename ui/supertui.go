package ui

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/deemkeen/postbox/chat"
	"github.com/deemkeen/postbox/state"
	"github.com/deemkeen/postbox/ui/chatroom"
	"github.com/deemkeen/postbox/ui/common"
	"github.com/deemkeen/postbox/ui/header"
	"github.com/deemkeen/postbox/ui/login"
	"github.com/deemkeen/postbox/ui/postview"
	"github.com/deemkeen/postbox/ui/profile"
	"github.com/deemkeen/postbox/ui/search"
	"github.com/deemkeen/postbox/ui/timeline"
	"github.com/deemkeen/postbox/ui/writepost"
	"github.com/deemkeen/postbox/util"
	"github.com/deemkeen/postbox/view"
	"github.com/sirupsen/logrus"
)

// FlashDuration is how long each flash message stays on screen.
const FlashDuration = 4 * time.Second

var (
	modelStyle = lipgloss.NewStyle().
			Align(lipgloss.Top, lipgloss.Top).
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color(common.COLOR_LIGHTBLUE)).
			MarginLeft(1)
	helpLine = "ctrl+r: home • ctrl+n: new post • ctrl+p: my profile • ctrl+f: search • ctrl+t: chat • esc: back • ctrl+l: log out • ctrl+c: quit"
)

type MainModel struct {
	width        int
	height       int
	env          *view.Env
	chat         *chat.Client
	notify       func()
	state        common.SessionState
	path         string
	history      []string
	loggedIn     bool
	searchOpen   bool
	chatOpen     bool
	flashPending bool
	log          *logrus.Entry

	spinner       spinner.Model
	headerModel   header.Model
	loginModel    login.Model
	timelineModel timeline.Model
	postModel     postview.Model
	writeModel    writepost.Model
	profileModel  profile.Model
	searchModel   search.Model
	chatModel     chatroom.Model
}

// NewModel builds the root model. notify is called from the loop whenever
// a mounted store changes; chatClient may be nil.
func NewModel(env *view.Env, chatClient *chat.Client, notify func(), width int, height int) MainModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	g := env.Global.GetState()
	return MainModel{
		width:       width,
		height:      height,
		env:         env,
		chat:        chatClient,
		notify:      notify,
		loggedIn:    g.Session.LoggedIn,
		log:         util.NewLogger("ui"),
		spinner:     sp,
		headerModel: header.Model{Width: width, Global: g},
	}
}

func (m MainModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, common.Navigate("/"))
}

func (m MainModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.headerModel.Width = msg.Width
		m.postModel, cmd = m.postModel.Update(msg)
		return m, cmd

	case spinner.TickMsg:
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case common.NavigateMsg:
		if m.path != "" && m.path != msg.Path {
			m.history = append(m.history, m.path)
		}
		m, cmd = m.mount(msg.Path)
		return m, cmd

	case common.DismissFlashMsg:
		m.flashPending = false
		global := m.env.Global
		m.env.Loop.Post(func() {
			global.Dispatch(state.DismissFlashMessage{})
		})
		return m, nil

	case common.StateChangedMsg:
		m, cmd = m.syncGlobal()
		cmds = append(cmds, cmd)

	case tea.KeyMsg:
		if handled, next, cmd := m.globalKey(msg); handled {
			return next, cmd
		}
		return m.routeKey(msg)
	}

	// non-key messages reach every mounted model
	m.headerModel, _ = m.headerModel.Update(msg)
	m.loginModel, cmd = m.loginModel.Update(msg)
	cmds = append(cmds, cmd)
	m.timelineModel, cmd = m.timelineModel.Update(msg)
	cmds = append(cmds, cmd)
	m.postModel, cmd = m.postModel.Update(msg)
	cmds = append(cmds, cmd)
	m.writeModel, cmd = m.writeModel.Update(msg)
	cmds = append(cmds, cmd)
	m.profileModel, cmd = m.profileModel.Update(msg)
	cmds = append(cmds, cmd)
	m.searchModel, cmd = m.searchModel.Update(msg)
	cmds = append(cmds, cmd)
	m.chatModel, cmd = m.chatModel.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// syncGlobal follows the global snapshot: session changes remount the
// current path, the overlay flags mount their overlays and the flash queue
// gets its dismiss timer.
func (m MainModel) syncGlobal() (MainModel, tea.Cmd) {
	var cmds []tea.Cmd
	g := m.env.Global.GetState()
	m.headerModel.Global = g

	if g.Session.LoggedIn != m.loggedIn {
		m.loggedIn = g.Session.LoggedIn
		var cmd tea.Cmd
		m, cmd = m.mount(m.path)
		cmds = append(cmds, cmd)
	}

	if g.IsSearchOpen != m.searchOpen {
		m.searchOpen = g.IsSearchOpen
		if m.searchOpen {
			m.searchModel = search.InitialModel(m.env, m.notify)
			cmds = append(cmds, m.searchModel.Init())
		} else {
			m.searchModel.Unmount()
			m.searchModel = search.Model{}
		}
	}

	if m.chat != nil && g.IsChatOpen != m.chatOpen {
		m.chatOpen = g.IsChatOpen
		if m.chatOpen {
			m.chatModel = chatroom.InitialModel(m.env, m.chat, m.notify)
			cmds = append(cmds, m.chatModel.Init())
		} else {
			m.chatModel.Unmount()
			m.chatModel = chatroom.Model{}
		}
	}

	if len(g.FlashMessages) > 0 && !m.flashPending {
		m.flashPending = true
		cmds = append(cmds, tea.Tick(FlashDuration, func(time.Time) tea.Msg {
			return common.DismissFlashMsg{}
		}))
	}
	return m, tea.Batch(cmds...)
}

func (m MainModel) globalKey(msg tea.KeyMsg) (bool, MainModel, tea.Cmd) {
	global := m.env.Global
	switch msg.String() {
	case "ctrl+c":
		m.unmount()
		return true, m, tea.Quit
	case "ctrl+r":
		return true, m, common.Navigate("/")
	case "ctrl+n":
		return true, m, common.Navigate("/create-post")
	case "ctrl+p":
		if m.loggedIn {
			return true, m, common.Navigate(common.ProfilePath(global.GetState().Session.Username))
		}
	case "ctrl+f":
		if !m.searchOpen {
			m.env.Loop.Post(func() {
				global.Dispatch(state.OpenSearch{})
			})
		}
		return true, m, nil
	case "ctrl+t":
		if m.chat != nil && m.loggedIn {
			m.env.Loop.Post(m.chat.Toggle)
		}
		return true, m, nil
	case "ctrl+l":
		if m.loggedIn {
			env := m.env
			m.env.Loop.Post(func() {
				view.Logout(env)
			})
		}
		return true, m, nil
	case "esc":
		if m.searchOpen || m.chatOpen || m.postModel.Confirming {
			return false, m, nil
		}
		if n := len(m.history); n > 0 {
			path := m.history[n-1]
			m.history = m.history[:n-1]
			next, cmd := m.mount(path)
			return true, next, cmd
		}
		return true, m, nil
	}
	return false, m, nil
}

// routeKey sends keys to the topmost thing on screen: chat, then search,
// then the active screen.
func (m MainModel) routeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch {
	case m.chatOpen:
		m.chatModel, cmd = m.chatModel.Update(msg)
	case m.searchOpen:
		m.searchModel, cmd = m.searchModel.Update(msg)
	default:
		switch m.state {
		case common.LoginView:
			m.loginModel, cmd = m.loginModel.Update(msg)
		case common.HomeView:
			m.timelineModel, cmd = m.timelineModel.Update(msg)
		case common.PostView:
			m.postModel, cmd = m.postModel.Update(msg)
		case common.EditPostView, common.CreatePostView:
			m.writeModel, cmd = m.writeModel.Update(msg)
		case common.ProfileView:
			m.profileModel, cmd = m.profileModel.Update(msg)
		}
	}
	return m, cmd
}

// mount swaps the active screen for the one behind path. Screens that need
// a session fall back to the login form.
func (m MainModel) mount(path string) (MainModel, tea.Cmd) {
	m.unmount()

	route := common.ParseRoute(path)
	session := m.env.Global.GetState().Session
	switch {
	case !session.LoggedIn && route.State != common.PostView && route.State != common.ProfileView:
		route = common.Route{State: common.LoginView}
	case session.LoggedIn && route.State == common.LoginView:
		route = common.Route{State: common.HomeView}
		path = "/"
	}
	m.path = path
	m.state = route.State
	m.log.Debugf("mounting %s for %s", m.state, path)

	width := common.DefaultWindowWidth(m.width)
	height := common.DefaultWindowHeight(m.height)
	switch route.State {
	case common.LoginView:
		m.loginModel = login.InitialModel(m.env)
		return m, m.loginModel.Init()
	case common.HomeView:
		m.timelineModel = timeline.InitialModel(m.env, session.Username, m.notify)
	case common.PostView:
		m.postModel = postview.InitialModel(m.env, route.Param, m.notify, width, height)
	case common.EditPostView:
		m.writeModel = writepost.NewEdit(m.env, route.Param, m.notify, width)
		return m, m.writeModel.Init()
	case common.CreatePostView:
		m.writeModel = writepost.NewCreate(m.env, m.notify, width)
		return m, m.writeModel.Init()
	case common.ProfileView:
		m.profileModel = profile.InitialModel(m.env, route.Param, m.notify)
	}
	return m, nil
}

// unmount releases the active screen. Overlays stay.
func (m *MainModel) unmount() {
	m.loginModel.Unmount()
	m.loginModel = login.Model{}
	m.timelineModel.Unmount()
	m.timelineModel = timeline.Model{}
	m.postModel.Unmount()
	m.postModel = postview.Model{}
	m.writeModel.Unmount()
	m.writeModel = writepost.Model{}
	m.profileModel.Unmount()
	m.profileModel = profile.Model{}
}

func (m MainModel) loading() bool {
	if m.searchOpen && m.searchModel.Loading() {
		return true
	}
	switch m.state {
	case common.HomeView:
		return m.timelineModel.Loading()
	case common.PostView:
		return m.postModel.Loading()
	case common.EditPostView, common.CreatePostView:
		return m.writeModel.Loading()
	case common.ProfileView:
		return m.profileModel.Loading()
	}
	return false
}

func (m MainModel) currentView() string {
	switch m.state {
	case common.LoginView:
		return m.loginModel.View()
	case common.HomeView:
		return m.timelineModel.View()
	case common.PostView:
		return m.postModel.View()
	case common.EditPostView, common.CreatePostView:
		return m.writeModel.View()
	case common.ProfileView:
		return m.profileModel.View()
	}
	return ""
}

func (m MainModel) View() string {
	if m.state == common.LoginView && !m.searchOpen {
		return m.flashView() + m.loginModel.ViewWithWidth(m.width, m.height-2)
	}

	hm := m.headerModel
	if m.loading() {
		hm.Loading = m.spinner.View()
	}

	width := common.DefaultWindowWidth(m.width)
	body := m.currentView()
	switch {
	case m.chatOpen:
		body = m.chatModel.View()
	case m.searchOpen:
		body = m.searchModel.View()
	}

	screen := lipgloss.NewStyle().
		Width(max(width, 20)).
		MaxHeight(max(common.DefaultWindowHeight(m.height), 5)).
		Render(body)

	return hm.View() + "\n" +
		m.flashView() +
		modelStyle.Render(screen) + "\n" +
		common.HelpStyle.Render(helpLine)
}

func (m MainModel) flashView() string {
	msgs := m.headerModel.Global.FlashMessages
	if len(msgs) == 0 {
		return ""
	}
	return common.FlashStyle.Render(msgs[0]) + "\n"
}
