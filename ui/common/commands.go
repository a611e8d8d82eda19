package common

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/deemkeen/postbox/store"
)

type SessionState uint

const (
	HomeView SessionState = iota
	LoginView
	PostView
	EditPostView
	CreatePostView
	ProfileView
)

func (s SessionState) String() string {
	switch s {
	case LoginView:
		return "login"
	case PostView:
		return "post"
	case EditPostView:
		return "edit"
	case CreatePostView:
		return "create"
	case ProfileView:
		return "profile"
	default:
		return "home"
	}
}

// NavigateMsg asks the main model to mount the screen behind Path.
type NavigateMsg struct {
	Path string
}

// StateChangedMsg is sent whenever any mounted store changed. Screens
// re-read their snapshots when they see it.
type StateChangedMsg struct{}

// DismissFlashMsg fires when the oldest flash message has been shown long
// enough.
type DismissFlashMsg struct{}

func Navigate(path string) tea.Cmd {
	return func() tea.Msg {
		return NavigateMsg{Path: path}
	}
}

// Refresh turns any store change into a call to notify.
func Refresh[S any](notify func()) store.Listener[S] {
	return func(_, _ S) {
		if notify != nil {
			notify()
		}
	}
}

type Route struct {
	State SessionState
	Param string
}

// ParseRoute maps a navigation path onto a screen. Unknown paths go home.
func ParseRoute(path string) Route {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	switch {
	case len(parts) == 1 && parts[0] == "create-post":
		return Route{State: CreatePostView}
	case len(parts) == 2 && parts[0] == "post" && parts[1] != "":
		return Route{State: PostView, Param: parts[1]}
	case len(parts) == 3 && parts[0] == "post" && parts[1] != "" && parts[2] == "edit":
		return Route{State: EditPostView, Param: parts[1]}
	case len(parts) == 2 && parts[0] == "profile" && parts[1] != "":
		return Route{State: ProfileView, Param: parts[1]}
	case len(parts) == 1 && parts[0] == "login":
		return Route{State: LoginView}
	}
	return Route{State: HomeView}
}

func PostPath(id string) string {
	return "/post/" + id
}

func EditPath(id string) string {
	return "/post/" + id + "/edit"
}

func ProfilePath(username string) string {
	return "/profile/" + username
}
