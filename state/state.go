// Package state is the global application store: the session plus UI-level
// flags shared by every view.
package state

import (
	"github.com/deemkeen/postbox/domain"
	"github.com/deemkeen/postbox/store"
)

type State struct {
	Session         domain.Session
	FlashMessages   []string
	IsSearchOpen    bool
	IsChatOpen      bool
	UnreadChatCount uint
}

// Global is the single authoritative store. Its only mutation path is
// Dispatch.
type Global = store.Store[State, Action]

func NewGlobal(initial State) *Global {
	return store.New[State, Action](initial, Reduce)
}

// InitialState builds the start snapshot from persisted storage. A stored
// token counts as logged in until the session check proves otherwise.
func InitialState(stored *domain.Session) State {
	s := State{}
	if stored != nil {
		s.Session = *stored
		s.Session.LoggedIn = stored.HasToken()
	}
	return s
}

// Reduce is the pure transition function of the global store. Unknown
// actions return prev unchanged.
func Reduce(prev State, action Action) State {
	next := prev
	switch a := action.(type) {
	case Login:
		next.Session = domain.Session{
			LoggedIn: true,
			Token:    a.Data.Token,
			Username: a.Data.Username,
			Avatar:   a.Data.Avatar,
		}
	case Logout:
		next.Session.LoggedIn = false
	case FlashMessage:
		next.FlashMessages = appendCopy(prev.FlashMessages, a.Value)
	case DismissFlashMessage:
		if len(prev.FlashMessages) > 0 {
			next.FlashMessages = append([]string(nil), prev.FlashMessages[1:]...)
		}
	case OpenSearch:
		next.IsSearchOpen = true
	case CloseSearch:
		next.IsSearchOpen = false
	case ToggleChat:
		next.IsChatOpen = !prev.IsChatOpen
	case CloseChat:
		next.IsChatOpen = false
	case IncrementUnreadChatCount:
		// only counts while nobody is looking at the chat
		if !prev.IsChatOpen {
			next.UnreadChatCount = prev.UnreadChatCount + 1
		}
	case ClearUnreadChatCount:
		next.UnreadChatCount = 0
	}
	return next
}

func appendCopy(s []string, v string) []string {
	out := make([]string, len(s), len(s)+1)
	copy(out, s)
	return append(out, v)
}
