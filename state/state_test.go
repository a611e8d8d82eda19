package state

import (
	"math/rand"
	"testing"

	"github.com/deemkeen/postbox/domain"
)

type unknownAction struct{}

func (unknownAction) isGlobalAction() {}

func TestLoginReplacesSession(t *testing.T) {
	g := NewGlobal(State{})

	g.Dispatch(Login{Data: domain.User{Token: "tok", Username: "al", Avatar: "a.png"}})

	s := g.GetState().Session
	if !s.LoggedIn {
		t.Error("Expected LoggedIn after login")
	}
	if s.Token != "tok" || s.Username != "al" || s.Avatar != "a.png" {
		t.Errorf("Unexpected session %+v", s)
	}
}

func TestLogoutKeepsIdentityInMemory(t *testing.T) {
	g := NewGlobal(State{})
	g.Dispatch(Login{Data: domain.User{Token: "tok", Username: "al"}})
	g.Dispatch(Logout{})

	s := g.GetState().Session
	if s.LoggedIn {
		t.Error("Expected LoggedIn false after logout")
	}
	if s.Token != "tok" || s.Username != "al" {
		t.Errorf("Expected token and username to be retained, got %+v", s)
	}
}

func TestFlashMessagesAppendInOrder(t *testing.T) {
	g := NewGlobal(State{})
	before := g.GetState()

	g.Dispatch(FlashMessage{Value: "one"})
	g.Dispatch(FlashMessage{Value: "two"})

	msgs := g.GetState().FlashMessages
	if len(msgs) != 2 || msgs[0] != "one" || msgs[1] != "two" {
		t.Errorf("Unexpected flash messages %v", msgs)
	}
	if len(before.FlashMessages) != 0 {
		t.Error("Old snapshot must not be mutated")
	}

	g.Dispatch(DismissFlashMessage{})
	msgs = g.GetState().FlashMessages
	if len(msgs) != 1 || msgs[0] != "two" {
		t.Errorf("Expected oldest message dismissed, got %v", msgs)
	}
}

func TestSnapshotsAreNotShared(t *testing.T) {
	prev := State{FlashMessages: make([]string, 1, 10)}
	prev.FlashMessages[0] = "zero"

	a := Reduce(prev, FlashMessage{Value: "a"})
	b := Reduce(prev, FlashMessage{Value: "b"})

	if a.FlashMessages[1] != "a" || b.FlashMessages[1] != "b" {
		t.Errorf("Reducer shared backing arrays: %v %v", a.FlashMessages, b.FlashMessages)
	}
}

func TestSearchAndChatFlags(t *testing.T) {
	g := NewGlobal(State{})

	g.Dispatch(OpenSearch{})
	if !g.GetState().IsSearchOpen {
		t.Error("Expected search open")
	}
	g.Dispatch(CloseSearch{})
	if g.GetState().IsSearchOpen {
		t.Error("Expected search closed")
	}

	g.Dispatch(ToggleChat{})
	if !g.GetState().IsChatOpen {
		t.Error("Expected chat open after toggle")
	}
	g.Dispatch(ToggleChat{})
	if g.GetState().IsChatOpen {
		t.Error("Expected chat closed after second toggle")
	}
	g.Dispatch(ToggleChat{})
	g.Dispatch(CloseChat{})
	if g.GetState().IsChatOpen {
		t.Error("Expected chat closed after CloseChat")
	}
}

func TestUnreadCountOnlyWhileChatClosed(t *testing.T) {
	g := NewGlobal(State{})

	g.Dispatch(IncrementUnreadChatCount{})
	g.Dispatch(IncrementUnreadChatCount{})
	if g.GetState().UnreadChatCount != 2 {
		t.Errorf("Expected 2 unread, got %d", g.GetState().UnreadChatCount)
	}

	g.Dispatch(ToggleChat{})
	g.Dispatch(IncrementUnreadChatCount{})
	if g.GetState().UnreadChatCount != 2 {
		t.Errorf("Expected increments to be ignored while chat is open, got %d", g.GetState().UnreadChatCount)
	}

	g.Dispatch(ClearUnreadChatCount{})
	if g.GetState().UnreadChatCount != 0 {
		t.Errorf("Expected 0 after clear, got %d", g.GetState().UnreadChatCount)
	}
}

func TestUnknownActionIsIdentity(t *testing.T) {
	prev := State{IsChatOpen: true, UnreadChatCount: 3, FlashMessages: []string{"x"}}
	next := Reduce(prev, unknownAction{})

	if next.IsChatOpen != prev.IsChatOpen || next.UnreadChatCount != prev.UnreadChatCount || len(next.FlashMessages) != 1 {
		t.Errorf("Unknown action changed state: %+v", next)
	}
	next = Reduce(prev, nil)
	if next.UnreadChatCount != 3 {
		t.Errorf("nil action changed state: %+v", next)
	}
}

func TestUnreadCountMonotonicBetweenClears(t *testing.T) {
	actions := []Action{
		Login{Data: domain.User{Token: "t", Username: "u"}},
		Logout{},
		FlashMessage{Value: "m"},
		OpenSearch{},
		CloseSearch{},
		ToggleChat{},
		CloseChat{},
		IncrementUnreadChatCount{},
		IncrementUnreadChatCount{},
		ClearUnreadChatCount{},
		unknownAction{},
	}

	rng := rand.New(rand.NewSource(42))
	for run := 0; run < 200; run++ {
		s := State{}
		for step := 0; step < 100; step++ {
			a := actions[rng.Intn(len(actions))]
			next := Reduce(s, a)
			if _, cleared := a.(ClearUnreadChatCount); !cleared && next.UnreadChatCount < s.UnreadChatCount {
				t.Fatalf("run %d step %d: unread count decreased from %d to %d on %T",
					run, step, s.UnreadChatCount, next.UnreadChatCount, a)
			}
			if s.IsChatOpen && next.UnreadChatCount > s.UnreadChatCount {
				t.Fatalf("run %d step %d: unread count grew while chat open", run, step)
			}
			s = next
		}
	}
}

func TestInitialState(t *testing.T) {
	s := InitialState(nil)
	if s.Session.LoggedIn {
		t.Error("Expected logged out without a stored session")
	}

	s = InitialState(&domain.Session{Token: "tok", Username: "al"})
	if !s.Session.LoggedIn {
		t.Error("Expected logged in with a stored token")
	}

	s = InitialState(&domain.Session{LoggedIn: true, Username: "al"})
	if s.Session.LoggedIn {
		t.Error("Expected logged out when no token is stored")
	}
}
