package chat

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/deemkeen/postbox/domain"
	"github.com/deemkeen/postbox/request"
	"github.com/deemkeen/postbox/state"
	"github.com/gorilla/websocket"
)

// fakeHub accepts one connection at a time and records what it reads.
type fakeHub struct {
	upgrader websocket.Upgrader

	mu       sync.Mutex
	tokens   []string
	received []domain.OutgoingChatMessage
	conns    chan *websocket.Conn
	closed   chan struct{}
}

func newFakeHub() *fakeHub {
	return &fakeHub{
		conns:  make(chan *websocket.Conn, 4),
		closed: make(chan struct{}, 4),
	}
}

func (h *fakeHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	h.mu.Lock()
	h.tokens = append(h.tokens, r.URL.Query().Get("token"))
	h.mu.Unlock()
	h.conns <- ws

	for {
		var m domain.OutgoingChatMessage
		if err := ws.ReadJSON(&m); err != nil {
			h.closed <- struct{}{}
			return
		}
		h.mu.Lock()
		h.received = append(h.received, m)
		h.mu.Unlock()
	}
}

func (h *fakeHub) Received() []domain.OutgoingChatMessage {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]domain.OutgoingChatMessage(nil), h.received...)
}

func (h *fakeHub) accept(t *testing.T) *websocket.Conn {
	t.Helper()
	select {
	case ws := <-h.conns:
		return ws
	case <-time.After(2 * time.Second):
		t.Fatal("client did not connect")
	}
	return nil
}

func eventually(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("Timed out waiting for %s", what)
}

func setup(t *testing.T, loggedIn bool) (*fakeHub, *request.Loop, *state.Global, *Client) {
	t.Helper()
	hub := newFakeHub()
	server := httptest.NewServer(hub)
	t.Cleanup(server.Close)

	loop := request.NewLoop()
	t.Cleanup(loop.Close)

	var stored *domain.Session
	if loggedIn {
		stored = &domain.Session{Token: "tok", Username: "al", Avatar: "al.png"}
	}
	global := state.NewGlobal(state.InitialState(stored))

	settings := DefaultSettings()
	settings.ReconnectTimeout = 50 * time.Millisecond
	c := NewClient(loop, global, "ws"+strings.TrimPrefix(server.URL, "http")+"/chat", settings)
	t.Cleanup(func() { loop.Do(c.Close) })
	loop.Do(c.Start)
	return hub, loop, global, c
}

func TestIncomingMessageCountsUnread(t *testing.T) {
	hub, _, global, c := setup(t, true)
	ws := hub.accept(t)

	if err := ws.WriteJSON(domain.ChatMessage{Username: "bo", Avatar: "bo.png", Message: "hi"}); err != nil {
		t.Fatalf("Failed to write: %v", err)
	}
	eventually(t, "incoming message", func() bool { return len(c.GetState().Messages) == 1 })

	if got := c.GetState().Messages[0]; got.Username != "bo" || got.Message != "hi" {
		t.Errorf("Unexpected message %+v", got)
	}
	if n := global.GetState().UnreadChatCount; n != 1 {
		t.Errorf("Expected 1 unread message, got %d", n)
	}
	hub.mu.Lock()
	token := hub.tokens[0]
	hub.mu.Unlock()
	if token != "tok" {
		t.Errorf("Expected token 'tok' on the dial url, got '%s'", token)
	}
}

func TestOpenChatClearsAndStopsCounting(t *testing.T) {
	hub, loop, global, c := setup(t, true)
	ws := hub.accept(t)

	ws.WriteJSON(domain.ChatMessage{Username: "bo", Message: "one"})
	eventually(t, "first message", func() bool { return global.GetState().UnreadChatCount == 1 })

	loop.Do(c.Toggle)
	if s := global.GetState(); !s.IsChatOpen || s.UnreadChatCount != 0 {
		t.Errorf("Expected open chat with nothing unread, got %+v", s)
	}

	ws.WriteJSON(domain.ChatMessage{Username: "bo", Message: "two"})
	eventually(t, "second message", func() bool { return len(c.GetState().Messages) == 2 })
	if n := global.GetState().UnreadChatCount; n != 0 {
		t.Errorf("Expected no unread count while open, got %d", n)
	}
}

func TestSendWritesTokenAndEchoes(t *testing.T) {
	hub, loop, _, c := setup(t, true)
	hub.accept(t)
	eventually(t, "connected", func() bool { return c.GetState().Connected })

	var ok bool
	loop.Do(func() { ok = c.Send("hello") })
	if !ok {
		t.Fatal("Expected Send to succeed")
	}
	eventually(t, "server read", func() bool { return len(hub.Received()) == 1 })

	if got := hub.Received()[0]; got.Message != "hello" || got.Token != "tok" {
		t.Errorf("Unexpected outgoing message %+v", got)
	}
	msgs := c.GetState().Messages
	if len(msgs) != 1 || msgs[0].Username != "al" {
		t.Errorf("Expected a local echo from al, got %+v", msgs)
	}
}

func TestNoConnectionWhileLoggedOut(t *testing.T) {
	_, loop, _, c := setup(t, false)

	var ok bool
	loop.Do(func() { ok = c.Send("hello") })
	if ok {
		t.Error("Expected Send to fail without a session")
	}
}

func TestLogoutClosesConnection(t *testing.T) {
	hub, loop, global, _ := setup(t, true)
	hub.accept(t)

	loop.Do(func() { global.Dispatch(state.Logout{}) })

	select {
	case <-hub.closed:
	case <-time.After(2 * time.Second):
		t.Fatal("connection was not closed on logout")
	}
}

func TestLoginConnects(t *testing.T) {
	hub, loop, global, _ := setup(t, false)

	loop.Do(func() {
		global.Dispatch(state.Login{Data: domain.User{Token: "fresh", Username: "bo"}})
	})
	hub.accept(t)

	hub.mu.Lock()
	defer hub.mu.Unlock()
	if len(hub.tokens) != 1 || hub.tokens[0] != "fresh" {
		t.Errorf("Expected one dial with token 'fresh', got %v", hub.tokens)
	}
}
