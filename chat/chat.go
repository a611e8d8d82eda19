// Package chat keeps the live chat connection of the logged-in user.
package chat

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/deemkeen/postbox/domain"
	"github.com/deemkeen/postbox/request"
	"github.com/deemkeen/postbox/state"
	"github.com/deemkeen/postbox/store"
	"github.com/deemkeen/postbox/util"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const sendBufferSize = 32

type Settings struct {
	HandshakeTimeout time.Duration
	WriteTimeout     time.Duration
	ReconnectTimeout time.Duration
}

func DefaultSettings() Settings {
	return Settings{
		HandshakeTimeout: 5 * time.Second,
		WriteTimeout:     5 * time.Second,
		ReconnectTimeout: 5 * time.Second,
	}
}

type State struct {
	Messages  []domain.ChatMessage
	Connected bool
}

type Action interface {
	isChatAction()
}

// Received is a message from another user.
type Received struct {
	Message domain.ChatMessage
}

// Sent is the local echo of the user's own message.
type Sent struct {
	Message domain.ChatMessage
}

type ConnectionChanged struct {
	Connected bool
}

func (Received) isChatAction()          {}
func (Sent) isChatAction()              {}
func (ConnectionChanged) isChatAction() {}

func Reduce(prev State, action Action) State {
	next := prev
	switch a := action.(type) {
	case Received:
		next.Messages = appendMessage(prev.Messages, a.Message)
	case Sent:
		next.Messages = appendMessage(prev.Messages, a.Message)
	case ConnectionChanged:
		next.Connected = a.Connected
	}
	return next
}

func appendMessage(s []domain.ChatMessage, m domain.ChatMessage) []domain.ChatMessage {
	out := make([]domain.ChatMessage, len(s), len(s)+1)
	copy(out, s)
	return append(out, m)
}

// Client follows the session: it connects on login and disconnects on
// logout. Incoming messages are applied on the loop.
type Client struct {
	loop     *request.Loop
	global   *state.Global
	chatUrl  string
	settings Settings
	store    *store.Store[State, Action]
	log      *logrus.Entry

	mu          sync.Mutex
	conn        *connection
	unsubscribe func()
	closed      bool
}

// connection is one websocket session bound to one token.
type connection struct {
	ctx    context.Context
	cancel context.CancelFunc
	send   chan domain.OutgoingChatMessage
	done   chan struct{}

	mu sync.Mutex
	ws *websocket.Conn
}

func NewClient(loop *request.Loop, global *state.Global, chatUrl string, settings Settings) *Client {
	return &Client{
		loop:     loop,
		global:   global,
		chatUrl:  chatUrl,
		settings: settings,
		store:    store.New[State, Action](State{}, Reduce),
		log:      util.NewLogger("chat"),
	}
}

func (c *Client) GetState() State {
	return c.store.GetState()
}

func (c *Client) Subscribe(fn store.Listener[State]) func() {
	return c.store.Subscribe(fn)
}

// Start connects when the session is already logged in and follows later
// login and logout transitions. Call it on the loop.
func (c *Client) Start() {
	c.mu.Lock()
	if c.closed || c.unsubscribe != nil {
		c.mu.Unlock()
		return
	}
	c.unsubscribe = c.global.Subscribe(func(prev, next state.State) {
		switch {
		case !prev.Session.LoggedIn && next.Session.LoggedIn:
			c.connect(next.Session.Token)
		case prev.Session.LoggedIn && !next.Session.LoggedIn:
			c.disconnect()
		}
	})
	c.mu.Unlock()

	if s := c.global.GetState().Session; s.LoggedIn {
		c.connect(s.Token)
	}
}

// Toggle opens or closes the chat panel. Opening marks everything read.
func (c *Client) Toggle() {
	c.global.Dispatch(state.ToggleChat{})
	if c.global.GetState().IsChatOpen {
		c.global.Dispatch(state.ClearUnreadChatCount{})
	}
}

func (c *Client) Hide() {
	c.global.Dispatch(state.CloseChat{})
}

// Send queues text for delivery and echoes it locally. It returns false
// when there is no connection or the queue is full. Call it on the loop.
func (c *Client) Send(text string) bool {
	if util.IsBlank(text) {
		return false
	}
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return false
	}

	session := c.global.GetState().Session
	select {
	case conn.send <- domain.OutgoingChatMessage{Message: text, Token: session.Token}:
	default:
		c.log.Warn("send queue full, message dropped")
		return false
	}
	c.store.Dispatch(Sent{Message: domain.ChatMessage{
		Username: session.Username,
		Avatar:   session.Avatar,
		Message:  text,
	}})
	return true
}

// Close disconnects and stops following the session.
func (c *Client) Close() {
	c.mu.Lock()
	c.closed = true
	unsubscribe := c.unsubscribe
	c.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
	c.disconnect()
}

func (c *Client) connect(token string) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	old := c.conn
	ctx, cancel := context.WithCancel(context.Background())
	conn := &connection{
		ctx:    ctx,
		cancel: cancel,
		send:   make(chan domain.OutgoingChatMessage, sendBufferSize),
		done:   make(chan struct{}),
	}
	c.conn = conn
	c.mu.Unlock()

	if old != nil {
		old.stop()
	}
	go c.run(conn, token)
}

func (c *Client) disconnect() {
	c.mu.Lock()
	conn := c.conn
	c.conn = nil
	c.mu.Unlock()

	if conn != nil {
		conn.stop()
	}
}

func (conn *connection) stop() {
	conn.cancel()
	conn.mu.Lock()
	if conn.ws != nil {
		conn.ws.Close()
	}
	conn.mu.Unlock()
	<-conn.done
}

func (c *Client) dialUrl(token string) (string, error) {
	u, err := url.Parse(c.chatUrl)
	if err != nil {
		return "", fmt.Errorf("invalid chat url %q: %w", c.chatUrl, err)
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// run keeps one connection alive until its context ends, reconnecting
// after ReconnectTimeout.
func (c *Client) run(conn *connection, token string) {
	defer close(conn.done)

	target, err := c.dialUrl(token)
	if err != nil {
		c.log.WithError(err).Error("chat disabled")
		return
	}
	dialer := websocket.Dialer{HandshakeTimeout: c.settings.HandshakeTimeout}

	for {
		ws, _, err := dialer.DialContext(conn.ctx, target, nil)
		if err != nil {
			c.log.WithError(err).Info("chat connect failed")
		} else {
			conn.mu.Lock()
			conn.ws = ws
			conn.mu.Unlock()
			if conn.ctx.Err() != nil {
				ws.Close()
				return
			}

			c.setConnected(true)
			c.serve(conn, ws)
			c.setConnected(false)
		}

		select {
		case <-conn.ctx.Done():
			return
		case <-time.After(c.settings.ReconnectTimeout):
		}
	}
}

func (c *Client) serve(conn *connection, ws *websocket.Conn) {
	defer ws.Close()

	handleCtx, handleCancel := context.WithCancel(conn.ctx)
	defer handleCancel()

	go func() {
		defer handleCancel()
		for {
			select {
			case <-handleCtx.Done():
				return
			case out := <-conn.send:
				ws.SetWriteDeadline(time.Now().Add(c.settings.WriteTimeout))
				if err := ws.WriteJSON(out); err != nil {
					c.log.WithError(err).Info("chat write failed")
					ws.Close()
					return
				}
			}
		}
	}()

	for {
		var in domain.ChatMessage
		if err := ws.ReadJSON(&in); err != nil {
			if handleCtx.Err() == nil {
				c.log.WithError(err).Info("chat connection lost")
			}
			return
		}
		c.loop.Post(func() {
			if conn.ctx.Err() != nil {
				return
			}
			c.store.Dispatch(Received{Message: in})
			c.global.Dispatch(state.IncrementUnreadChatCount{})
		})
	}
}

func (c *Client) setConnected(connected bool) {
	c.loop.Post(func() {
		c.store.Dispatch(ConnectionChanged{Connected: connected})
	})
}
