package web

import (
	"net/http"
	"sync"
	"time"

	"github.com/deemkeen/postbox/domain"
	"github.com/deemkeen/postbox/util"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const hubWriteTimeout = 5 * time.Second

// Hub is the global chat room. Every message goes to everyone but the
// sender.
type Hub struct {
	signer   *Signer
	upgrader websocket.Upgrader

	mu      sync.Mutex
	members map[*member]struct{}
}

type member struct {
	ws       *websocket.Conn
	username string
	avatar   string
	writeMu  sync.Mutex
}

func NewHub(signer *Signer) *Hub {
	return &Hub{
		signer: signer,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4 * 1024,
			WriteBufferSize: 4 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		members: map[*member]struct{}{},
	}
}

func (h *Hub) Size() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.members)
}

// Handle upgrades an authenticated request and serves it until the peer
// goes away.
func (h *Hub) Handle(c *gin.Context) {
	log := util.NewLogger("hub")

	claims, err := h.signer.Verify(c.Query("token"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}
	ws, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.WithError(err).Info("websocket upgrade failed")
		return
	}

	m := &member{ws: ws, username: claims.Username, avatar: claims.Avatar}
	h.join(m)
	defer h.leave(m)
	log.WithField("user", m.username).Info("joined chat")

	for {
		var in domain.OutgoingChatMessage
		if err := ws.ReadJSON(&in); err != nil {
			log.WithField("user", m.username).Debug("left chat")
			return
		}
		if util.IsBlank(in.Message) {
			continue
		}
		h.broadcast(m, domain.ChatMessage{
			Username: m.username,
			Avatar:   m.avatar,
			Message:  in.Message,
		})
	}
}

func (h *Hub) join(m *member) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.members[m] = struct{}{}
}

func (h *Hub) leave(m *member) {
	h.mu.Lock()
	delete(h.members, m)
	h.mu.Unlock()
	m.ws.Close()
}

func (h *Hub) broadcast(from *member, msg domain.ChatMessage) {
	h.mu.Lock()
	targets := make([]*member, 0, len(h.members))
	for m := range h.members {
		if m != from {
			targets = append(targets, m)
		}
	}
	h.mu.Unlock()

	for _, m := range targets {
		m.writeMu.Lock()
		m.ws.SetWriteDeadline(time.Now().Add(hubWriteTimeout))
		err := m.ws.WriteJSON(msg)
		m.writeMu.Unlock()
		if err != nil {
			m.ws.Close()
		}
	}
}
