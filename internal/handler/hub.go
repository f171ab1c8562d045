package handler

import (
	"fmt"

	"github.com/sasha-s/go-deadlock"
	"go.uber.org/zap"

	"github.com/l1jgo/battlecore/internal/combat"
	"github.com/l1jgo/battlecore/internal/net"
	"github.com/l1jgo/battlecore/internal/world"
)

// Hub maps player characters to their network sessions and delivers
// combat messages. It is the combat core's Notifier.
type Hub struct {
	mu     deadlock.RWMutex
	byChar map[uint32]*net.Session
	world  *world.State
	log    *zap.Logger
}

func NewHub(ws *world.State, log *zap.Logger) *Hub {
	return &Hub{
		byChar: make(map[uint32]*net.Session),
		world:  ws,
		log:    log.Named("hub"),
	}
}

var _ combat.Notifier = (*Hub)(nil)

// Bind routes messages for charID to sess.
func (h *Hub) Bind(charID uint32, sess *net.Session) {
	h.mu.Lock()
	h.byChar[charID] = sess
	h.mu.Unlock()
}

// Unbind forgets charID. Only the bound session is removed.
func (h *Hub) Unbind(charID uint32, sess *net.Session) {
	h.mu.Lock()
	if h.byChar[charID] == sess {
		delete(h.byChar, charID)
	}
	h.mu.Unlock()
}

// Session returns the session playing charID, or nil.
func (h *Hub) Session(charID uint32) *net.Session {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.byChar[charID]
}

// Count returns the number of bound characters.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.byChar)
}

// Each calls fn for every bound session.
func (h *Hub) Each(fn func(charID uint32, sess *net.Session)) {
	h.mu.RLock()
	snapshot := make(map[uint32]*net.Session, len(h.byChar))
	for id, s := range h.byChar {
		snapshot[id] = s
	}
	h.mu.RUnlock()
	for id, s := range snapshot {
		fn(id, s)
	}
}

// SendTo delivers msg to c's client. Non-players have no client.
func (h *Hub) SendTo(c *world.Combatant, msg combat.Message) {
	if c == nil || c.Kind != world.KindPlayer {
		return
	}
	sess := h.Session(c.ID)
	if sess == nil {
		return
	}
	if data := h.encode(msg); data != nil {
		sess.Send(data)
	}
}

// BroadcastToScreen delivers msg to every player within screen range of
// origin, and to origin itself when includeSelf is set.
func (h *Hub) BroadcastToScreen(origin *world.Combatant, msg combat.Message, includeSelf bool) {
	if origin == nil {
		return
	}
	data := h.encode(msg)
	if data == nil {
		return
	}
	if includeSelf && origin.Kind == world.KindPlayer {
		if sess := h.Session(origin.ID); sess != nil {
			sess.Send(data)
		}
	}
	for _, c := range h.world.EntitiesInScreen(origin) {
		if c.Kind != world.KindPlayer {
			continue
		}
		if sess := h.Session(c.ID); sess != nil {
			sess.Send(data)
		}
	}
}

func (h *Hub) encode(msg combat.Message) []byte {
	data := Encode(msg)
	if data == nil {
		h.log.Warn("無法編碼的訊息", zap.String("type", fmt.Sprintf("%T", msg)))
	}
	return data
}
