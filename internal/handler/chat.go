package handler

import (
	"strings"

	"github.com/l1jgo/battlecore/internal/combat"
	"github.com/l1jgo/battlecore/internal/net"
	"github.com/l1jgo/battlecore/internal/net/packet"
)

// maxChatLen 單則訊息上限（字元）
const maxChatLen = 120

// HandleChat processes C_CHAT. GM accounts may prefix commands with ".".
// Format: [text\0]
func HandleChat(sess *net.Session, r *packet.Reader, deps *Deps) {
	text := strings.TrimSpace(r.ReadS())
	if text == "" {
		return
	}
	cs := sessionOf(sess, deps)
	if cs == nil {
		return
	}
	if sess.AccessLevel > 0 && HandleGMCommand(sess, cs, text, deps) {
		return
	}
	if runes := []rune(text); len(runes) > maxChatLen {
		text = string(runes[:maxChatLen])
	}
	p := cs.Owner()
	deps.Hub.BroadcastToScreen(p, combat.SystemMessage{Text: p.Name + "：" + text}, true)
}
