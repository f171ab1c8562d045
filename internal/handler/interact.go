package handler

import (
	"github.com/l1jgo/battlecore/internal/combat"
	"github.com/l1jgo/battlecore/internal/net"
	"github.com/l1jgo/battlecore/internal/net/packet"
	"github.com/l1jgo/battlecore/internal/world"
)

// HandleInteract processes C_INTERACT (attack, shoot or cast).
// Format: [C action][DU target][D x][D y][H skill]
func HandleInteract(sess *net.Session, r *packet.Reader, deps *Deps) {
	cs := sessionOf(sess, deps)
	if cs == nil {
		return
	}
	req := combat.Request{
		Action:   combat.InteractAction(r.ReadC()),
		TargetID: r.ReadDU(),
		X:        r.ReadD(),
		Y:        r.ReadD(),
		SkillID:  r.ReadH(),
	}
	cs.OnInteraction(req)
}

// HandlePkMode processes C_PKMODE.
// Format: [C mode]
func HandlePkMode(sess *net.Session, r *packet.Reader, deps *Deps) {
	cs := sessionOf(sess, deps)
	if cs == nil {
		return
	}
	mode := world.PkMode(r.ReadC())
	if mode > world.PkModeCapture {
		return
	}
	p := cs.Owner()
	p.SetPkMode(mode)
	deps.Hub.SendTo(p, combat.SystemMessage{Text: "PK 模式：" + mode.String()})
}
