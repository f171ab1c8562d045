package handler

import (
	"context"

	"go.uber.org/zap"

	"github.com/l1jgo/battlecore/internal/combat"
	"github.com/l1jgo/battlecore/internal/config"
	"github.com/l1jgo/battlecore/internal/core/event"
	"github.com/l1jgo/battlecore/internal/data"
	"github.com/l1jgo/battlecore/internal/net"
	"github.com/l1jgo/battlecore/internal/net/packet"
	"github.com/l1jgo/battlecore/internal/persist"
	"github.com/l1jgo/battlecore/internal/world"
)

// AccountStore is the part of persist.AccountRepo the handlers use.
type AccountStore interface {
	Load(ctx context.Context, name string) (*persist.AccountRow, error)
	Create(ctx context.Context, name, rawPassword, ip string) (*persist.AccountRow, error)
	UpdateLastActive(ctx context.Context, name, ip string) error
	SetOnline(ctx context.Context, name string, online bool) error
}

// CharacterStore is the part of persist.CharacterRepo the handlers use.
type CharacterStore interface {
	LoadByName(ctx context.Context, name string) (*persist.CharacterRow, error)
	Create(ctx context.Context, c *persist.CharacterRow) error
	SaveCharacter(ctx context.Context, c *persist.CharacterRow) error
}

// ItemStore is the part of persist.ItemRepo the handlers use.
type ItemStore interface {
	LoadByCharID(ctx context.Context, charID uint32) ([]persist.EquippedRow, error)
	SaveEquipment(ctx context.Context, charID uint32, items []persist.EquippedRow) error
}

// Deps holds shared dependencies injected into all packet handlers.
type Deps struct {
	Accounts   AccountStore
	Characters CharacterStore
	Items      ItemStore
	Writer     *persist.Writer

	Config *config.Config
	Log    *zap.Logger
	World  *world.State
	Clock  *world.Clock
	Combat *combat.Manager
	Hub    *Hub
	Bus    *event.Bus
	Skills *data.SkillTable
}

// RegisterAll registers all packet handlers into the registry.
func RegisterAll(reg *packet.Registry, deps *Deps) {
	reg.Register(packet.C_OPCODE_LOGIN,
		[]packet.SessionState{packet.StateConnected},
		func(sess any, r *packet.Reader) {
			HandleLogin(sess.(*net.Session), r, deps)
		},
	)
	reg.Register(packet.C_OPCODE_ENTERWORLD,
		[]packet.SessionState{packet.StateAuthenticated},
		func(sess any, r *packet.Reader) {
			HandleEnterWorld(sess.(*net.Session), r, deps)
		},
	)

	inWorldStates := []packet.SessionState{packet.StateInWorld}

	reg.Register(packet.C_OPCODE_INTERACT, inWorldStates,
		func(sess any, r *packet.Reader) {
			HandleInteract(sess.(*net.Session), r, deps)
		},
	)
	reg.Register(packet.C_OPCODE_PKMODE, inWorldStates,
		func(sess any, r *packet.Reader) {
			HandlePkMode(sess.(*net.Session), r, deps)
		},
	)
	reg.Register(packet.C_OPCODE_CHAT, inWorldStates,
		func(sess any, r *packet.Reader) {
			HandleChat(sess.(*net.Session), r, deps)
		},
	)
	reg.Register(packet.C_OPCODE_LOGOUT,
		[]packet.SessionState{packet.StateAuthenticated, packet.StateInWorld},
		func(sess any, r *packet.Reader) {
			HandleLogout(sess.(*net.Session), r, deps)
		},
	)
}

// sendSystemMessage 系統訊息（聊天視窗綠字）。
func sendSystemMessage(sess *net.Session, text string) {
	sess.Send(encodeSystemMessage(text))
}
