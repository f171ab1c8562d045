package system

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/l1jgo/battlecore/internal/combat"
	"github.com/l1jgo/battlecore/internal/core/event"
	"github.com/l1jgo/battlecore/internal/world"
)

// BusObserver forwards combat outcomes onto the event bus. Kills and
// level-ups may be reported from any goroutine; subscribers run on the
// game loop next tick.
type BusObserver struct {
	bus *event.Bus
}

func NewBusObserver(bus *event.Bus) *BusObserver {
	return &BusObserver{bus: bus}
}

func (o *BusObserver) EntityKilled(killer, victim *world.Combatant, value uint32) {
	event.Emit(o.bus, event.EntityKilled{KillerID: killer.ID, VictimID: victim.ID, Value: value})
}

func (o *BusObserver) SkillLeveled(owner *world.Combatant, r combat.SkillRecord) {
	event.Emit(o.bus, event.SkillLeveled{OwnerID: owner.ID, SkillID: r.ID, Level: r.Level})
}

func (o *BusObserver) ProficiencyLeveled(owner *world.Combatant, r combat.ProficiencyRecord) {
	event.Emit(o.bus, event.ProficiencyLeveled{OwnerID: owner.ID, WeaponType: r.ID, Level: r.Level})
}

// RegisterAnnouncements subscribes the chat-window notices for level-ups
// and logs player deaths.
func RegisterAnnouncements(bus *event.Bus, ws *world.State, notify combat.Notifier, log *zap.Logger) {
	event.Subscribe(bus, func(e event.SkillLeveled) {
		if owner := ws.FindByID(e.OwnerID); owner != nil {
			notify.SendTo(owner, combat.SystemMessage{Text: fmt.Sprintf("技能 %d 提升至 %d 級", e.SkillID, e.Level)})
		}
	})
	event.Subscribe(bus, func(e event.ProficiencyLeveled) {
		if owner := ws.FindByID(e.OwnerID); owner != nil {
			notify.SendTo(owner, combat.SystemMessage{Text: fmt.Sprintf("武器熟練度 %d 提升至 %d 級", e.WeaponType, e.Level)})
		}
	})
	event.Subscribe(bus, func(e event.EntityKilled) {
		victim := ws.FindByID(e.VictimID)
		if victim == nil || victim.Kind != world.KindPlayer {
			return
		}
		log.Info("玩家死亡",
			zap.Uint32("victim", e.VictimID),
			zap.Uint32("killer", e.KillerID),
			zap.Uint32("value", e.Value),
		)
	})
}
