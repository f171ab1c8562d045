package combat

import "github.com/l1jgo/battlecore/internal/world"

// 死亡原因代碼
const (
	killValueMelee    uint32 = 1
	killValueSkill    uint32 = 3
	killValueStatic   uint32 = 1
	killValueMomentum uint32 = 65541 // × (連斬數 + 1)
)

// resolveDeath finalizes a target whose life reached zero. Under Cyclone
// or Superman the kill value escalates with the KO counter and the buff is
// extended. Targets already finalized by someone else are left alone.
func (s *Session) resolveDeath(target *world.Combatant, fallback uint32) {
	value := fallback
	var momentum world.Status
	switch {
	case target.Kind == world.KindStatic:
		value = killValueStatic
	case s.owner.HasEffect(world.StatusCyclone):
		momentum = world.StatusCyclone
	case s.owner.HasEffect(world.StatusSuperman):
		momentum = world.StatusSuperman
	}
	if momentum != world.StatusNone {
		value = killValueMomentum * (s.owner.KOCount() + 1)
	}
	if !target.Die(s.owner.ID, value) {
		return
	}
	if momentum != world.StatusNone {
		s.owner.ExtendEffect(momentum, s.deps.Config.MomentumExtendMS)
		s.owner.IncKOCount()
	}
	s.deps.Notify.BroadcastToScreen(target, Kill{KillerID: s.owner.ID, VictimID: target.ID, Value: value}, true)
	s.deps.observer().EntityKilled(s.owner, target, value)
}
