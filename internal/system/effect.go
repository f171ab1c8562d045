package system

import (
	"time"

	"go.uber.org/zap"

	"github.com/l1jgo/battlecore/internal/combat"
	coresys "github.com/l1jgo/battlecore/internal/core/system"
	"github.com/l1jgo/battlecore/internal/world"
)

// EffectSystem expires timed statuses and disguises and banks lucky time.
// Phase 3 (PostUpdate).
type EffectSystem struct {
	world  *world.State
	clock  *world.Clock
	notify combat.Notifier
	log    *zap.Logger
}

func NewEffectSystem(ws *world.State, clock *world.Clock, notify combat.Notifier, log *zap.Logger) *EffectSystem {
	return &EffectSystem{world: ws, clock: clock, notify: notify, log: log}
}

func (s *EffectSystem) Phase() coresys.Phase { return coresys.PhasePostUpdate }

func (s *EffectSystem) Update(_ time.Duration) {
	now := s.clock.Now()
	s.world.All(func(c *world.Combatant) {
		for _, st := range c.ExpireEffects(now) {
			s.log.Debug("狀態結束", zap.Uint32("combatant", c.ID), zap.Stringer("status", st))
		}
		if c.ExpireDisguise(now) {
			s.notify.BroadcastToScreen(c, combat.Transform{ID: c.ID, Lookface: c.Lookface()}, true)
		}
		if c.Player == nil {
			return
		}
		if c.HasEffect(world.StatusLuckDiffuse) || c.HasEffect(world.StatusLuckAbsorb) {
			c.LuckyTimeCheck(now)
		} else {
			c.StopLuckyTime(now)
		}
	})
}
