package system

import (
	"time"

	"github.com/l1jgo/battlecore/internal/combat"
	coresys "github.com/l1jgo/battlecore/internal/core/system"
	"github.com/l1jgo/battlecore/internal/world"
)

// CombatSystem advances the server clock and fires every session whose
// next trigger is due. Phase 2 (Update).
type CombatSystem struct {
	clock   *world.Clock
	manager *combat.Manager
}

func NewCombatSystem(clock *world.Clock, manager *combat.Manager) *CombatSystem {
	return &CombatSystem{clock: clock, manager: manager}
}

func (s *CombatSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *CombatSystem) Update(dt time.Duration) {
	s.clock.Advance(dt)
	s.manager.Tick()
}
