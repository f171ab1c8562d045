package system

import (
	"time"

	"go.uber.org/zap"

	coresys "github.com/l1jgo/battlecore/internal/core/system"
	"github.com/l1jgo/battlecore/internal/handler"
	"github.com/l1jgo/battlecore/internal/net"
)

// PersistenceSystem periodically queues a save of every online character
// and its combat records. Phase 5 (Persist).
type PersistenceSystem struct {
	deps      *handler.Deps
	tickCount int
	interval  int // 每 N tick 自動存檔
}

func NewPersistenceSystem(deps *handler.Deps, intervalTicks int) *PersistenceSystem {
	return &PersistenceSystem{deps: deps, interval: intervalTicks}
}

func (s *PersistenceSystem) Phase() coresys.Phase { return coresys.PhasePersist }

func (s *PersistenceSystem) Update(_ time.Duration) {
	if s.interval <= 0 {
		return
	}
	s.tickCount++
	if s.tickCount < s.interval {
		return
	}
	s.tickCount = 0
	s.SaveAllPlayers()
}

// SaveAllPlayers queues a save of everyone online immediately. Called on
// graceful shutdown as well.
func (s *PersistenceSystem) SaveAllPlayers() {
	count := 0
	s.deps.Hub.Each(func(charID uint32, _ *net.Session) {
		if p := s.deps.World.FindByID(charID); p != nil {
			handler.SavePlayer(p, s.deps)
			count++
		}
	})
	s.deps.Combat.SaveAll()
	s.deps.Log.Debug("自動存檔", zap.Int("players", count))
}
