package system

import "time"

// Phase defines execution ordering within a single tick.
type Phase int

const (
	PhaseInput      Phase = iota // 0: drain packet queues
	PhasePreUpdate               // 1: process last tick's events
	PhaseUpdate                  // 2: combat sessions
	PhasePostUpdate              // 3: effect expiry, respawn
	PhaseOutput                  // 4: flush packets
	PhasePersist                 // 5: periodic save
	PhaseCleanup                 // 6: drop closed sessions
)

// System is the interface every game-loop system implements.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}
