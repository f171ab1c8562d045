package combat

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/looplab/fsm"
	"github.com/sasha-s/go-deadlock"
	"go.uber.org/zap"

	"github.com/l1jgo/battlecore/internal/data"
	"github.com/l1jgo/battlecore/internal/world"
)

// State is the combat session state.
type State uint32

const (
	StateIdle State = iota
	StateIntoning
	StateLaunching
	StateAttacking
)

var stateNames = [...]string{"idle", "intoning", "launching", "attacking"}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}

func parseState(name string) State {
	for i, n := range stateNames {
		if n == name {
			return State(i)
		}
	}
	return StateIdle
}

// fsm 事件
const (
	evIntone = "intone"
	evLaunch = "launch"
	evAttack = "attack"
	evReset  = "reset"
)

// Session drives one combatant's casts and swings. OnInteraction and OnTick
// may be called from different goroutines; both serialize on mu.
type Session struct {
	owner *world.Combatant
	deps  *Deps
	log   *zap.Logger

	mu    deadlock.Mutex
	fsm   *fsm.FSM
	state atomic.Uint32 // fsm 目前狀態的鏡像，IsActive 不需要拿鎖
	power atomic.Int32

	skill         *data.SkillDef
	targetID      uint32
	location      world.Point
	nextTrigger   int64
	cooldownUntil int64 // 全域冷卻；閒置時 nextTrigger 固定為 0
	canceled      bool
	paid          bool // 本次施放的消耗已經扣過
	effect        *SkillEffect

	skills *recordMap[SkillRecord]
	profs  *recordMap[ProficiencyRecord]
}

// NewSession creates the owner's session and loads its skill and
// proficiency records. Each loaded record is sent to the owner.
func NewSession(owner *world.Combatant, deps *Deps) (*Session, error) {
	log := deps.Log
	if log == nil {
		log = zap.NewNop()
	}
	s := &Session{
		owner:  owner,
		deps:   deps,
		log:    log.With(zap.Uint32("combatant", owner.ID)),
		skills: newRecordMap[SkillRecord](),
		profs:  newRecordMap[ProficiencyRecord](),
	}
	s.fsm = newStateMachine(s)

	skills, err := deps.Repo.SkillsOf(owner.ID)
	if err != nil {
		return nil, fmt.Errorf("load skills of %d: %w", owner.ID, err)
	}
	profs, err := deps.Repo.ProficienciesOf(owner.ID)
	if err != nil {
		return nil, fmt.Errorf("load proficiencies of %d: %w", owner.ID, err)
	}
	for _, r := range skills {
		if s.skills.putIfAbsent(r.ID, r) {
			deps.Notify.SendTo(owner, SkillInfo{Record: r})
		}
	}
	for _, r := range profs {
		if s.profs.putIfAbsent(r.ID, r) {
			deps.Notify.SendTo(owner, ProficiencyInfo{Record: r})
		}
	}
	return s, nil
}

func newStateMachine(s *Session) *fsm.FSM {
	idle, intoning := StateIdle.String(), StateIntoning.String()
	launching, attacking := StateLaunching.String(), StateAttacking.String()
	return fsm.NewFSM(idle,
		fsm.Events{
			{Name: evIntone, Src: []string{idle, intoning, launching, attacking}, Dst: intoning},
			{Name: evLaunch, Src: []string{idle, intoning, attacking}, Dst: launching},
			{Name: evAttack, Src: []string{idle, intoning, launching, attacking}, Dst: attacking},
			{Name: evReset, Src: []string{idle, intoning, launching, attacking}, Dst: idle},
		},
		fsm.Callbacks{
			"enter_state": func(_ context.Context, e *fsm.Event) {
				s.state.Store(uint32(parseState(e.Dst)))
			},
		},
	)
}

// transition fires an fsm event. Re-entering the current state is a no-op.
func (s *Session) transition(event string, dst State) {
	err := s.fsm.Event(context.Background(), event)
	if err == nil {
		return
	}
	var same fsm.NoTransitionError
	if errors.As(err, &same) {
		return
	}
	s.log.Warn("combat transition rejected",
		zap.String("event", event),
		zap.Stringer("from", s.State()),
		zap.Error(err))
	s.fsm.SetState(dst.String())
	s.state.Store(uint32(dst))
}

// ==================== 公開查詢 ====================

// Owner returns the combatant this session belongs to.
func (s *Session) Owner() *world.Combatant { return s.owner }

// State returns the current state without taking the session lock.
func (s *Session) State() State { return State(s.state.Load()) }

// IsActive reports whether a cast or swing is in progress.
func (s *Session) IsActive() bool { return s.State() != StateIdle }

// CurrentPower returns the power of the active skill, 0 when none.
func (s *Session) CurrentPower() int32 { return s.power.Load() }

// ==================== 內部狀態 ====================

func (s *Session) setSkill(def *data.SkillDef) {
	s.skill = def
	if def == nil {
		s.power.Store(0)
		return
	}
	s.power.Store(def.Power)
}

func (s *Session) now() int64 { return s.deps.Clock.Now() }

func (s *Session) resetToIdle() {
	s.setSkill(nil)
	s.targetID = 0
	s.nextTrigger = 0
	s.effect = nil
	s.paid = false
	s.transition(evReset, StateIdle)
}

// abort cancels the current cast or swing. A launching commitment keeps
// its state; only the canceled flag is raised.
func (s *Session) abort(sync bool) {
	if s.State() != StateLaunching {
		s.resetToIdle()
	}
	s.canceled = true
	if sync {
		s.deps.Notify.SendTo(s.owner, AbortMagic{ID: s.owner.ID})
	}
}

// Abort is the external cancel entry point (death, logout, teleport).
func (s *Session) Abort(sync bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.abort(sync)
}

func (s *Session) skillCooldown(def *data.SkillDef, floor int64) int64 {
	return max(floor, def.DelayMS+def.IntoneMS)
}

// meleeCooldown 普攻間隔；旋風狀態減半。
func (s *Session) meleeCooldown() int64 {
	spd := s.owner.AttackSpeed
	if spd <= 0 {
		spd = 1000
	}
	if s.owner.HasEffect(world.StatusCyclone) {
		spd /= 2
	}
	return spd
}

func (s *Session) isContestMap() bool {
	return s.deps.World.IsContestMap(s.owner.MapID)
}

// ==================== Tick ====================

// OnTick fires the pending state action once its trigger time is reached.
func (s *Session) OnTick() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.nextTrigger == 0 || s.now() < s.nextTrigger {
		return
	}
	switch s.State() {
	case StateAttacking:
		s.launchAttack()
	case StateIntoning:
		s.resolveIntone()
	case StateLaunching:
		s.dealSkill()
	}
}

// resolveIntone finishes a wind-up: the skill must still be known, the
// definition is refreshed from the known level and the cost is re-checked
// and charged. A cast deferred by the global cooldown already paid.
func (s *Session) resolveIntone() {
	if s.skill == nil {
		s.abort(false)
		return
	}
	rec, ok := s.skills.get(s.skill.ID)
	if !ok {
		s.log.Debug("intoned skill no longer known", zap.Uint16("skill", s.skill.ID))
		s.resetToIdle()
		return
	}
	def := s.deps.Repo.SkillDefinition(rec.ID, rec.Level)
	if def == nil {
		s.abort(false)
		return
	}
	if !s.paid {
		if !s.takeCosts(def) {
			s.abort(false)
			return
		}
	}
	s.paid = false
	s.setSkill(def)
	s.launchSkill()
}
