package combat

import (
	"go.uber.org/zap"

	"github.com/l1jgo/battlecore/internal/world"
)

// InteractAction is the action byte of an interaction request.
type InteractAction uint8

const (
	InteractAttack      InteractAction = 2
	InteractMagicAttack InteractAction = 21
	InteractShoot       InteractAction = 28
)

// Request is an inbound interaction.
type Request struct {
	Action   InteractAction
	TargetID uint32
	X, Y     int32
	SkillID  uint16
}

func (r Request) point() world.Point { return world.Point{X: r.X, Y: r.Y} }

// gemEffects 超級寶石代碼 → 特效名稱，依序比對。
var gemEffects = []struct {
	code uint8
	name string
}{
	{3, "phoenix"},
	{13, "goldendragon"},
	{23, "lounder1"},
	{33, "rainbow"},
	{43, "goldenkylin"},
	{53, "purpleray"},
	{63, "moon"},
	{73, "recovery"},
}

func gemEffectOf(it world.Item) (string, bool) {
	for _, g := range gemEffects {
		if it.Gem1 == g.code || it.Gem2 == g.code {
			return g.name, true
		}
	}
	return "", false
}

// OnInteraction handles a cast or attack request from the owner's client
// (or from the AI driving a monster or pet).
func (s *Session) OnInteraction(req Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.canceled = true
	switch {
	case s.State() == StateIntoning:
		s.abort(true)
	case s.owner.Kind == world.KindPlayer && s.State() == StateLaunching:
		return
	}

	if s.owner.HasEffect(world.StatusLuckDiffuse) || s.owner.HasEffect(world.StatusLuckAbsorb) {
		s.owner.LuckyTimeCheck(s.now())
		if s.owner.LuckyAbsorbTimer() != 0 {
			s.owner.SetLuckyAbsorbTimer(0)
		}
	}

	switch req.Action {
	case InteractMagicAttack:
		s.processSkill(req)
	case InteractAttack, InteractShoot:
		s.processAttack(req)
	default:
		s.log.Warn("unhandled interaction", zap.Uint8("action", uint8(req.Action)))
	}

	if s.owner.Kind == world.KindPlayer {
		s.gemProc()
		if s.owner.IsMining() {
			s.owner.SetMining(false)
			s.deps.Notify.BroadcastToScreen(s.owner, Action{ID: s.owner.ID, Kind: ActionStopMining}, true)
		}
	}
}

// gemProc 裝備上的超級寶石有機率播放特效給自己與附近的人看。
func (s *Session) gemProc() {
	if !s.deps.Dice.PercentSuccess(s.deps.Config.GemEffectChance) {
		return
	}
	var gems []string
	for slot := world.SlotHelmet; slot <= world.SlotBoots; slot++ {
		it, ok := s.owner.EquippedItem(slot)
		if !ok {
			continue
		}
		if name, ok := gemEffectOf(it); ok {
			gems = append(gems, name)
		}
	}
	if len(gems) == 0 {
		return
	}
	msg := RoleEffect{ID: s.owner.ID, Name: gems[s.deps.Dice.Intn(len(gems))]}
	s.deps.Notify.SendTo(s.owner, msg)

	pos := s.owner.Pos()
	for _, o := range s.deps.World.EntitiesInScreen(s.owner) {
		if o.IsAlive() && world.Distance(pos, o.Pos()) < s.deps.Config.GemEffectRange {
			s.deps.Notify.SendTo(o, msg)
		}
	}
}
