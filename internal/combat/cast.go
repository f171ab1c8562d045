package combat

import (
	"go.uber.org/zap"

	"github.com/l1jgo/battlecore/internal/data"
	"github.com/l1jgo/battlecore/internal/world"
)

// ==================== 施法流程 ====================

// processSkill validates a cast request, charges its cost and either starts
// the wind-up or launches immediately.
func (s *Session) processSkill(req Request) {
	if !s.owner.IsAlive() {
		s.abort(false)
		return
	}
	rec, ok := s.skills.get(req.SkillID)
	if !ok {
		s.log.Debug("cast of unknown skill", zap.Uint16("skill", req.SkillID))
		s.abort(false)
		return
	}
	def := s.deps.Repo.SkillDefinition(rec.ID, rec.Level)
	if def == nil || !s.takeCosts(def) {
		s.abort(false)
		return
	}
	s.setSkill(def)
	s.paid = true
	s.targetID = req.TargetID
	s.location = req.point()

	if s.isContestMap() && req.TargetID != s.owner.ID && !s.passesContestGate(req.TargetID, s.deps.Contest.ScarecrowLevel) {
		s.abort(false)
		return
	}

	s.canceled = false
	now := s.now()
	switch {
	case now < s.cooldownUntil:
		s.nextTrigger = s.cooldownUntil
		s.transition(evIntone, StateIntoning)
	case def.IntoneMS > 0:
		// 吟唱結束時重新檢查並扣除消耗
		s.paid = false
		s.nextTrigger = now + def.IntoneMS
		s.transition(evIntone, StateIntoning)
	default:
		s.paid = false
		s.launchSkill()
	}
}

// passesContestGate 比武場：目標必須是對應的稻草人／木樁，且等級達到門檻。
func (s *Session) passesContestGate(targetID uint32, gate func(mesh uint32) (uint8, bool)) bool {
	t := s.deps.World.FindByID(targetID)
	if t == nil || t.Kind != world.KindStatic || t.Static == nil {
		return false
	}
	level, ok := gate(t.Static.Mesh)
	return ok && s.owner.Level >= level
}

// launchSkill computes the effect of the active skill by archetype, shows
// it to observers and either waits for delivery or resolves right away.
func (s *Session) launchSkill() {
	if !s.owner.IsAlive() || s.skill == nil {
		s.abort(false)
		return
	}
	def := s.skill
	s.effect = &SkillEffect{CasterID: s.owner.ID, SkillID: def.ID, Level: def.Level}

	switch def.Sort {
	case data.SortArea, data.SortSquare:
		s.launchArea(def)
	case data.SortHealTarget:
		s.launchHeal(def)
	case data.SortAddMana:
		s.launchAddMana(def)
	case data.SortStatusAttack:
		s.launchStatusAttack(def)
	case data.SortDetachStatus:
		s.launchDetachStatus(def)
	case data.SortAttachStatus:
		s.launchAttachStatus(def)
	case data.SortAttack:
		s.launchAttackSkill(def)
	case data.SortSector:
		s.launchSector(def)
	case data.SortLine:
		s.launchLine(def)
	case data.SortTransform:
		s.launchTransform(def)
	case data.SortCallPet:
		s.launchCallPet(def)
	default:
		s.log.Warn("cannot launch skill archetype",
			zap.Uint16("skill", def.ID), zap.Stringer("archetype", def.Sort))
	}
	if s.skill == nil {
		return // 發動途中被中止
	}
	if len(s.effect.Targets) > 0 {
		s.deps.Notify.BroadcastToScreen(s.owner, s.effect, true)
	}
	if def.DelayMS > 0 {
		s.nextTrigger = s.now() + def.DelayMS
		s.transition(evLaunch, StateLaunching)
		return
	}
	s.dealSkill()
}

// dealSkill resolves the launched skill and decides what comes next.
func (s *Session) dealSkill() {
	if !s.owner.IsAlive() || s.skill == nil {
		s.resetToIdle()
		s.canceled = true
		return
	}
	def := s.skill
	switch def.Sort {
	case data.SortAttack, data.SortArea, data.SortLine, data.SortSector, data.SortSquare, data.SortStatusAttack:
		s.dealSkillDamage()
	case data.SortHealTarget, data.SortCallPet:
		// 發動時已經完整生效
	default:
		s.log.Debug("nothing to deal", zap.Uint16("skill", def.ID), zap.Stringer("archetype", def.Sort))
	}

	now := s.now()
	cd := s.skillCooldown(def, s.deps.Config.MinCooldownMS)
	switch {
	case s.canceled:
		s.cooldownUntil = now + cd
		s.resetToIdle()
	case s.isContestMap():
		s.nextTrigger = now + cd
		s.cooldownUntil = s.nextTrigger
		s.paid = false
		s.transition(evIntone, StateIntoning)
	case def.NextMagic != 0:
		s.chain(def.NextMagic, now)
	case s.deps.WeaponSkills.IsWeaponSkill(def.ID):
		s.setSkill(nil)
		s.effect = nil
		s.nextTrigger = now + s.meleeCooldown()
		s.cooldownUntil = s.nextTrigger
		s.transition(evAttack, StateAttacking)
	default:
		s.cooldownUntil = now + cd
		s.resetToIdle()
	}
}

// chain 連續技：下一招以自己學會的等級施放，未學會時用 0 級。
func (s *Session) chain(nextID uint16, now int64) {
	var level uint16
	if rec, ok := s.skills.get(nextID); ok {
		level = rec.Level
	}
	next := s.deps.Repo.SkillDefinition(nextID, level)
	if next == nil {
		s.log.Debug("chained skill missing", zap.Uint16("skill", nextID), zap.Uint16("level", level))
		s.cooldownUntil = now + s.skillCooldown(s.skill, s.deps.Config.MinCooldownMS)
		s.resetToIdle()
		return
	}
	s.setSkill(next)
	s.paid = false
	s.nextTrigger = now + s.skillCooldown(next, s.deps.Config.ChainCooldownMS)
	s.cooldownUntil = s.nextTrigger
	s.transition(evIntone, StateIntoning)
}

// dealSkillDamage re-resolves every recorded target and finalizes deaths.
func (s *Session) dealSkillDamage() {
	if s.effect == nil {
		return
	}
	for _, t := range s.effect.Targets {
		target := s.deps.World.FindByID(t.ID)
		if target == nil || target.IsAlive() {
			continue
		}
		s.resolveDeath(target, killValueSkill)
	}

	s.owner.RemoveEffect(world.StatusIntensify)

	for _, t := range s.effect.Targets {
		target := s.deps.World.FindByID(t.ID)
		if target != nil && s.isValidTarget(target) {
			s.petAssist(target)
			break
		}
	}
}

// petAssist points the owner's pet at target.
func (s *Session) petAssist(target *world.Combatant) {
	petID := s.owner.PetID()
	if petID == 0 {
		return
	}
	if pet := s.deps.World.FindByID(petID); pet != nil && pet.Pet != nil {
		pet.Pet.SetTarget(target.ID)
	}
}
