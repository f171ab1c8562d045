package combat

import (
	"go.uber.org/zap"

	"github.com/l1jgo/battlecore/internal/data"
	"github.com/l1jgo/battlecore/internal/world"
)

// processAttack validates a melee or ranged request and swings when the
// cooldown allows it.
func (s *Session) processAttack(req Request) {
	if !s.owner.IsAlive() {
		s.abort(false)
		return
	}
	target := s.deps.World.FindByID(req.TargetID)
	if target == nil {
		s.abort(false)
		return
	}

	now := s.now()
	pos := s.owner.Pos()
	claimed := req.point()
	if s.owner.Kind == world.KindPlayer &&
		world.Distance(pos, target.Pos()) > s.owner.AttackRange &&
		now >= s.cooldownUntil &&
		world.Distance(pos, claimed) < s.deps.Config.DesyncTolerance {
		// 客戶端位置不同步：以客戶端座標為準重新開始攻擊循環
		s.log.Debug("attack position desync",
			zap.Uint32("target", target.ID),
			zap.Int32("x", claimed.X), zap.Int32("y", claimed.Y))
		s.deps.World.MoveTo(s.owner, claimed)
		s.deps.Notify.BroadcastToScreen(s.owner, Position{ID: s.owner.ID, X: claimed.X, Y: claimed.Y}, true)
		s.targetID = target.ID
		s.nextTrigger = now + s.owner.AttackSpeed
		s.cooldownUntil = s.nextTrigger
		s.transition(evAttack, StateAttacking)
		return
	}

	if !s.isValidTarget(target) || !s.isInAttackRange(target) {
		s.abort(false)
		return
	}
	s.targetID = target.ID
	if now < s.cooldownUntil {
		if s.State() != StateAttacking {
			s.nextTrigger = s.cooldownUntil
			s.transition(evAttack, StateAttacking)
		}
		return
	}
	s.canceled = false

	if s.isContestMap() && req.TargetID != s.owner.ID && !s.passesContestGate(req.TargetID, s.deps.Contest.StakeLevel) {
		s.abort(false)
		return
	}

	s.petAssist(target)
	s.launchAttack()
}

// launchAttack swings at the current target, or fires the weapon's proc
// skill instead when it triggers.
func (s *Session) launchAttack() {
	target := s.deps.World.FindByID(s.targetID)
	if !s.owner.IsAlive() || target == nil || !s.isValidTarget(target) || !s.isInAttackRange(target) {
		s.abort(false)
		return
	}

	if s.owner.HasEquipment() {
		if def := s.weaponSkill(); def != nil {
			s.setSkill(def)
			s.location = target.Pos()
			s.launchSkill()
			return
		}
	}

	now := s.now()
	s.nextTrigger = now + s.meleeCooldown()
	s.cooldownUntil = s.nextTrigger
	s.transition(evAttack, StateAttacking)

	shoot := s.owner.WeaponType() == world.WeaponTypeBow
	var dmg uint32
	if shoot {
		if !s.consumeAmmo(1) {
			s.abort(false)
			return
		}
		dmg = s.deps.Damage.BowDamage(s.owner, target, nil)
	} else {
		dmg = s.deps.Damage.PhysicalDamage(s.owner, target, nil)
	}

	if gained := s.routeExperience(s.expGain(target, dmg)); gained > 0 {
		s.GrantProficiencyExperience(s.owner.WeaponType(), gained)
	}
	target.ReceiveDamage(dmg)

	tp := target.Pos()
	s.deps.Notify.BroadcastToScreen(s.owner, Attack{
		AttackerID: s.owner.ID,
		TargetID:   target.ID,
		X:          tp.X,
		Y:          tp.Y,
		Shoot:      shoot,
		Damage:     dmg,
	}, true)

	if !target.IsAlive() {
		s.resolveDeath(target, killValueMelee)
	}
}

// weaponSkill returns the proc skill of the right hand, then the left hand.
// Missing items, unmapped weapons and unknown skills all mean no proc.
func (s *Session) weaponSkill() *data.SkillDef {
	for _, slot := range [...]world.EquipSlot{world.SlotWeaponR, world.SlotWeaponL} {
		it, ok := s.owner.EquippedItem(slot)
		if !ok {
			continue
		}
		skillID, ok := s.deps.WeaponSkills.SkillFor(it.Subtype())
		if !ok {
			continue
		}
		rec, ok := s.skills.get(skillID)
		if !ok {
			continue
		}
		def := s.deps.Repo.SkillDefinition(rec.ID, rec.Level)
		if def == nil {
			s.log.Debug("weapon skill definition missing",
				zap.Uint16("skill", rec.ID), zap.Uint16("level", rec.Level))
			continue
		}
		if s.deps.Dice.PercentSuccess(def.Percent) {
			return def
		}
	}
	return nil
}
