package combat

import (
	"github.com/l1jgo/battlecore/internal/data"
	"github.com/l1jgo/battlecore/internal/world"
)

// guardLookface 巡邏衛兵的外觀，用於變身後攻擊寵物的限制。
const guardLookface = 900

const msPerSecond = 1000

// routeExperience grants character experience for damage dealt: players
// keep it, pets pass it to their owner. Returns the amount for skill
// experience, which only players earn.
func (s *Session) routeExperience(gain uint64) uint64 {
	switch s.owner.Kind {
	case world.KindPlayer:
		s.owner.GainExperience(gain)
		return gain
	case world.KindPet:
		if s.owner.Pet != nil {
			if master := s.deps.World.FindByID(s.owner.Pet.OwnerID); master != nil {
				master.GainExperience(gain)
			}
		}
	}
	return 0
}

func (s *Session) expGain(target *world.Combatant, dmg uint32) uint64 {
	if s.owner.Kind != world.KindPlayer && s.owner.Kind != world.KindPet {
		return 0
	}
	return s.deps.Damage.ExperienceGain(s.owner, target, dmg)
}

// ==================== 單體 ====================

func (s *Session) launchAttackSkill(def *data.SkillDef) {
	target := s.deps.World.FindByID(s.targetID)
	if !s.isInSkillRange(target, def) || !s.isValidTarget(target) {
		s.abort(false)
		return
	}
	s.effect.Data = target.ID
	var dmg uint32
	if def.WeaponSubtype == world.WeaponTypeBow {
		dmg = s.deps.Damage.BowDamage(s.owner, target, def)
	} else {
		dmg = s.deps.Damage.SkillDamage(s.owner, target, def, def.Percent < 100)
	}
	s.effect.addTarget(target.ID, dmg)
	if gained := s.routeExperience(s.expGain(target, dmg)); gained > 0 {
		s.GrantSkillExperience(def.ID, gained)
	}
	target.ReceiveDamage(dmg)
}

func (s *Session) launchStatusAttack(def *data.SkillDef) {
	target := s.deps.World.FindByID(s.targetID)
	if !s.isInSkillRange(target, def) || !s.isValidTarget(target) {
		s.abort(false)
		return
	}
	s.effect.Data = target.ID
	dmg := s.deps.Damage.PhysicalDamage(s.owner, target, def)
	s.effect.addTarget(target.ID, dmg)
	s.routeExperience(s.expGain(target, dmg))
	if s.owner.Kind == world.KindPlayer {
		s.GrantSkillExperience(def.ID, 1)
	}
	target.ReceiveDamage(dmg)
}

// ==================== 補血／補魔 ====================

// launchHeal heals the target and, for multi heals, every visible team
// member and the leader. Each recipient is healed once; skill experience
// is the missing life restored, capped at power per recipient.
func (s *Session) launchHeal(def *data.SkillDef) {
	target := s.owner
	if def.Target == data.TargetBuffPlayer {
		target = s.deps.World.FindByID(s.targetID)
	}
	if !s.isInSkillRange(target, def) {
		s.abort(false)
		return
	}
	s.effect.Data = target.ID

	var exp uint64
	seen := make(map[uint32]struct{})
	heal := func(c *world.Combatant) {
		if _, dup := seen[c.ID]; dup || !c.IsAlive() {
			return
		}
		seen[c.ID] = struct{}{}
		s.effect.addTarget(c.ID, uint32(max(def.Power, 0)))
		if missing := c.MaxLife() - c.Life(); missing > 0 && def.Power > 0 {
			exp += uint64(min(missing, def.Power))
		}
		c.Heal(def.Power)
	}
	heal(target)

	if def.Multi && s.owner.Kind == world.KindPlayer {
		if team := s.deps.World.TeamOf(s.owner); team != nil {
			origin := s.owner.Pos()
			for _, id := range team.Members {
				if id == target.ID {
					continue
				}
				m := s.deps.World.FindByID(id)
				if m != nil && m.MapID == s.owner.MapID && s.deps.World.InScreen(origin, m.Pos()) {
					heal(m)
				}
			}
			if team.LeaderID != target.ID {
				leader := s.deps.World.FindByID(team.LeaderID)
				if leader != nil && (leader.ID == s.owner.ID ||
					(leader.MapID == s.owner.MapID && s.deps.World.InScreen(origin, leader.Pos()))) {
					heal(leader)
				}
			}
		}
	}
	if s.owner.Kind == world.KindPlayer {
		s.GrantSkillExperience(def.ID, exp)
	}
}

func (s *Session) launchAddMana(def *data.SkillDef) {
	s.effect.Data = s.owner.ID
	s.effect.addTarget(s.owner.ID, uint32(max(def.Power, 0)))
	s.owner.AddMana(def.Power)
	if s.owner.Kind == world.KindPlayer && def.Power > 0 {
		s.GrantSkillExperience(def.ID, uint64(def.Power))
	}
}

// ==================== 狀態 ====================

func (s *Session) launchAttachStatus(def *data.SkillDef) {
	st := world.Status(def.Status)
	if (st == world.StatusCyclone || st == world.StatusSuperman) &&
		!s.owner.HasEffect(world.StatusSuperman) && !s.owner.HasEffect(world.StatusCyclone) {
		s.owner.ResetKOCount()
	}

	target := s.owner
	if def.Target == data.TargetBuffPlayer {
		target = s.deps.World.FindByID(s.targetID)
	}
	if !s.isInSkillRange(target, def) {
		s.abort(false)
		return
	}
	now := s.now()
	if !target.AddEffect(st, now+int64(def.StepSecs)*msPerSecond, def.Power%10000) {
		return
	}
	s.effect.Data = target.ID
	s.effect.addTarget(target.ID, 0)
	s.GrantSkillExperience(def.ID, 1)

	if def.ID == s.deps.Config.LuckySkillID && s.owner.Kind == world.KindPlayer {
		s.spreadLuck(now)
	}
}

// spreadLuck 幸運加持：附近閒置、非二轉的玩家進入吸收狀態並坐下。
func (s *Session) spreadLuck(now int64) {
	s.owner.StartLuckyTime(now)
	pos := s.owner.Pos()
	for _, p := range s.deps.World.EntitiesInScreen(s.owner) {
		if p.Kind != world.KindPlayer || p.ID == s.owner.ID || p.Player.RebornCount == 2 {
			continue
		}
		if world.Distance(pos, p.Pos()) > s.deps.Config.LuckyAbsorbRange {
			continue
		}
		if s.deps.Sessions != nil && s.deps.Sessions.IsActive(p.ID) {
			continue
		}
		p.AddEffect(world.StatusLuckAbsorb, now+s.deps.Config.LuckyAbsorbMS, 0)
		s.deps.Notify.BroadcastToScreen(p, Action{ID: p.ID, Kind: ActionSit}, true)
		p.StartLuckyTime(now)
	}
}

// launchDetachStatus 復活術：目標必須是玩家。
func (s *Session) launchDetachStatus(def *data.SkillDef) {
	target := s.deps.World.FindByID(s.targetID)
	if target == nil || target.Kind != world.KindPlayer || !s.isInSkillRange(target, def) {
		s.abort(false)
		return
	}
	s.effect.Data = target.ID
	s.effect.addTarget(target.ID, 0)
	if !target.IsAlive() {
		target.Revive()
		if ms := s.deps.Config.ReviveProtectMS; ms > 0 {
			target.AddEffect(world.StatusReviveProtect, s.now()+ms, 0)
		}
		s.deps.Notify.BroadcastToScreen(target, Action{ID: target.ID, Kind: ActionRevive}, true)
	}
}

// ==================== 範圍 ====================

// launchArea handles both round (Euclidean) and square (grid) areas.
func (s *Session) launchArea(def *data.SkillDef) {
	var center world.Point
	if def.Target == data.TargetPlayer {
		target := s.deps.World.FindByID(s.targetID)
		if !s.isInSkillRange(target, def) {
			s.abort(false)
			return
		}
		center = target.Pos()
	} else {
		center = s.owner.Pos()
	}
	s.location = center
	s.effect.X, s.effect.Y = center.X, center.Y

	inside := func(p world.Point) bool {
		if def.Sort == data.SortSquare {
			return world.Distance(center, p) <= def.Range
		}
		return world.LineLength(center, p) <= float64(def.Range)
	}
	s.hitAll(def, inside, func(t *world.Combatant) uint32 {
		switch {
		case def.Target == data.TargetWeaponPassive:
			return s.deps.Damage.PhysicalDamage(s.owner, t, def)
		case def.WeaponSubtype == world.WeaponTypeBow:
			return s.deps.Damage.BowDamage(s.owner, t, def)
		default:
			return s.deps.Damage.SkillDamage(s.owner, t, def, true)
		}
	})
}

func (s *Session) launchLine(def *data.SkillDef) {
	s.effect.X, s.effect.Y = s.location.X, s.location.Y
	points := make(map[world.Point]struct{})
	for _, p := range LinePoints(s.owner.Pos(), s.location, def.Range) {
		points[p] = struct{}{}
	}
	s.hitAll(def, func(p world.Point) bool {
		_, ok := points[p]
		return ok
	}, func(t *world.Combatant) uint32 {
		return s.deps.Damage.PhysicalDamage(s.owner, t, def)
	})
}

func (s *Session) launchSector(def *data.SkillDef) {
	s.effect.X, s.effect.Y = s.location.X, s.location.Y
	from := s.owner.Pos()
	s.hitAll(def, func(p world.Point) bool {
		return InArc(from, s.location, p, def.Range)
	}, func(t *world.Combatant) uint32 {
		if def.WeaponSubtype == world.WeaponTypeBow {
			return s.deps.Damage.BowDamage(s.owner, t, def)
		}
		return s.deps.Damage.PhysicalDamage(s.owner, t, def)
	})
}

// hitAll damages every valid on-screen entity whose position passes inside.
// Experience is summed and granted once.
func (s *Session) hitAll(def *data.SkillDef, inside func(world.Point) bool, damage func(*world.Combatant) uint32) {
	var total uint64
	for _, t := range s.deps.World.EntitiesInScreen(s.owner) {
		if !inside(t.Pos()) || !s.isValidTarget(t) {
			continue
		}
		dmg := damage(t)
		s.effect.addTarget(t.ID, dmg)
		total += s.expGain(t, dmg)
		t.ReceiveDamage(dmg)
	}
	if total == 0 {
		return
	}
	if gained := s.routeExperience(total); gained > 0 {
		s.GrantSkillExperience(def.ID, gained)
	}
}

// ==================== 變身／召喚 ====================

func (s *Session) launchTransform(def *data.SkillDef) {
	tmpl := s.deps.Repo.MonsterTemplate(uint32(def.Power))
	if tmpl == nil {
		s.abort(false)
		return
	}
	until := s.now() + int64(def.StepSecs)*msPerSecond
	s.owner.SetDisguise(tmpl.Lookface, until)
	s.effect.Data = s.owner.ID
	s.effect.addTarget(s.owner.ID, 0)
	s.GrantSkillExperience(def.ID, 1)
	s.deps.Notify.BroadcastToScreen(s.owner, Transform{ID: s.owner.ID, Lookface: tmpl.Lookface, Until: until}, true)
}

// launchCallPet replaces the caster's pet with a fresh one from the template.
func (s *Session) launchCallPet(def *data.SkillDef) {
	if s.owner.Kind != world.KindPlayer {
		s.abort(false)
		return
	}
	tmpl := s.deps.Repo.MonsterTemplate(uint32(def.Power))
	if tmpl == nil {
		s.abort(false)
		return
	}
	if old := s.owner.PetID(); old != 0 {
		s.deps.World.Despawn(old)
	}
	pet := s.deps.World.SpawnPet(s.owner, world.PetSpec{
		TemplateID:  tmpl.ID,
		Name:        tmpl.Name,
		Lookface:    tmpl.Lookface,
		Level:       tmpl.Level,
		Life:        tmpl.Life,
		AttackRange: tmpl.AttackRange,
		AttackSpeed: tmpl.AttackSpeed,
	})
	if pet == nil {
		s.abort(false)
		return
	}
	pos := pet.Pos()
	s.deps.Notify.BroadcastToScreen(s.owner, Spawn{
		ID:       pet.ID,
		Name:     pet.Name,
		Lookface: pet.Lookface(),
		X:        pos.X,
		Y:        pos.Y,
		Life:     pet.Life(),
		Effect:   true,
	}, true)
	s.effect.Data = s.owner.ID
	s.effect.addTarget(s.owner.ID, 0)
	s.GrantSkillExperience(def.ID, 1)
}
