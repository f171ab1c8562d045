package combat

import (
	"github.com/l1jgo/battlecore/internal/data"
	"github.com/l1jgo/battlecore/internal/world"
)

// 主動攻擊型怪物
const monsterHostile = 3

// IsValidTarget reports whether the owner may hurt target.
func (s *Session) IsValidTarget(target *world.Combatant) bool {
	return s.isValidTarget(target)
}

func (s *Session) isValidTarget(target *world.Combatant) bool {
	if target == nil || target.ID == s.owner.ID || !target.IsAlive() {
		return false
	}
	if target.HasEffect(world.StatusReviveProtect) {
		return false
	}

	switch target.Kind {
	case world.KindPet:
		if target.Pet == nil || target.Pet.OwnerID == s.owner.ID {
			return false
		}
		// 變身成衛兵時只能打閃藍／黑名玩家的寵物
		if s.owner.Lookface() == guardLookface {
			master := s.deps.World.FindByID(target.Pet.OwnerID)
			if master == nil || !(master.HasEffect(world.StatusBlue) || master.HasEffect(world.StatusBlack)) {
				return false
			}
		}
		return true

	case world.KindPlayer:
		if !s.deps.World.IsPvpEnabled(target.MapID) {
			return false
		}
		switch s.owner.PkMode() {
		case world.PkModePeace:
			return false
		case world.PkModeCapture:
			return target.HasEffect(world.StatusBlue) || target.HasEffect(world.StatusBlack)
		case world.PkModeTeam:
			if s.owner.Player == nil {
				return true
			}
			if team := s.deps.World.TeamOf(s.owner); team.Has(target.ID) {
				return false
			}
			guild := s.owner.Player.GuildID
			return guild == 0 || target.Player == nil || target.Player.GuildID != guild
		}
		return true

	case world.KindMonster:
		if target.Monster == nil {
			return true
		}
		switch s.owner.Kind {
		case world.KindPlayer:
			mode := s.owner.PkMode()
			return target.Monster.AttackMode == monsterHostile || mode == world.PkModeOpen || mode == world.PkModeTeam
		case world.KindMonster:
			return s.owner.Monster == nil || s.owner.Monster.AttackMode != target.Monster.AttackMode
		}
		return true

	case world.KindStatic:
		if target.ID == s.deps.Config.ProtectedStaticID && s.owner.Player != nil {
			guild := s.owner.Player.GuildID
			if guild != 0 && guild == s.deps.World.GuildWarWinner() {
				return false
			}
		}
		return true
	}
	return true
}

// isInAttackRange 普攻距離：格子距離不得超過攻擊範圍。
func (s *Session) isInAttackRange(target *world.Combatant) bool {
	if target == nil {
		return false
	}
	return world.Distance(s.owner.Pos(), target.Pos()) <= s.owner.AttackRange
}

func (s *Session) isInSkillRange(target *world.Combatant, def *data.SkillDef) bool {
	if target == nil || def == nil {
		return false
	}
	return world.Distance(s.owner.Pos(), target.Pos()) <= def.Distance
}
