package combat

import (
	"github.com/l1jgo/battlecore/internal/data"
	"github.com/l1jgo/battlecore/internal/world"
)

// usesAmmo 弓箭技能是否消耗箭袋耐久。
func usesAmmo(def *data.SkillDef) bool {
	return def.WeaponSubtype == world.WeaponTypeBow && def.UseItem == world.ArrowSubtype && def.UseItemNum > 0
}

// HasCosts reports whether the owner can pay for def right now.
func (s *Session) HasCosts(def *data.SkillDef) bool {
	if def == nil {
		return false
	}
	if s.isContestMap() || s.owner.Kind == world.KindPet {
		return true
	}
	if usesAmmo(def) {
		it, ok := s.owner.EquippedItem(world.SlotWeaponL)
		if !ok || it.Durability < def.UseItemNum {
			return false
		}
	}
	if def.UseXP && !s.owner.HasEffect(world.StatusXPStart) {
		return false
	}
	return s.owner.Stamina() >= def.UseStamina && s.owner.Mana() >= def.UseMP
}

// takeCosts charges def. Nothing is debited unless every cost can be paid.
func (s *Session) takeCosts(def *data.SkillDef) bool {
	if def == nil {
		return false
	}
	if s.isContestMap() || s.owner.Kind == world.KindPet {
		return true
	}
	if !s.HasCosts(def) {
		return false
	}
	if !s.owner.Spend(def.UseMP, def.UseStamina) {
		return false
	}
	if def.UseXP {
		s.owner.RemoveEffect(world.StatusXPStart)
	}
	if usesAmmo(def) {
		s.consumeAmmo(def.UseItemNum)
	}
	return true
}

// consumeAmmo takes n durability from the quiver. A depleted quiver is
// unequipped and deleted.
func (s *Session) consumeAmmo(n int32) bool {
	it, depleted, ok := s.owner.ConsumeDurability(world.SlotWeaponL, n)
	if !ok {
		return false
	}
	s.deps.Notify.SendTo(s.owner, ItemUpdate{Item: it})
	if depleted {
		s.deps.Notify.SendTo(s.owner, ItemDelete{UID: it.UID})
		s.deps.Repo.DeleteItem(s.owner.ID, it.UID)
	} else {
		s.deps.Repo.SaveItem(s.owner.ID, it)
	}
	return true
}
