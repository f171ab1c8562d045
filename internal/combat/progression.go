package combat

import (
	"math"

	"go.uber.org/zap"

	"github.com/l1jgo/battlecore/internal/data"
)

func addExp(cur uint32, amount uint64) uint32 {
	sum := uint64(cur) + amount
	if sum > math.MaxUint32 {
		return math.MaxUint32
	}
	return uint32(sum)
}

// ==================== 技能經驗 ====================

// GrantSkillExperience adds experience to a known skill and levels it up
// while the current level's requirement is exceeded. A pending demotion is
// restored once the next level passes half of it. The record is saved on
// every change.
func (s *Session) GrantSkillExperience(id uint16, amount uint64) {
	if amount == 0 {
		return
	}
	repo := s.deps.Repo
	leveled, changed := false, false
	rec, ok := s.skills.update(id, func(r *SkillRecord) bool {
		cur := repo.SkillDefinition(r.ID, r.Level)
		if cur != nil && cur.NeedLevel > 0 && s.owner.Level < cur.NeedLevel {
			return false
		}
		changed = true
		r.Experience = addExp(r.Experience, amount)
		for cur != nil && cur.NeedExp > 0 && r.Experience > cur.NeedExp {
			next := s.nextSkillLevel(r)
			if next == nil {
				break
			}
			r.Experience -= cur.NeedExp
			if r.PreviousLevel != 0 && next.Level >= r.PreviousLevel {
				r.PreviousLevel = 0
			}
			r.Level = next.Level
			leveled = true
			cur = next
		}
		return true
	})
	if !ok || !changed {
		return
	}
	s.deps.Repo.SaveSkill(s.owner.ID, rec)
	s.deps.Notify.SendTo(s.owner, SkillInfo{Record: rec})
	if leveled {
		s.log.Debug("skill leveled", zap.Uint16("skill", rec.ID), zap.Uint16("level", rec.Level))
		s.deps.observer().SkillLeveled(s.owner, rec)
	}
}

// nextSkillLevel 下一級定義；降級保護中且已過一半時直接回到原等級，查不到就退回 +1。
func (s *Session) nextSkillLevel(r *SkillRecord) *data.SkillDef {
	step := r.Level + 1
	target := step
	if r.PreviousLevel != 0 && r.PreviousLevel/2 < step {
		target = max(r.PreviousLevel, step)
	}
	def := s.deps.Repo.SkillDefinition(r.ID, target)
	if def == nil && target != step {
		def = s.deps.Repo.SkillDefinition(r.ID, step)
	}
	return def
}

// ==================== 熟練度經驗 ====================

// GrantProficiencyExperience adds weapon proficiency experience. An unknown
// weapon type starts at level 1. Level never exceeds the cap.
func (s *Session) GrantProficiencyExperience(id uint16, amount uint64) {
	if amount == 0 {
		return
	}
	if !s.profs.contains(id) {
		s.AddOrUpdateProficiency(id, 1, 0)
		return
	}
	leveled, changed := false, false
	rec, _ := s.profs.update(id, func(r *ProficiencyRecord) bool {
		if r.Level >= data.MaxProficiencyLevel {
			return false
		}
		changed = true
		r.Experience = addExp(r.Experience, amount)
		for r.Level < data.MaxProficiencyLevel {
			need, ok := data.ProficiencyExpRequired(r.Level)
			if !ok || r.Experience < need {
				break
			}
			r.Experience -= need
			r.Level++
			leveled = true
			if r.PreviousLevel != 0 && r.PreviousLevel/2 < r.Level {
				r.Level = min(max(r.PreviousLevel, r.Level), data.MaxProficiencyLevel)
				r.PreviousLevel = 0
			}
		}
		return true
	})
	if !changed {
		return
	}
	s.deps.Repo.SaveProficiency(s.owner.ID, rec)
	s.deps.Notify.SendTo(s.owner, ProficiencyInfo{Record: rec})
	if leveled {
		s.deps.observer().ProficiencyLeveled(s.owner, rec)
	}
}

// ==================== 技能管理 ====================

// AddOrUpdateSkill sets a skill's level and experience, creating it when
// missing. A pending demotion is kept.
func (s *Session) AddOrUpdateSkill(id, level uint16, exp uint32) {
	rec, ok := s.skills.update(id, func(r *SkillRecord) bool {
		r.Level, r.Experience = level, exp
		return true
	})
	if !ok {
		rec = SkillRecord{ID: id, Level: level, Experience: exp}
		s.skills.set(id, rec)
	}
	s.deps.Repo.SaveSkill(s.owner.ID, rec)
	s.deps.Notify.SendTo(s.owner, SkillInfo{Record: rec})
}

// AddOrUpdateProficiency sets a proficiency, creating it when missing.
func (s *Session) AddOrUpdateProficiency(id, level uint16, exp uint32) {
	level = min(level, data.MaxProficiencyLevel)
	rec, ok := s.profs.update(id, func(r *ProficiencyRecord) bool {
		r.Level, r.Experience = level, exp
		return true
	})
	if !ok {
		rec = ProficiencyRecord{ID: id, Level: level, Experience: exp}
		s.profs.set(id, rec)
	}
	s.deps.Repo.SaveProficiency(s.owner.ID, rec)
	s.deps.Notify.SendTo(s.owner, ProficiencyInfo{Record: rec})
}

// LearnSkill teaches a skill at level 0 unless it is already known.
func (s *Session) LearnSkill(id uint16) bool {
	if s.skills.contains(id) {
		return false
	}
	s.AddOrUpdateSkill(id, 0, 0)
	return true
}

// ForgetSkill removes a skill and tells the owner's client.
func (s *Session) ForgetSkill(id uint16) bool {
	if _, ok := s.skills.remove(id); !ok {
		return false
	}
	s.deps.Notify.SendTo(s.owner, DropMagic{OwnerID: s.owner.ID, SkillID: id})
	s.deps.Repo.DeleteSkill(s.owner.ID, id)
	return true
}

func (s *Session) KnowsSkill(id uint16) bool {
	return s.skills.contains(id)
}

// KnowsSkillLevel reports whether the skill is known at level or higher.
func (s *Session) KnowsSkillLevel(id, level uint16) bool {
	r, ok := s.skills.get(id)
	return ok && r.Level >= level
}

// CheckProficiency reports whether the proficiency is at level or higher.
func (s *Session) CheckProficiency(id, level uint16) bool {
	r, ok := s.profs.get(id)
	return ok && r.Level >= level
}

// Skill returns one known skill record.
func (s *Session) Skill(id uint16) (SkillRecord, bool) {
	return s.skills.get(id)
}

// Proficiency returns one proficiency record.
func (s *Session) Proficiency(id uint16) (ProficiencyRecord, bool) {
	return s.profs.get(id)
}

// Skills returns every known skill ordered by id.
func (s *Session) Skills() []SkillRecord { return s.skills.snapshot() }

// Proficiencies returns every proficiency ordered by id.
func (s *Session) Proficiencies() []ProficiencyRecord { return s.profs.snapshot() }

// Save persists every record.
func (s *Session) Save() {
	for _, r := range s.skills.snapshot() {
		s.deps.Repo.SaveSkill(s.owner.ID, r)
	}
	for _, r := range s.profs.snapshot() {
		s.deps.Repo.SaveProficiency(s.owner.ID, r)
	}
}
