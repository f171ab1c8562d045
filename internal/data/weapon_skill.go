package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// WeaponSkillTable maps a weapon subtype to the skill it may proc on a swing.
type WeaponSkillTable struct {
	byWeapon map[uint16]uint16
	skills   map[uint16]struct{}
}

type weaponSkillEntry struct {
	WeaponType uint16 `yaml:"weapon_type"`
	SkillID    uint16 `yaml:"skill_id"`
}

type weaponSkillFile struct {
	WeaponSkills []weaponSkillEntry `yaml:"weapon_skills"`
}

// NewWeaponSkillTable builds a table from (weapon type → skill id) pairs.
func NewWeaponSkillTable(pairs map[uint16]uint16) *WeaponSkillTable {
	t := &WeaponSkillTable{
		byWeapon: make(map[uint16]uint16, len(pairs)),
		skills:   make(map[uint16]struct{}, len(pairs)),
	}
	for w, s := range pairs {
		t.byWeapon[w] = s
		t.skills[s] = struct{}{}
	}
	return t
}

// LoadWeaponSkillTable loads weapon proc mappings from YAML.
func LoadWeaponSkillTable(path string) (*WeaponSkillTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read weapon skills: %w", err)
	}
	var f weaponSkillFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse weapon skills: %w", err)
	}
	pairs := make(map[uint16]uint16, len(f.WeaponSkills))
	for _, e := range f.WeaponSkills {
		if _, dup := pairs[e.WeaponType]; dup {
			return nil, fmt.Errorf("weapon type %d: duplicate entry", e.WeaponType)
		}
		pairs[e.WeaponType] = e.SkillID
	}
	return NewWeaponSkillTable(pairs), nil
}

// SkillFor returns the proc skill of a weapon subtype.
func (t *WeaponSkillTable) SkillFor(weaponType uint16) (uint16, bool) {
	if t == nil {
		return 0, false
	}
	s, ok := t.byWeapon[weaponType]
	return s, ok
}

// IsWeaponSkill reports whether skillID is procced by some weapon.
func (t *WeaponSkillTable) IsWeaponSkill(skillID uint16) bool {
	if t == nil {
		return false
	}
	_, ok := t.skills[skillID]
	return ok
}

func (t *WeaponSkillTable) Count() int {
	return len(t.byWeapon)
}
