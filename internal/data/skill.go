package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Archetype 技能類型。數值沿用舊版 magictype 的 sort 欄位。
type Archetype uint8

const (
	SortAttack       Archetype = 1
	SortHealTarget   Archetype = 2
	SortSector       Archetype = 4
	SortArea         Archetype = 5
	SortAttachStatus Archetype = 6
	SortDetachStatus Archetype = 7
	SortSquare       Archetype = 8
	SortLine         Archetype = 14
	SortStatusAttack Archetype = 16
	SortTransform    Archetype = 19
	SortAddMana      Archetype = 20
	SortCallPet      Archetype = 23
)

var archetypeNames = map[Archetype]string{
	SortAttack:       "attack",
	SortHealTarget:   "heal_target",
	SortSector:       "sector",
	SortArea:         "area",
	SortAttachStatus: "attach_status",
	SortDetachStatus: "detach_status",
	SortSquare:       "square",
	SortLine:         "line",
	SortStatusAttack: "status_attack",
	SortTransform:    "transform",
	SortAddMana:      "add_mana",
	SortCallPet:      "call_pet",
}

func (a Archetype) String() string {
	if n, ok := archetypeNames[a]; ok {
		return n
	}
	return fmt.Sprintf("sort_%d", uint8(a))
}

// ParseArchetype maps a YAML name to an Archetype.
func ParseArchetype(name string) (Archetype, bool) {
	for a, n := range archetypeNames {
		if n == name {
			return a, true
		}
	}
	return 0, false
}

// TargetType 技能目標方式。
type TargetType uint8

const (
	TargetNone          TargetType = iota
	TargetPlayer                   // 指定目標實體
	TargetSelf                     // 施放者自身
	TargetBuffPlayer               // 增益指定對象
	TargetWeaponPassive            // 武器被動觸發
	TargetLocation                 // 指定地點
)

var targetTypeNames = map[string]TargetType{
	"":               TargetNone,
	"none":           TargetNone,
	"player":         TargetPlayer,
	"self":           TargetSelf,
	"buff_player":    TargetBuffPlayer,
	"weapon_passive": TargetWeaponPassive,
	"location":       TargetLocation,
}

// SkillDef is one immutable (id, level) skill definition.
type SkillDef struct {
	ID            uint16
	Level         uint16
	Name          string
	Sort          Archetype
	Target        TargetType
	Multi         bool
	Range         int32 // 範圍半徑 / 直線長度
	Distance      int32 // 施放距離
	Power         int32
	Percent       int   // 武器觸發機率
	StepSecs      int32 // 狀態持續秒數
	Status        uint8
	IntoneMS      int64
	DelayMS       int64
	NextMagic     uint16
	WeaponSubtype uint16
	UseMP         int32
	UseStamina    int32
	UseItem       uint16
	UseItemNum    int32
	UseXP         bool
	NeedLevel     uint8
	NeedExp       uint32
}

type skillKey struct {
	id    uint16
	level uint16
}

// SkillTable holds every skill definition keyed by (id, level).
type SkillTable struct {
	skills   map[skillKey]*SkillDef
	maxLevel map[uint16]uint16
}

// Get returns the definition for id at level, or nil.
func (t *SkillTable) Get(id, level uint16) *SkillDef {
	return t.skills[skillKey{id, level}]
}

// MaxLevel returns the highest defined level of a skill.
func (t *SkillTable) MaxLevel(id uint16) (uint16, bool) {
	l, ok := t.maxLevel[id]
	return l, ok
}

// Count returns total loaded (id, level) definitions.
func (t *SkillTable) Count() int {
	return len(t.skills)
}

// --- YAML loading ---

// SkillEntry is the YAML shape of one skill level. cmd/skillconv writes it.
type SkillEntry struct {
	ID            uint16 `yaml:"id"`
	Level         uint16 `yaml:"level"`
	Name          string `yaml:"name"`
	Sort          string `yaml:"sort"`
	Target        string `yaml:"target,omitempty"`
	Multi         bool   `yaml:"multi,omitempty"`
	Range         int32  `yaml:"range,omitempty"`
	Distance      int32  `yaml:"distance,omitempty"`
	Power         int32  `yaml:"power,omitempty"`
	Percent       int    `yaml:"percent,omitempty"`
	StepSecs      int32  `yaml:"step_secs,omitempty"`
	Status        uint8  `yaml:"status,omitempty"`
	IntoneMS      int64  `yaml:"intone_ms,omitempty"`
	DelayMS       int64  `yaml:"delay_ms,omitempty"`
	NextMagic     uint16 `yaml:"next_magic,omitempty"`
	WeaponSubtype uint16 `yaml:"weapon_subtype,omitempty"`
	UseMP         int32  `yaml:"use_mp,omitempty"`
	UseStamina    int32  `yaml:"use_stamina,omitempty"`
	UseItem       uint16 `yaml:"use_item,omitempty"`
	UseItemNum    int32  `yaml:"use_item_num,omitempty"`
	UseXP         bool   `yaml:"use_xp,omitempty"`
	NeedLevel     uint8  `yaml:"need_level,omitempty"`
	NeedExp       uint32 `yaml:"need_exp,omitempty"`
}

// SkillListFile is the top-level YAML document.
type SkillListFile struct {
	Skills []SkillEntry `yaml:"skills"`
}

// LoadSkillTable loads skill definitions from YAML.
func LoadSkillTable(path string) (*SkillTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read skills: %w", err)
	}
	var f SkillListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse skills: %w", err)
	}
	return NewSkillTable(f.Skills)
}

// NewSkillTable builds a table from already decoded entries.
func NewSkillTable(entries []SkillEntry) (*SkillTable, error) {
	t := &SkillTable{
		skills:   make(map[skillKey]*SkillDef, len(entries)),
		maxLevel: make(map[uint16]uint16),
	}
	for i := range entries {
		e := &entries[i]
		sort, ok := ParseArchetype(e.Sort)
		if !ok {
			return nil, fmt.Errorf("skill %d level %d: unknown sort %q", e.ID, e.Level, e.Sort)
		}
		target, ok := targetTypeNames[e.Target]
		if !ok {
			return nil, fmt.Errorf("skill %d level %d: unknown target %q", e.ID, e.Level, e.Target)
		}
		k := skillKey{e.ID, e.Level}
		if _, dup := t.skills[k]; dup {
			return nil, fmt.Errorf("skill %d level %d: duplicate entry", e.ID, e.Level)
		}
		t.skills[k] = &SkillDef{
			ID:            e.ID,
			Level:         e.Level,
			Name:          e.Name,
			Sort:          sort,
			Target:        target,
			Multi:         e.Multi,
			Range:         e.Range,
			Distance:      e.Distance,
			Power:         e.Power,
			Percent:       e.Percent,
			StepSecs:      e.StepSecs,
			Status:        e.Status,
			IntoneMS:      e.IntoneMS,
			DelayMS:       e.DelayMS,
			NextMagic:     e.NextMagic,
			WeaponSubtype: e.WeaponSubtype,
			UseMP:         e.UseMP,
			UseStamina:    e.UseStamina,
			UseItem:       e.UseItem,
			UseItemNum:    e.UseItemNum,
			UseXP:         e.UseXP,
			NeedLevel:     e.NeedLevel,
			NeedExp:       e.NeedExp,
		}
		if e.Level >= t.maxLevel[e.ID] {
			t.maxLevel[e.ID] = e.Level
		}
	}
	return t, nil
}
