package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// MonsterTemplate is a monster type used for spawns, pets and transforms.
type MonsterTemplate struct {
	ID          uint32 `yaml:"id"`
	Name        string `yaml:"name"`
	Lookface    uint32 `yaml:"lookface"`
	Level       uint8  `yaml:"level"`
	Life        int32  `yaml:"life"`
	AttackMode  uint8  `yaml:"attack_mode"` // 3 = 主動攻擊
	AttackRange int32  `yaml:"attack_range"`
	AttackSpeed int64  `yaml:"attack_speed"`
}

// MonsterTable holds all monster templates indexed by ID.
type MonsterTable struct {
	monsters map[uint32]*MonsterTemplate
}

// Get returns a template by ID, or nil if not found.
func (t *MonsterTable) Get(id uint32) *MonsterTemplate {
	return t.monsters[id]
}

// Count returns total loaded templates.
func (t *MonsterTable) Count() int {
	return len(t.monsters)
}

type monsterListFile struct {
	Monsters []MonsterTemplate `yaml:"monsters"`
}

// LoadMonsterTable loads monster templates from YAML.
func LoadMonsterTable(path string) (*MonsterTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read monsters: %w", err)
	}
	var f monsterListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse monsters: %w", err)
	}
	t := &MonsterTable{monsters: make(map[uint32]*MonsterTemplate, len(f.Monsters))}
	for i := range f.Monsters {
		m := &f.Monsters[i]
		if m.AttackRange == 0 {
			m.AttackRange = 1
		}
		if m.AttackSpeed == 0 {
			m.AttackSpeed = 1000
		}
		t.monsters[m.ID] = m
	}
	return t, nil
}
