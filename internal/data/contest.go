package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ContestTable holds the level gates of contest-map practice targets:
// scarecrows for skills, stakes for melee. Keyed by static object mesh.
type ContestTable struct {
	scarecrows map[uint32]uint8
	stakes     map[uint32]uint8
}

type contestEntry struct {
	Mesh  uint32 `yaml:"mesh"`
	Level uint8  `yaml:"level"`
}

type contestFile struct {
	Scarecrows []contestEntry `yaml:"scarecrows"`
	Stakes     []contestEntry `yaml:"stakes"`
}

// NewContestTable builds a table from mesh → level gate maps.
func NewContestTable(scarecrows, stakes map[uint32]uint8) *ContestTable {
	t := &ContestTable{
		scarecrows: make(map[uint32]uint8, len(scarecrows)),
		stakes:     make(map[uint32]uint8, len(stakes)),
	}
	for k, v := range scarecrows {
		t.scarecrows[k] = v
	}
	for k, v := range stakes {
		t.stakes[k] = v
	}
	return t
}

// LoadContestTable loads contest gates from YAML.
func LoadContestTable(path string) (*ContestTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read contest list: %w", err)
	}
	var f contestFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse contest list: %w", err)
	}
	t := &ContestTable{
		scarecrows: make(map[uint32]uint8, len(f.Scarecrows)),
		stakes:     make(map[uint32]uint8, len(f.Stakes)),
	}
	for _, e := range f.Scarecrows {
		t.scarecrows[e.Mesh] = e.Level
	}
	for _, e := range f.Stakes {
		t.stakes[e.Mesh] = e.Level
	}
	return t, nil
}

// ScarecrowLevel returns the level gate of a scarecrow mesh.
func (t *ContestTable) ScarecrowLevel(mesh uint32) (uint8, bool) {
	if t == nil {
		return 0, false
	}
	l, ok := t.scarecrows[mesh]
	return l, ok
}

// StakeLevel returns the level gate of a stake mesh.
func (t *ContestTable) StakeLevel(mesh uint32) (uint8, bool) {
	if t == nil {
		return 0, false
	}
	l, ok := t.stakes[mesh]
	return l, ok
}
