package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SpawnEntry defines where and how many monsters to spawn.
type SpawnEntry struct {
	MonsterID   uint32 `yaml:"monster_id"`
	MapID       uint32 `yaml:"map_id"`
	X           int32  `yaml:"x"`
	Y           int32  `yaml:"y"`
	Count       int    `yaml:"count"`
	Random      int32  `yaml:"random"`       // 出生點隨機偏移格數
	RespawnSecs int    `yaml:"respawn_secs"` // 0 = 不重生
}

// StaticEntry is a fixed attackable structure: guild poles, scarecrows
// and stakes. Its ID is fixed so map rules can name it.
type StaticEntry struct {
	ID       uint32 `yaml:"id"`
	Name     string `yaml:"name"`
	Mesh     uint32 `yaml:"mesh"`
	MapID    uint32 `yaml:"map_id"`
	X        int32  `yaml:"x"`
	Y        int32  `yaml:"y"`
	Level    uint8  `yaml:"level"`
	Life     int32  `yaml:"life"`
	Lookface uint32 `yaml:"lookface"`
}

// SpawnList is the whole spawn_list.yaml document.
type SpawnList struct {
	Spawns  []SpawnEntry  `yaml:"spawns"`
	Statics []StaticEntry `yaml:"statics"`
}

// LoadSpawnList loads spawn entries and statics from YAML. Entries that
// name an unknown monster template are rejected.
func LoadSpawnList(path string, monsters *MonsterTable) (*SpawnList, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read spawn_list: %w", err)
	}
	var f SpawnList
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse spawn_list: %w", err)
	}
	for i, e := range f.Spawns {
		if monsters.Get(e.MonsterID) == nil {
			return nil, fmt.Errorf("spawn %d: unknown monster %d", i, e.MonsterID)
		}
		if e.Count <= 0 {
			f.Spawns[i].Count = 1
		}
	}
	seen := make(map[uint32]bool, len(f.Statics))
	for _, s := range f.Statics {
		if seen[s.ID] {
			return nil, fmt.Errorf("static %d: duplicate id", s.ID)
		}
		seen[s.ID] = true
	}
	return &f, nil
}
