package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// MapInfo holds the combat rules of a single map, loaded from map_list.yaml.
type MapInfo struct {
	MapID   uint32 `yaml:"map_id"`
	Name    string `yaml:"name"`
	Pvp     bool   `yaml:"pvp"`
	Contest bool   `yaml:"contest"` // 比武場：不扣消耗、限定稻草人／木樁
}

// MapTable provides per-map rule lookups. It satisfies world.MapRules.
type MapTable struct {
	maps map[uint32]*MapInfo
}

type mapListFile struct {
	Maps []MapInfo `yaml:"maps"`
}

// LoadMapTable loads map metadata from YAML.
func LoadMapTable(path string) (*MapTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read map list %s: %w", path, err)
	}
	var file mapListFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse map list: %w", err)
	}
	t := &MapTable{maps: make(map[uint32]*MapInfo, len(file.Maps))}
	for i := range file.Maps {
		m := &file.Maps[i]
		t.maps[m.MapID] = m
	}
	return t, nil
}

// Get returns metadata for a map, nil if unknown.
func (t *MapTable) Get(mapID uint32) *MapInfo {
	return t.maps[mapID]
}

// Count returns the number of loaded maps.
func (t *MapTable) Count() int {
	return len(t.maps)
}

// MarkContest flags extra maps as contest maps (from [combat] contest_map_ids).
// Unknown ids get a placeholder entry with PvP enabled.
func (t *MapTable) MarkContest(ids []uint32) {
	for _, id := range ids {
		m := t.maps[id]
		if m == nil {
			m = &MapInfo{MapID: id, Pvp: true}
			t.maps[id] = m
		}
		m.Contest = true
	}
}

// IsPvpEnabled reports whether players may attack each other on the map.
// Unknown maps are treated as safe.
func (t *MapTable) IsPvpEnabled(mapID uint32) bool {
	m := t.maps[mapID]
	return m != nil && m.Pvp
}

func (t *MapTable) IsContestMap(mapID uint32) bool {
	m := t.maps[mapID]
	return m != nil && m.Contest
}
