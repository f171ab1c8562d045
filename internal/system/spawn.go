package system

import (
	"time"

	"go.uber.org/zap"

	"github.com/l1jgo/battlecore/internal/combat"
	"github.com/l1jgo/battlecore/internal/core/event"
	coresys "github.com/l1jgo/battlecore/internal/core/system"
	"github.com/l1jgo/battlecore/internal/data"
	"github.com/l1jgo/battlecore/internal/world"
)

const (
	// 怪物物件 ID 起點，避開角色序號與固定建築
	monsterIDBase uint32 = 400_000_000
	// 建築被打倒後重新豎起的秒數
	staticReviveSecs = 10
)

type spawnPoint struct {
	mapID       uint32
	pos         world.Point
	respawnSecs int
}

// SpawnSystem places monsters and statics from the spawn list and revives
// them at their spawn point after death. Flow: EntityKilled → revive timer
// → Revive + Spawn broadcast. Phase 3 (PostUpdate).
type SpawnSystem struct {
	world    *world.State
	clock    *world.Clock
	monsters *data.MonsterTable
	notify   combat.Notifier
	dice     combat.Dice
	log      *zap.Logger

	nextID  uint32
	points  map[uint32]spawnPoint
	pending map[uint32]int64 // id → 重生時間
}

func NewSpawnSystem(ws *world.State, clock *world.Clock, monsters *data.MonsterTable, notify combat.Notifier, dice combat.Dice, log *zap.Logger) *SpawnSystem {
	return &SpawnSystem{
		world:    ws,
		clock:    clock,
		monsters: monsters,
		notify:   notify,
		dice:     dice,
		log:      log,
		nextID:   monsterIDBase,
		points:   make(map[uint32]spawnPoint),
		pending:  make(map[uint32]int64),
	}
}

func (s *SpawnSystem) Phase() coresys.Phase { return coresys.PhasePostUpdate }

// Subscribe hooks the system onto kill events.
func (s *SpawnSystem) Subscribe(bus *event.Bus) {
	event.Subscribe(bus, s.onKilled)
}

// Populate adds every static and spawn-list monster to the world.
func (s *SpawnSystem) Populate(list *data.SpawnList) (monsters, statics int) {
	for _, e := range list.Statics {
		c := world.NewCombatant(e.ID, world.KindStatic, e.Name, e.MapID,
			world.Point{X: e.X, Y: e.Y}, world.Vitals{Life: e.Life, MaxLife: e.Life})
		c.Level = e.Level
		c.SetLookface(e.Lookface)
		c.Static = &world.StaticExt{Mesh: e.Mesh}
		s.world.Add(c)
		s.points[c.ID] = spawnPoint{mapID: e.MapID, pos: c.Pos(), respawnSecs: staticReviveSecs}
		statics++
	}
	for _, e := range list.Spawns {
		tmpl := s.monsters.Get(e.MonsterID)
		if tmpl == nil {
			s.log.Warn("出生點怪物不存在", zap.Uint32("monster", e.MonsterID))
			continue
		}
		for i := 0; i < e.Count; i++ {
			pos := world.Point{X: e.X + s.offset(e.Random), Y: e.Y + s.offset(e.Random)}
			s.nextID++
			c := newMonster(s.nextID, tmpl, e.MapID, pos)
			s.world.Add(c)
			s.points[c.ID] = spawnPoint{mapID: e.MapID, pos: pos, respawnSecs: e.RespawnSecs}
			monsters++
		}
	}
	return monsters, statics
}

func newMonster(id uint32, tmpl *data.MonsterTemplate, mapID uint32, pos world.Point) *world.Combatant {
	c := world.NewCombatant(id, world.KindMonster, tmpl.Name, mapID, pos,
		world.Vitals{Life: tmpl.Life, MaxLife: tmpl.Life})
	c.Level = tmpl.Level
	c.AttackRange = tmpl.AttackRange
	c.AttackSpeed = tmpl.AttackSpeed
	c.SetLookface(tmpl.Lookface)
	c.Monster = &world.MonsterExt{TemplateID: tmpl.ID, AttackMode: tmpl.AttackMode}
	return c
}

func (s *SpawnSystem) offset(r int32) int32 {
	if r <= 0 {
		return 0
	}
	return int32(s.dice.Intn(int(2*r+1))) - r
}

func (s *SpawnSystem) onKilled(e event.EntityKilled) {
	p, ok := s.points[e.VictimID]
	if !ok || p.respawnSecs <= 0 {
		return
	}
	s.pending[e.VictimID] = s.clock.Now() + int64(p.respawnSecs)*1000
}

func (s *SpawnSystem) Update(_ time.Duration) {
	now := s.clock.Now()
	for id, at := range s.pending {
		if now < at {
			continue
		}
		delete(s.pending, id)
		s.revive(id)
	}
}

func (s *SpawnSystem) revive(id uint32) {
	c := s.world.FindByID(id)
	if c == nil || c.IsAlive() {
		return
	}
	c.Revive()
	s.world.MoveTo(c, s.points[id].pos)
	pos := c.Pos()
	s.notify.BroadcastToScreen(c, combat.Spawn{
		ID:       c.ID,
		Name:     c.Name,
		Lookface: c.Lookface(),
		X:        pos.X,
		Y:        pos.Y,
		Life:     c.Life(),
		Effect:   true,
	}, false)
	s.log.Debug("重生", zap.Uint32("combatant", id), zap.Stringer("kind", c.Kind))
}

// Pending returns how many entities wait for revival.
func (s *SpawnSystem) Pending() int { return len(s.pending) }
