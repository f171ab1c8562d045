package system

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/l1jgo/battlecore/internal/combat"
	"github.com/l1jgo/battlecore/internal/config"
	"github.com/l1jgo/battlecore/internal/core/event"
	"github.com/l1jgo/battlecore/internal/data"
	"github.com/l1jgo/battlecore/internal/handler"
	"github.com/l1jgo/battlecore/internal/net"
	"github.com/l1jgo/battlecore/internal/net/packet"
	"github.com/l1jgo/battlecore/internal/persist"
	"github.com/l1jgo/battlecore/internal/world"
)

func TestInputSystemDispatchesAndDropsClosed(t *testing.T) {
	newCh := make(chan *net.Session, 4)
	store := net.NewSessionStore()
	reg := packet.NewRegistry(zap.NewNop())

	var got []byte
	reg.Register(packet.C_OPCODE_CHAT, []packet.SessionState{packet.StateConnected},
		func(_ any, r *packet.Reader) { got = append(got, r.ReadC()) })

	sys := NewInputSystem(newCh, reg, store, &handler.Deps{}, 2, zap.NewNop())
	assert.Equal(t, 0, int(sys.Phase()))

	sess := newTestSession(t, 7)
	newCh <- sess
	for i := byte(1); i <= 3; i++ {
		sess.InQueue <- []byte{packet.C_OPCODE_CHAT, i}
	}

	sys.Update(0)
	assert.Equal(t, 1, store.Count())
	assert.Equal(t, []byte{1, 2}, got, "at most maxPerTick packets per tick")

	sess.Close()
	sys.Update(0)
	assert.Equal(t, []byte{1, 2, 3}, got, "queued packets still run before cleanup")
	assert.Zero(t, store.Count())
}

func TestOutputSystemFlushes(t *testing.T) {
	store := net.NewSessionStore()
	sess := newTestSession(t, 1)
	store.Add(sess)
	sess.Send([]byte{packet.S_OPCODE_SYSMSG, 0})

	NewOutputSystem(store).Update(0)
	require.Len(t, sess.OutQueue, 1)
	assert.Equal(t, []byte{packet.S_OPCODE_SYSMSG, 0}, <-sess.OutQueue)
}

func TestCombatSystemAdvancesClock(t *testing.T) {
	clock := world.NewClock(time0)
	mgr := combat.NewManager(&combat.Deps{Clock: clock})
	sys := NewCombatSystem(clock, mgr)

	sys.Update(100 * time.Millisecond)
	sys.Update(100 * time.Millisecond)
	assert.Equal(t, time0.UnixMilli()+200, clock.Now())
}

func TestEffectSystem(t *testing.T) {
	ws := world.NewState(nil, 18)
	clock := world.NewClock(time.UnixMilli(1000))
	rec := &recorder{}
	sys := NewEffectSystem(ws, clock, rec, zap.NewNop())

	p := newPlayer(1, 10, 10)
	p.SetLookface(1003)
	p.SetDisguise(900, 1500)
	p.AddEffect(world.StatusShield, 1200, 20)
	p.AddEffect(world.StatusLuckAbsorb, 5000, 0)
	p.StartLuckyTime(1000)
	ws.Add(p)

	clock.Set(1300)
	sys.Update(0)
	assert.False(t, p.HasEffect(world.StatusShield))
	assert.True(t, p.HasEffect(world.StatusLuckAbsorb))
	assert.Equal(t, int64(300), p.LuckyTime())
	assert.Empty(t, rec.messages())

	clock.Set(1600)
	sys.Update(0)
	assert.Equal(t, uint32(1003), p.Lookface())
	assert.Equal(t, []combat.Message{combat.Transform{ID: 1, Lookface: 1003}}, rec.messages())

	clock.Set(6000)
	sys.Update(0)
	assert.False(t, p.HasEffect(world.StatusLuckAbsorb))
	assert.Equal(t, int64(5000), p.LuckyTime(), "banked through the tick the status ended")

	clock.Set(9000)
	sys.Update(0)
	assert.Equal(t, int64(5000), p.LuckyTime(), "timer stopped")
}

func TestSpawnSystemPopulatesAndRevives(t *testing.T) {
	ws := world.NewState(nil, 18)
	clock := world.NewClock(time.UnixMilli(0))
	rec := &recorder{}
	bus := event.NewBus()
	sys := NewSpawnSystem(ws, clock, monsterTable(t), rec, maxDice{}, zap.NewNop())
	sys.Subscribe(bus)

	monsters, statics := sys.Populate(&data.SpawnList{
		Spawns: []data.SpawnEntry{
			{MonsterID: 2, MapID: 1002, X: 100, Y: 100, Count: 2, Random: 3, RespawnSecs: 5},
			{MonsterID: 1, MapID: 1002, X: 50, Y: 50, Count: 1},
		},
		Statics: []data.StaticEntry{
			{ID: 6701, Name: "Scarecrow", Mesh: 1550, MapID: 1039, X: 10, Y: 10, Level: 20, Life: 1000},
		},
	})
	assert.Equal(t, 3, monsters)
	assert.Equal(t, 1, statics)

	mob := ws.FindByID(monsterIDBase + 1)
	require.NotNil(t, mob)
	assert.Equal(t, world.KindMonster, mob.Kind)
	assert.Equal(t, world.Point{X: 103, Y: 103}, mob.Pos())
	assert.Equal(t, uint8(3), mob.Monster.AttackMode)
	assert.Equal(t, int32(98), mob.Life())

	scarecrow := ws.FindByID(6701)
	require.NotNil(t, scarecrow)
	assert.Equal(t, uint32(1550), scarecrow.Static.Mesh)

	// 打倒並移位
	mob.ReceiveDamage(1000)
	mob.Die(1, 1)
	ws.MoveTo(mob, world.Point{X: 120, Y: 120})
	event.Emit(bus, event.EntityKilled{KillerID: 1, VictimID: mob.ID, Value: 1})

	pheasant := ws.FindByID(monsterIDBase + 3)
	pheasant.ReceiveDamage(1000)
	event.Emit(bus, event.EntityKilled{KillerID: 1, VictimID: pheasant.ID, Value: 1})

	bus.SwapBuffers()
	bus.DispatchAll()
	assert.Equal(t, 1, sys.Pending(), "no respawn configured for the pheasant")

	clock.Set(4999)
	sys.Update(0)
	assert.False(t, mob.IsAlive())

	clock.Set(5000)
	sys.Update(0)
	assert.True(t, mob.IsAlive())
	assert.Equal(t, world.Point{X: 103, Y: 103}, mob.Pos())
	assert.Zero(t, sys.Pending())
	require.Len(t, rec.messages(), 1)
	spawn, ok := rec.messages()[0].(combat.Spawn)
	require.True(t, ok)
	assert.Equal(t, mob.ID, spawn.ID)
	assert.True(t, spawn.Effect)
}

func TestAnnouncements(t *testing.T) {
	ws := world.NewState(nil, 18)
	rec := &recorder{}
	bus := event.NewBus()
	RegisterAnnouncements(bus, ws, rec, zap.NewNop())
	obs := NewBusObserver(bus)

	p := newPlayer(1, 0, 0)
	ws.Add(p)
	obs.SkillLeveled(p, combat.SkillRecord{ID: 1000, Level: 2})
	obs.ProficiencyLeveled(p, combat.ProficiencyRecord{ID: 410, Level: 5})
	obs.EntityKilled(p, newPlayer(2, 0, 0), 1)
	assert.Empty(t, rec.messages(), "delivered next tick")

	bus.SwapBuffers()
	bus.DispatchAll()
	assert.ElementsMatch(t, []combat.Message{
		combat.SystemMessage{Text: "技能 1000 提升至 2 級"},
		combat.SystemMessage{Text: "武器熟練度 410 提升至 5 級"},
	}, rec.messages())
}

func TestPersistenceSystemInterval(t *testing.T) {
	ws := world.NewState(nil, 18)
	chars := &fakeCharacters{}
	deps := &handler.Deps{
		Characters: chars,
		Items:      fakeItems{},
		Writer:     persist.NewWriter(8, zap.NewNop()),
		Config:     config.Defaults(),
		Log:        zap.NewNop(),
		World:      ws,
		Clock:      world.NewClock(time0),
		Combat:     combat.NewManager(&combat.Deps{}),
		Hub:        handler.NewHub(ws, zap.NewNop()),
	}
	p := newPlayer(10_000_001, 0, 0)
	ws.Add(p)
	deps.Hub.Bind(p.ID, newTestSession(t, 1))

	sys := NewPersistenceSystem(deps, 3)
	sys.Update(0)
	sys.Update(0)
	assert.Zero(t, deps.Writer.Pending())
	sys.Update(0)
	assert.Equal(t, 1, deps.Writer.Pending())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, deps.Writer.Run(ctx))
	require.Len(t, chars.saved, 1)
	assert.Equal(t, p.ID, chars.saved[0].ID)
}
