package combat

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/l1jgo/battlecore/internal/config"
	"github.com/l1jgo/battlecore/internal/data"
	"github.com/l1jgo/battlecore/internal/world"
)

const testMap = 1002

type testRules struct {
	safe    map[uint32]bool
	contest map[uint32]bool
}

func (r testRules) IsPvpEnabled(mapID uint32) bool { return !r.safe[mapID] }
func (r testRules) IsContestMap(mapID uint32) bool { return r.contest[mapID] }

// ---------- repository ----------

type fakeRepo struct {
	defs     *data.SkillTable
	monsters map[uint32]*data.MonsterTemplate
	skills   map[uint32][]SkillRecord
	profs    map[uint32][]ProficiencyRecord
	err      error

	savedSkills   []SkillRecord
	deletedSkills []uint16
	savedProfs    []ProficiencyRecord
	savedItems    []world.Item
	deletedItems  []uint32
}

func (r *fakeRepo) SkillsOf(id uint32) ([]SkillRecord, error) { return r.skills[id], r.err }
func (r *fakeRepo) ProficienciesOf(id uint32) ([]ProficiencyRecord, error) {
	return r.profs[id], nil
}
func (r *fakeRepo) SkillDefinition(id, level uint16) *data.SkillDef { return r.defs.Get(id, level) }
func (r *fakeRepo) MonsterTemplate(id uint32) *data.MonsterTemplate { return r.monsters[id] }
func (r *fakeRepo) SaveSkill(_ uint32, rec SkillRecord) {
	r.savedSkills = append(r.savedSkills, rec)
}
func (r *fakeRepo) DeleteSkill(_ uint32, id uint16) { r.deletedSkills = append(r.deletedSkills, id) }
func (r *fakeRepo) SaveProficiency(_ uint32, rec ProficiencyRecord) {
	r.savedProfs = append(r.savedProfs, rec)
}
func (r *fakeRepo) SaveItem(_ uint32, it world.Item) { r.savedItems = append(r.savedItems, it) }
func (r *fakeRepo) DeleteItem(_ uint32, uid uint32) { r.deletedItems = append(r.deletedItems, uid) }

// ---------- damage ----------

type fakeDamage struct {
	physical, skill, bow uint32
	exp                  uint64
	calls                map[string]int
}

func (d *fakeDamage) PhysicalDamage(_, _ *world.Combatant, _ *data.SkillDef) uint32 {
	d.calls["physical"]++
	return d.physical
}

func (d *fakeDamage) SkillDamage(_, _ *world.Combatant, _ *data.SkillDef, _ bool) uint32 {
	d.calls["skill"]++
	return d.skill
}

func (d *fakeDamage) BowDamage(_, _ *world.Combatant, _ *data.SkillDef) uint32 {
	d.calls["bow"]++
	return d.bow
}

func (d *fakeDamage) ExperienceGain(_, _ *world.Combatant, _ uint32) uint64 { return d.exp }

// ---------- notifier ----------

type delivery struct {
	to          uint32
	msg         Message
	broadcast   bool
	includeSelf bool
}

type recorder struct {
	out []delivery
}

func (r *recorder) SendTo(c *world.Combatant, msg Message) {
	r.out = append(r.out, delivery{to: c.ID, msg: msg})
}

func (r *recorder) BroadcastToScreen(origin *world.Combatant, msg Message, includeSelf bool) {
	r.out = append(r.out, delivery{to: origin.ID, msg: msg, broadcast: true, includeSelf: includeSelf})
}

// find returns every message of type T in delivery order.
func find[T Message](r *recorder) []T {
	var out []T
	for _, d := range r.out {
		if m, ok := d.msg.(T); ok {
			out = append(out, m)
		}
	}
	return out
}

func (r *recorder) reset() { r.out = nil }

type discard struct{}

func (discard) SendTo(*world.Combatant, Message) {}
func (discard) BroadcastToScreen(*world.Combatant, Message, bool) {}

// ---------- dice ----------

type fixedDice struct {
	success bool
	pick    int
}

func (d *fixedDice) PercentSuccess(int) bool { return d.success }
func (d *fixedDice) Intn(int) int { return d.pick }

// ---------- observer ----------

type killLog struct {
	kills   []uint32
	leveled []SkillRecord
	profs   []ProficiencyRecord
}

func (k *killLog) EntityKilled(_, victim *world.Combatant, value uint32) {
	k.kills = append(k.kills, value)
}
func (k *killLog) SkillLeveled(_ *world.Combatant, r SkillRecord) { k.leveled = append(k.leveled, r) }
func (k *killLog) ProficiencyLeveled(_ *world.Combatant, r ProficiencyRecord) {
	k.profs = append(k.profs, r)
}

// ---------- harness ----------

type harness struct {
	t      *testing.T
	clock  *world.Clock
	state  *world.State
	rules  testRules
	repo   *fakeRepo
	damage *fakeDamage
	notify *recorder
	dice   *fixedDice
	events *killLog
	deps   *Deps
	mgr    *Manager
}

func newHarness(t *testing.T, entries ...data.SkillEntry) *harness {
	t.Helper()
	defs, err := data.NewSkillTable(entries)
	require.NoError(t, err)

	h := &harness{
		t:      t,
		clock:  world.NewClock(time.UnixMilli(0)),
		rules:  testRules{safe: map[uint32]bool{}, contest: map[uint32]bool{}},
		repo:   &fakeRepo{defs: defs, monsters: map[uint32]*data.MonsterTemplate{}, skills: map[uint32][]SkillRecord{}, profs: map[uint32][]ProficiencyRecord{}},
		damage: &fakeDamage{physical: 10, skill: 20, bow: 30, calls: map[string]int{}},
		notify: &recorder{},
		dice:   &fixedDice{},
		events: &killLog{},
	}
	h.clock.Set(10_000)
	h.state = world.NewState(h.rules, 18)
	h.deps = &Deps{
		Clock:        h.clock,
		World:        h.state,
		Repo:         h.repo,
		Damage:       h.damage,
		Notify:       h.notify,
		Observer:     h.events,
		Dice:         h.dice,
		WeaponSkills: data.NewWeaponSkillTable(nil),
		Contest:      data.NewContestTable(nil, nil),
		Config:       config.Defaults().Combat,
	}
	h.mgr = NewManager(h.deps)
	return h
}

func (h *harness) advance(ms int64) { h.clock.Set(h.clock.Now() + ms) }

func (h *harness) player(id uint32, x, y int32) *world.Combatant {
	c := world.NewPlayer(id, "player", testMap, world.Point{X: x, Y: y}, world.Vitals{
		Life: 1000, MaxLife: 1000, Mana: 500, MaxMana: 500, Stamina: 100,
	})
	c.Level = 50
	c.AttackRange = 2
	c.AttackSpeed = 1000
	h.state.Add(c)
	return c
}

func (h *harness) monster(id uint32, x, y int32, life int32, hostile bool) *world.Combatant {
	c := world.NewCombatant(id, world.KindMonster, "monster", testMap, world.Point{X: x, Y: y}, world.Vitals{
		Life: life, MaxLife: life,
	})
	mode := uint8(1)
	if hostile {
		mode = monsterHostile
	}
	c.Monster = &world.MonsterExt{TemplateID: 1, AttackMode: mode}
	c.AttackRange = 1
	c.AttackSpeed = 1000
	h.state.Add(c)
	return c
}

func (h *harness) static(id, mesh uint32, x, y int32, life int32) *world.Combatant {
	c := world.NewCombatant(id, world.KindStatic, "pole", testMap, world.Point{X: x, Y: y}, world.Vitals{
		Life: life, MaxLife: life,
	})
	c.Static = &world.StaticExt{Mesh: mesh}
	h.state.Add(c)
	return c
}

// session attaches a session for c with the given known skills.
func (h *harness) session(c *world.Combatant, skills ...SkillRecord) *Session {
	h.t.Helper()
	h.repo.skills[c.ID] = skills
	s, err := h.mgr.Attach(c)
	require.NoError(h.t, err)
	h.notify.reset()
	return s
}

func (h *harness) cast(s *Session, skillID uint16, target uint32, x, y int32) {
	s.OnInteraction(Request{Action: InteractMagicAttack, SkillID: skillID, TargetID: target, X: x, Y: y})
}

func (h *harness) melee(s *Session, target uint32) {
	p := s.owner.Pos()
	s.OnInteraction(Request{Action: InteractAttack, TargetID: target, X: p.X, Y: p.Y})
}

func known(id, level uint16) SkillRecord { return SkillRecord{ID: id, Level: level} }
