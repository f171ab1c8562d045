package handler

import (
	"context"
	gonet "net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/l1jgo/battlecore/internal/combat"
	"github.com/l1jgo/battlecore/internal/config"
	"github.com/l1jgo/battlecore/internal/core/event"
	"github.com/l1jgo/battlecore/internal/data"
	"github.com/l1jgo/battlecore/internal/net"
	"github.com/l1jgo/battlecore/internal/net/packet"
	"github.com/l1jgo/battlecore/internal/persist"
	"github.com/l1jgo/battlecore/internal/world"
)

var time0 = time.Unix(1_700_000_000, 0)

// ---------- stores ----------

type fakeAccounts struct {
	rows    map[string]*persist.AccountRow
	loadErr error
	online  map[string]bool
}

func (f *fakeAccounts) Load(_ context.Context, name string) (*persist.AccountRow, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	row, ok := f.rows[name]
	if !ok {
		return nil, persist.ErrNotFound
	}
	return row, nil
}

func (f *fakeAccounts) Create(_ context.Context, name, raw, ip string) (*persist.AccountRow, error) {
	hash, err := persist.HashPassword(raw)
	if err != nil {
		return nil, err
	}
	row := &persist.AccountRow{Name: name, PasswordHash: hash, IP: ip}
	f.rows[name] = row
	return row, nil
}

func (f *fakeAccounts) UpdateLastActive(context.Context, string, string) error { return nil }

func (f *fakeAccounts) SetOnline(_ context.Context, name string, online bool) error {
	f.online[name] = online
	return nil
}

type fakeCharacters struct {
	rows   map[string]*persist.CharacterRow
	nextID uint32
	saved  []*persist.CharacterRow
}

func (f *fakeCharacters) LoadByName(_ context.Context, name string) (*persist.CharacterRow, error) {
	row, ok := f.rows[name]
	if !ok {
		return nil, persist.ErrNotFound
	}
	cp := *row
	return &cp, nil
}

func (f *fakeCharacters) Create(_ context.Context, c *persist.CharacterRow) error {
	f.nextID++
	c.ID = f.nextID
	cp := *c
	f.rows[c.Name] = &cp
	return nil
}

func (f *fakeCharacters) SaveCharacter(_ context.Context, c *persist.CharacterRow) error {
	f.saved = append(f.saved, c)
	return nil
}

type fakeItems struct {
	rows  map[uint32][]persist.EquippedRow
	saved map[uint32][]persist.EquippedRow
}

func (f *fakeItems) LoadByCharID(_ context.Context, id uint32) ([]persist.EquippedRow, error) {
	return f.rows[id], nil
}

func (f *fakeItems) SaveEquipment(_ context.Context, id uint32, items []persist.EquippedRow) error {
	f.saved[id] = items
	return nil
}

// memRepo 記憶體版的 combat.Repository。
type memRepo struct {
	defs   *data.SkillTable
	skills map[uint32][]combat.SkillRecord
	saved  []combat.SkillRecord
}

func (r *memRepo) SkillsOf(id uint32) ([]combat.SkillRecord, error) { return r.skills[id], nil }

func (r *memRepo) ProficienciesOf(uint32) ([]combat.ProficiencyRecord, error) { return nil, nil }

func (r *memRepo) SkillDefinition(id, level uint16) *data.SkillDef { return r.defs.Get(id, level) }

func (r *memRepo) MonsterTemplate(uint32) *data.MonsterTemplate { return nil }

func (r *memRepo) SaveSkill(_ uint32, rec combat.SkillRecord) { r.saved = append(r.saved, rec) }

func (r *memRepo) DeleteSkill(uint32, uint16) {}

func (r *memRepo) SaveProficiency(uint32, combat.ProficiencyRecord) {}

func (r *memRepo) SaveItem(uint32, world.Item) {}

func (r *memRepo) DeleteItem(uint32, uint32) {}

type fixedDamage struct{ dmg uint32 }

func (d fixedDamage) PhysicalDamage(_, _ *world.Combatant, _ *data.SkillDef) uint32 { return d.dmg }

func (d fixedDamage) SkillDamage(_, _ *world.Combatant, _ *data.SkillDef, _ bool) uint32 {
	return d.dmg
}

func (d fixedDamage) BowDamage(_, _ *world.Combatant, _ *data.SkillDef) uint32 { return d.dmg }

func (d fixedDamage) ExperienceGain(_, _ *world.Combatant, _ uint32) uint64 { return 0 }

// ---------- environment ----------

type testEnv struct {
	deps     *Deps
	accounts *fakeAccounts
	chars    *fakeCharacters
	items    *fakeItems
	repo     *memRepo
}

func newEnv(t *testing.T) *testEnv {
	t.Helper()
	skills, err := data.NewSkillTable([]data.SkillEntry{
		{ID: 1000, Level: 0, Name: "Thunder", Sort: "attack", Target: "player", Distance: 10, NeedExp: 50},
		{ID: 1000, Level: 1, Name: "Thunder", Sort: "attack", Target: "player", Distance: 10},
	})
	require.NoError(t, err)

	cfg := config.Defaults()
	ws := world.NewState(nil, cfg.Combat.ScreenRange)
	clock := world.NewClock(time0)
	hub := NewHub(ws, zap.NewNop())
	repo := &memRepo{defs: skills, skills: map[uint32][]combat.SkillRecord{}}

	mgr := combat.NewManager(&combat.Deps{
		Clock:        clock,
		World:        ws,
		Repo:         repo,
		Damage:       fixedDamage{dmg: 10},
		Notify:       hub,
		WeaponSkills: data.NewWeaponSkillTable(nil),
		Contest:      data.NewContestTable(nil, nil),
		Config:       cfg.Combat,
		Log:          zap.NewNop(),
	})

	env := &testEnv{
		accounts: &fakeAccounts{rows: map[string]*persist.AccountRow{}, online: map[string]bool{}},
		chars:    &fakeCharacters{rows: map[string]*persist.CharacterRow{}, nextID: 10_000_000},
		items:    &fakeItems{rows: map[uint32][]persist.EquippedRow{}, saved: map[uint32][]persist.EquippedRow{}},
		repo:     repo,
	}
	env.deps = &Deps{
		Accounts:   env.accounts,
		Characters: env.chars,
		Items:      env.items,
		Writer:     persist.NewWriter(64, zap.NewNop()),
		Config:     cfg,
		Log:        zap.NewNop(),
		World:      ws,
		Clock:      clock,
		Combat:     mgr,
		Hub:        hub,
		Bus:        event.NewBus(),
		Skills:     skills,
	}
	return env
}

// newTestSession 以 net.Pipe 建立連線，不啟動讀寫 goroutine。
func newTestSession(t *testing.T, id uint64) *net.Session {
	t.Helper()
	a, b := gonet.Pipe()
	t.Cleanup(func() {
		a.Close()
		b.Close()
	})
	return net.NewSession(a, id, 16, 256, 0, zap.NewNop())
}

// sent flushes sess and returns every packet queued since the last call.
func sent(sess *net.Session) [][]byte {
	sess.FlushOutput()
	var out [][]byte
	for {
		select {
		case p := <-sess.OutQueue:
			out = append(out, p)
		default:
			return out
		}
	}
}

func opcodes(pkts [][]byte) []byte {
	out := make([]byte, 0, len(pkts))
	for _, p := range pkts {
		out = append(out, p[0])
	}
	return out
}

func request(opcode byte, fill func(w *packet.Writer)) *packet.Reader {
	w := packet.NewWriterWithOpcode(opcode)
	if fill != nil {
		fill(w)
	}
	return packet.NewReader(w.Bytes())
}

// drainWriter runs every queued save job.
func drainWriter(t *testing.T, w *persist.Writer) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, w.Run(ctx))
}

// enter logs account in and enters the world as name.
func (e *testEnv) enter(t *testing.T, sess *net.Session, account, name string) *world.Combatant {
	t.Helper()
	HandleLogin(sess, request(packet.C_OPCODE_LOGIN, func(w *packet.Writer) {
		w.WriteS(account)
		w.WriteS("pw")
	}), e.deps)
	require.Equal(t, packet.StateAuthenticated, sess.State())
	HandleEnterWorld(sess, request(packet.C_OPCODE_ENTERWORLD, func(w *packet.Writer) {
		w.WriteS(name)
	}), e.deps)
	require.Equal(t, packet.StateInWorld, sess.State())
	p := e.deps.World.FindByID(sess.CharID)
	require.NotNil(t, p)
	return p
}
