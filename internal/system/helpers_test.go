package system

import (
	"context"
	gonet "net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sasha-s/go-deadlock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/l1jgo/battlecore/internal/combat"
	"github.com/l1jgo/battlecore/internal/data"
	"github.com/l1jgo/battlecore/internal/net"
	"github.com/l1jgo/battlecore/internal/persist"
	"github.com/l1jgo/battlecore/internal/world"
)

var time0 = time.Unix(1_700_000_000, 0)

// recorder 記錄所有送出的訊息。
type recorder struct {
	mu   deadlock.Mutex
	sent []sentMsg
}

type sentMsg struct {
	to        uint32
	broadcast bool
	msg       combat.Message
}

func (r *recorder) SendTo(c *world.Combatant, msg combat.Message) {
	r.mu.Lock()
	r.sent = append(r.sent, sentMsg{to: c.ID, msg: msg})
	r.mu.Unlock()
}

func (r *recorder) BroadcastToScreen(origin *world.Combatant, msg combat.Message, _ bool) {
	r.mu.Lock()
	r.sent = append(r.sent, sentMsg{to: origin.ID, broadcast: true, msg: msg})
	r.mu.Unlock()
}

func (r *recorder) messages() []combat.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]combat.Message, 0, len(r.sent))
	for _, s := range r.sent {
		out = append(out, s.msg)
	}
	return out
}

// maxDice always rolls the highest value.
type maxDice struct{}

func (maxDice) PercentSuccess(int) bool { return true }
func (maxDice) Intn(n int) int          { return n - 1 }

type fakeCharacters struct {
	saved []*persist.CharacterRow
}

func (f *fakeCharacters) LoadByName(context.Context, string) (*persist.CharacterRow, error) {
	return nil, persist.ErrNotFound
}

func (f *fakeCharacters) Create(context.Context, *persist.CharacterRow) error { return nil }

func (f *fakeCharacters) SaveCharacter(_ context.Context, c *persist.CharacterRow) error {
	f.saved = append(f.saved, c)
	return nil
}

type fakeItems struct{}

func (fakeItems) LoadByCharID(context.Context, uint32) ([]persist.EquippedRow, error) {
	return nil, nil
}

func (fakeItems) SaveEquipment(context.Context, uint32, []persist.EquippedRow) error { return nil }

func newTestSession(t *testing.T, id uint64) *net.Session {
	t.Helper()
	a, b := gonet.Pipe()
	t.Cleanup(func() {
		a.Close()
		b.Close()
	})
	return net.NewSession(a, id, 16, 64, 0, zap.NewNop())
}

func newPlayer(id uint32, x, y int32) *world.Combatant {
	return world.NewPlayer(id, "p", 1002, world.Point{X: x, Y: y},
		world.Vitals{Life: 100, MaxLife: 100, Mana: 10, MaxMana: 10, Stamina: 100})
}

func monsterTable(t *testing.T) *data.MonsterTable {
	t.Helper()
	path := filepath.Join(t.TempDir(), "monster_list.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`monsters:
  - id: 1
    name: Pheasant
    lookface: 101
    level: 1
    life: 33
  - id: 2
    name: Turtledove
    lookface: 102
    level: 2
    life: 98
    attack_mode: 3
`), 0o644))
	tbl, err := data.LoadMonsterTable(path)
	require.NoError(t, err)
	return tbl
}
