package combat

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/l1jgo/battlecore/internal/world"
)

func TestPlayerTargetsByPkMode(t *testing.T) {
	h := newHarness(t)
	me := h.player(1, 100, 100)
	other := h.player(2, 101, 100)
	blue := h.player(3, 101, 101)
	blue.AddEffect(world.StatusBlue, h.clock.Now()+10_000, 0)
	s := h.session(me)

	tests := []struct {
		mode  world.PkMode
		other bool
		blue  bool
	}{
		{world.PkModeOpen, true, true},
		{world.PkModePeace, false, false},
		{world.PkModeCapture, false, true},
		{world.PkModeTeam, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.mode.String(), func(t *testing.T) {
			me.SetPkMode(tt.mode)
			assert.Equal(t, tt.other, s.IsValidTarget(other))
			assert.Equal(t, tt.blue, s.IsValidTarget(blue))
		})
	}
}

func TestTeamModeSparesTeamAndGuild(t *testing.T) {
	h := newHarness(t)
	me := h.player(1, 100, 100)
	mate := h.player(2, 101, 100)
	brother := h.player(3, 101, 101)
	stranger := h.player(4, 100, 101)
	me.Player.GuildID = 77
	brother.Player.GuildID = 77
	stranger.Player.GuildID = 78
	team := h.state.CreateTeam(me)
	h.state.JoinTeam(team.ID, mate)
	s := h.session(me)
	me.SetPkMode(world.PkModeTeam)

	assert.False(t, s.IsValidTarget(mate))
	assert.False(t, s.IsValidTarget(brother))
	assert.True(t, s.IsValidTarget(stranger))
}

func TestBasicTargetRules(t *testing.T) {
	h := newHarness(t)
	me := h.player(1, 100, 100)
	dead := h.monster(2, 101, 100, 10, true)
	dead.ReceiveDamage(10)
	shielded := h.player(3, 100, 101)
	shielded.AddEffect(world.StatusReviveProtect, h.clock.Now()+5000, 0)
	s := h.session(me)

	assert.False(t, s.IsValidTarget(nil))
	assert.False(t, s.IsValidTarget(me))
	assert.False(t, s.IsValidTarget(dead))
	assert.False(t, s.IsValidTarget(shielded))
}

func TestSafeMapProtectsPlayers(t *testing.T) {
	h := newHarness(t)
	h.rules.safe[testMap] = true
	me := h.player(1, 100, 100)
	other := h.player(2, 101, 100)
	foe := h.monster(3, 100, 101, 100, true)
	s := h.session(me)

	assert.False(t, s.IsValidTarget(other))
	assert.True(t, s.IsValidTarget(foe), "monsters stay fair game")
}

func TestMonsterTargets(t *testing.T) {
	h := newHarness(t)
	me := h.player(1, 100, 100)
	calm := h.monster(2, 101, 100, 100, false)
	angry := h.monster(3, 100, 101, 100, true)
	s := h.session(me)

	me.SetPkMode(world.PkModePeace)
	assert.False(t, s.IsValidTarget(calm))
	assert.True(t, s.IsValidTarget(angry))
	me.SetPkMode(world.PkModeCapture)
	assert.False(t, s.IsValidTarget(calm))
	me.SetPkMode(world.PkModeOpen)
	assert.True(t, s.IsValidTarget(calm))

	ms := h.session(angry)
	assert.True(t, ms.IsValidTarget(calm), "different attack modes fight")
	other := h.monster(4, 102, 100, 100, true)
	assert.False(t, ms.IsValidTarget(other))
}

func TestPetTargets(t *testing.T) {
	h := newHarness(t)
	me := h.player(1, 100, 100)
	mine := h.state.SpawnPet(me, world.PetSpec{Name: "mine", Life: 10})
	owner := h.player(2, 105, 100)
	theirs := h.state.SpawnPet(owner, world.PetSpec{Name: "theirs", Life: 10})
	s := h.session(me)

	assert.False(t, s.IsValidTarget(mine))
	assert.True(t, s.IsValidTarget(theirs))

	me.SetDisguise(guardLookface, h.clock.Now()+60_000)
	assert.False(t, s.IsValidTarget(theirs), "guards only hunt outlaws' pets")
	owner.AddEffect(world.StatusBlack, h.clock.Now()+60_000, 0)
	assert.True(t, s.IsValidTarget(theirs))
	owner.RemoveEffect(world.StatusBlack)
	owner.AddEffect(world.StatusBlue, h.clock.Now()+60_000, 0)
	assert.True(t, s.IsValidTarget(theirs))
}

func TestProtectedStaticDuringGuildWar(t *testing.T) {
	h := newHarness(t)
	me := h.player(1, 100, 100)
	me.Player.GuildID = 5
	pole := h.static(h.deps.Config.ProtectedStaticID, 1038, 101, 100, 100)
	other := h.static(6800, 1038, 100, 101, 100)
	s := h.session(me)

	assert.True(t, s.IsValidTarget(pole))
	h.state.SetGuildWarWinner(5)
	assert.False(t, s.IsValidTarget(pole), "winners cannot hit their own pole")
	assert.True(t, s.IsValidTarget(other))
	h.state.SetGuildWarWinner(6)
	assert.True(t, s.IsValidTarget(pole))
}
