package persist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/l1jgo/battlecore/internal/world"
)

func TestEffectsSurviveClockRestart(t *testing.T) {
	effects := []world.Effect{
		{Status: world.StatusShield, Until: 5000, Power: 30},
		{Status: world.StatusCyclone, Until: 900},
		{Status: world.StatusFly, Until: 1000},
	}
	blob, err := EncodeEffects(effects, 1000)
	require.NoError(t, err)
	require.NotEmpty(t, blob)

	got, err := DecodeEffects(blob, 20)
	require.NoError(t, err)
	assert.Equal(t, []world.Effect{{Status: world.StatusShield, Until: 4020, Power: 30}}, got)
}

func TestEffectsEmpty(t *testing.T) {
	blob, err := EncodeEffects([]world.Effect{{Status: world.StatusFly, Until: 10}}, 10)
	require.NoError(t, err)
	assert.Nil(t, blob)

	got, err := DecodeEffects(nil, 0)
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = DecodeEffects([]byte{0xc1}, 0)
	assert.Error(t, err)
}

func TestCharacterSnapshotRoundTrip(t *testing.T) {
	p := world.NewPlayer(7, "阿貓", 1002, world.Point{X: 300, Y: 278}, world.Vitals{
		Life: 80, MaxLife: 120, Mana: 10, MaxMana: 40, Stamina: 55,
	})
	p.Level = 15
	p.Player.AccountName = "cat"
	p.Player.GuildID = 3
	p.Player.RebornCount = 1
	p.SetLookface(1003)
	p.SetDisguise(900, 2000)
	p.SetPkMode(world.PkModeTeam)
	p.GainExperience(1234)
	p.AddEffect(world.StatusShield, 3000, 25)

	row, err := CharacterSnapshot(p, 1000)
	require.NoError(t, err)
	assert.Equal(t, uint32(1003), row.Lookface, "disguise is not saved")
	assert.Equal(t, int64(1234), row.Exp)
	assert.Equal(t, int16(world.PkModeTeam), row.PkMode)
	assert.Equal(t, "cat", row.AccountName)

	back, err := row.ToCombatant(0)
	require.NoError(t, err)
	assert.Equal(t, uint8(15), back.Level)
	assert.Equal(t, world.Point{X: 300, Y: 278}, back.Pos())
	assert.Equal(t, int32(80), back.Life())
	assert.Equal(t, int32(55), back.Stamina())
	assert.Equal(t, uint32(1003), back.Lookface())
	assert.Equal(t, world.PkModeTeam, back.PkMode())
	assert.Equal(t, uint64(1234), back.Experience())
	assert.Equal(t, uint32(3), back.Player.GuildID)
	e, ok := back.Effect(world.StatusShield)
	require.True(t, ok)
	assert.Equal(t, int64(2000), e.Until)
	assert.Equal(t, int32(25), e.Power)
}
