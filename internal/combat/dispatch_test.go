package combat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/l1jgo/battlecore/internal/world"
)

func TestGemEffectShownToNearbyObservers(t *testing.T) {
	h := newHarness(t)
	me := h.player(1, 100, 100)
	me.Equip(world.SlotArmor, world.Item{UID: 1, StaticID: 130001, Gem1: 13})
	me.Equip(world.SlotRing, world.Item{UID: 2, StaticID: 150001, Gem2: 63})
	near := h.player(2, 110, 100)
	corpse := h.player(3, 101, 100)
	corpse.ReceiveDamage(5000)
	foe := h.monster(4, 101, 101, 500, true)
	s := h.session(me)
	h.dice.success = true
	h.dice.pick = 1

	h.melee(s, foe.ID)
	var to []uint32
	for _, d := range h.notify.out {
		if e, ok := d.msg.(RoleEffect); ok {
			assert.Equal(t, RoleEffect{ID: me.ID, Name: "moon"}, e)
			to = append(to, d.to)
		}
	}
	assert.ElementsMatch(t, []uint32{me.ID, near.ID, foe.ID}, to)
}

func TestNoGemNoEffect(t *testing.T) {
	h := newHarness(t)
	me := h.player(1, 100, 100)
	me.Equip(world.SlotArmor, world.Item{UID: 1, StaticID: 130001, Gem1: 12})
	foe := h.monster(2, 101, 100, 500, true)
	s := h.session(me)
	h.dice.success = true

	h.melee(s, foe.ID)
	assert.Empty(t, find[RoleEffect](h.notify))
}

func TestInteractionStopsMining(t *testing.T) {
	h := newHarness(t)
	me := h.player(1, 100, 100)
	foe := h.monster(2, 101, 100, 500, true)
	me.SetMining(true)
	s := h.session(me)

	h.melee(s, foe.ID)
	assert.False(t, me.IsMining())
	acts := find[Action](h.notify)
	require.Len(t, acts, 1)
	assert.Equal(t, ActionStopMining, acts[0].Kind)
}

func TestInteractionBanksLuckyTime(t *testing.T) {
	h := newHarness(t)
	me := h.player(1, 100, 100)
	foe := h.monster(2, 101, 100, 500, true)
	me.AddEffect(world.StatusLuckAbsorb, h.clock.Now()+100_000, 0)
	me.StartLuckyTime(h.clock.Now())
	me.SetLuckyAbsorbTimer(h.clock.Now() + 2000)
	s := h.session(me)

	h.advance(1500)
	h.melee(s, foe.ID)
	assert.Equal(t, int64(1500), me.LuckyTime())
	assert.Zero(t, me.LuckyAbsorbTimer())
}

func TestUnknownInteractionIgnored(t *testing.T) {
	h := newHarness(t)
	me := h.player(1, 100, 100)
	s := h.session(me)

	s.OnInteraction(Request{Action: 99})
	assert.Equal(t, StateIdle, s.State())
	assert.Empty(t, h.notify.out)
}

func TestMonsterCanInterruptLaunching(t *testing.T) {
	h := newHarness(t, tornadoEntry)
	mob := h.monster(1, 100, 100, 500, true)
	victim := h.player(2, 101, 100)
	s := h.session(mob, known(1002, 0))

	h.cast(s, 1002, 0, 0, 0)
	require.Equal(t, StateLaunching, s.State())
	s.OnInteraction(Request{Action: InteractAttack, TargetID: victim.ID})
	assert.Equal(t, StateAttacking, s.State())
}
