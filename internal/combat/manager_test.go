package combat

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttachIsIdempotent(t *testing.T) {
	h := newHarness(t)
	me := h.player(1, 100, 100)

	a, err := h.mgr.Attach(me)
	require.NoError(t, err)
	b, err := h.mgr.Attach(me)
	require.NoError(t, err)
	assert.Same(t, a, b)
	assert.Same(t, a, h.mgr.Get(me.ID))
	assert.Equal(t, 1, h.mgr.Count())
	assert.Same(t, me, a.Owner())
}

func TestAttachReportsRepositoryErrors(t *testing.T) {
	h := newHarness(t)
	h.repo.err = errors.New("db down")
	me := h.player(1, 100, 100)

	_, err := h.mgr.Attach(me)
	require.Error(t, err)
	assert.ErrorContains(t, err, "db down")
	assert.Zero(t, h.mgr.Count())
}

func TestDetachAbortsAndSaves(t *testing.T) {
	h := newHarness(t, fireEntry)
	me := h.player(1, 100, 100)
	foe := h.monster(2, 103, 100, 500, true)
	s := h.session(me, known(1001, 0))

	h.cast(s, 1001, foe.ID, 0, 0)
	require.True(t, h.mgr.IsActive(me.ID))

	got := h.mgr.Detach(me.ID)
	assert.Same(t, s, got)
	assert.Equal(t, StateIdle, s.State())
	assert.False(t, h.mgr.IsActive(me.ID))
	assert.Nil(t, h.mgr.Get(me.ID))
	assert.Equal(t, []SkillRecord{known(1001, 0)}, h.repo.savedSkills)
	assert.Nil(t, h.mgr.Detach(me.ID))
}

func TestTickDrivesEverySession(t *testing.T) {
	h := newHarness(t, fireEntry)
	a := h.player(1, 100, 100)
	b := h.player(2, 100, 102)
	foe := h.monster(3, 103, 101, 500, true)
	sa := h.session(a, known(1001, 0))
	sb := h.session(b, known(1001, 0))

	h.cast(sa, 1001, foe.ID, 0, 0)
	h.cast(sb, 1001, foe.ID, 0, 0)
	h.advance(400)
	h.mgr.Tick()
	assert.Equal(t, int32(460), foe.Life())
	assert.False(t, h.mgr.IsActive(a.ID))
	assert.False(t, h.mgr.IsActive(99))

	h.mgr.SaveAll()
	assert.Len(t, h.repo.savedSkills, 2)
}

func TestSessionIsSafeAcrossGoroutines(t *testing.T) {
	h := newHarness(t, boltEntry)
	me := h.player(1, 100, 100)
	foe := h.monster(2, 101, 100, 1_000_000, true)
	s := h.session(me, known(1010, 0))
	me.AddMana(1_000_000)

	// recorder 不是並行安全的，這裡只看狀態機
	h.deps.Notify = discard{}

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			h.cast(s, 1010, foe.ID, 0, 0)
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			h.melee(s, foe.ID)
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			h.mgr.Tick()
			_ = h.mgr.IsActive(me.ID)
		}
	}()
	wg.Wait()
	assert.Less(t, foe.Life(), int32(1_000_000))
}
