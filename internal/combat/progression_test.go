package combat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/l1jgo/battlecore/internal/data"
)

func ladder(id uint16, needs ...uint32) []data.SkillEntry {
	out := make([]data.SkillEntry, 0, len(needs)+1)
	for i, n := range needs {
		out = append(out, data.SkillEntry{ID: id, Level: uint16(i), Sort: "attack", NeedExp: n})
	}
	return append(out, data.SkillEntry{ID: id, Level: uint16(len(needs)), Sort: "attack"})
}

func TestSkillLevelsOnlyPastRequirement(t *testing.T) {
	h := newHarness(t, ladder(1000, 100, 200, 300)...)
	me := h.player(1, 100, 100)
	s := h.session(me, known(1000, 0))

	s.GrantSkillExperience(1000, 100)
	rec, _ := s.Skill(1000)
	assert.Equal(t, uint16(0), rec.Level, "equal is not enough")

	s.GrantSkillExperience(1000, 1)
	rec, _ = s.Skill(1000)
	assert.Equal(t, uint16(1), rec.Level)
	assert.Equal(t, uint32(1), rec.Experience)
	assert.Len(t, h.events.leveled, 1)

	s.GrantSkillExperience(1000, 1000)
	rec, _ = s.Skill(1000)
	assert.Equal(t, uint16(3), rec.Level, "several levels in one grant")
	assert.Equal(t, uint32(1001-200-300), rec.Experience)

	s.GrantSkillExperience(1000, 5000)
	rec, _ = s.Skill(1000)
	assert.Equal(t, uint16(3), rec.Level, "top level keeps accumulating")
	assert.Equal(t, uint32(5501), rec.Experience)
	assert.Len(t, find[SkillInfo](h.notify), 4)
}

func TestSkillNeedLevelGate(t *testing.T) {
	h := newHarness(t,
		data.SkillEntry{ID: 1000, Level: 0, Sort: "attack", NeedExp: 10, NeedLevel: 60},
		data.SkillEntry{ID: 1000, Level: 1, Sort: "attack"},
	)
	me := h.player(1, 100, 100)
	s := h.session(me, known(1000, 0))

	s.GrantSkillExperience(1000, 50)
	rec, _ := s.Skill(1000)
	assert.Zero(t, rec.Experience)
	assert.Empty(t, h.repo.savedSkills)

	me.Level = 60
	s.GrantSkillExperience(1000, 50)
	rec, _ = s.Skill(1000)
	assert.Equal(t, uint16(1), rec.Level)
}

func TestSkillExperienceStopsWithoutNextLevel(t *testing.T) {
	h := newHarness(t, data.SkillEntry{ID: 1000, Level: 0, Sort: "attack", NeedExp: 10})
	me := h.player(1, 100, 100)
	s := h.session(me, known(1000, 0))

	s.GrantSkillExperience(1000, 50)
	rec, _ := s.Skill(1000)
	assert.Equal(t, uint16(0), rec.Level)
	assert.Equal(t, uint32(50), rec.Experience)
	assert.Len(t, h.repo.savedSkills, 1, "still saved")
}

func TestSkillDemotionRestores(t *testing.T) {
	h := newHarness(t, ladder(1000, 10, 10, 10, 10, 10, 10)...)
	me := h.player(1, 100, 100)
	s := h.session(me, SkillRecord{ID: 1000, Level: 2, PreviousLevel: 6})

	s.GrantSkillExperience(1000, 11)
	rec, _ := s.Skill(1000)
	assert.Equal(t, uint16(3), rec.Level, "3 is not past half of 6")
	assert.Equal(t, uint16(6), rec.PreviousLevel)

	s.GrantSkillExperience(1000, 10)
	rec, _ = s.Skill(1000)
	assert.Equal(t, uint16(6), rec.Level, "jumps back to the old level")
	assert.Zero(t, rec.PreviousLevel)
}

func TestUnknownSkillExperienceIgnored(t *testing.T) {
	h := newHarness(t)
	me := h.player(1, 100, 100)
	s := h.session(me)
	s.GrantSkillExperience(4242, 10)
	assert.Empty(t, h.repo.savedSkills)
	assert.False(t, s.KnowsSkill(4242))
}

func TestProficiencyCreatesThenLevels(t *testing.T) {
	h := newHarness(t)
	me := h.player(1, 100, 100)
	s := h.session(me)

	s.GrantProficiencyExperience(410, 5)
	rec, ok := s.Proficiency(410)
	require.True(t, ok)
	assert.Equal(t, ProficiencyRecord{ID: 410, Level: 1}, rec)

	need, _ := data.ProficiencyExpRequired(1)
	s.GrantProficiencyExperience(410, uint64(need))
	rec, _ = s.Proficiency(410)
	assert.Equal(t, uint16(2), rec.Level)
	assert.Zero(t, rec.Experience)
	assert.Len(t, h.events.profs, 1)
	assert.True(t, s.CheckProficiency(410, 2))
	assert.False(t, s.CheckProficiency(410, 3))
}

func TestProficiencyCap(t *testing.T) {
	h := newHarness(t)
	me := h.player(1, 100, 100)
	s := h.session(me)

	s.AddOrUpdateProficiency(410, 25, 0)
	rec, _ := s.Proficiency(410)
	assert.Equal(t, uint16(data.MaxProficiencyLevel), rec.Level)

	h.repo.savedProfs = nil
	s.GrantProficiencyExperience(410, 1_000_000)
	rec, _ = s.Proficiency(410)
	assert.Equal(t, uint16(data.MaxProficiencyLevel), rec.Level)
	assert.Zero(t, rec.Experience)
	assert.Empty(t, h.repo.savedProfs)
}

func TestProficiencyDemotionRestores(t *testing.T) {
	h := newHarness(t)
	me := h.player(1, 100, 100)
	h.repo.profs[me.ID] = []ProficiencyRecord{{ID: 410, Level: 3, PreviousLevel: 12}}
	s := h.session(me)

	need, _ := data.ProficiencyExpRequired(3)
	s.GrantProficiencyExperience(410, uint64(need))
	rec, _ := s.Proficiency(410)
	assert.Equal(t, uint16(4), rec.Level, "4 is not past half of 12")

	var total uint64
	for lvl := uint16(4); lvl <= 6; lvl++ {
		n, _ := data.ProficiencyExpRequired(lvl)
		total += uint64(n)
	}
	s.GrantProficiencyExperience(410, total)
	rec, _ = s.Proficiency(410)
	assert.Equal(t, uint16(12), rec.Level, "passing 7 restores the old level")
	assert.Zero(t, rec.PreviousLevel)
}

func TestLearnAndForget(t *testing.T) {
	h := newHarness(t)
	me := h.player(1, 100, 100)
	s := h.session(me)

	assert.True(t, s.LearnSkill(1000))
	assert.False(t, s.LearnSkill(1000))
	assert.True(t, s.KnowsSkill(1000))
	assert.True(t, s.KnowsSkillLevel(1000, 0))
	assert.False(t, s.KnowsSkillLevel(1000, 1))

	s.AddOrUpdateSkill(1000, 4, 7)
	rec, _ := s.Skill(1000)
	assert.Equal(t, SkillRecord{ID: 1000, Level: 4, Experience: 7}, rec)

	assert.True(t, s.ForgetSkill(1000))
	assert.False(t, s.ForgetSkill(1000))
	assert.Equal(t, []uint16{1000}, h.repo.deletedSkills)
	drops := find[DropMagic](h.notify)
	require.Len(t, drops, 1)
	assert.Equal(t, uint16(1000), drops[0].SkillID)
}

func TestLoadedRecordsAreAnnounced(t *testing.T) {
	h := newHarness(t)
	me := h.player(1, 100, 100)
	h.repo.skills[me.ID] = []SkillRecord{known(1002, 1), known(1000, 0), known(1002, 3)}
	h.repo.profs[me.ID] = []ProficiencyRecord{{ID: 410, Level: 2}}

	s, err := NewSession(me, h.deps)
	require.NoError(t, err)
	assert.Len(t, find[SkillInfo](h.notify), 2, "duplicate rows are dropped")
	assert.Len(t, find[ProficiencyInfo](h.notify), 1)

	recs := s.Skills()
	require.Len(t, recs, 2)
	assert.Equal(t, uint16(1000), recs[0].ID)
	assert.Equal(t, uint16(1), recs[1].Level, "first row wins")
}
