package data

// MaxProficiencyLevel 武器熟練度上限。
const MaxProficiencyLevel = 20

// proficiencyExp[n] 是熟練度從 n 升到 n+1 所需的經驗。
var proficiencyExp = [MaxProficiencyLevel]uint32{
	0, 1200, 68000, 250000, 640000,
	1600000, 4000000, 10000000, 22000000, 40000000,
	90000000, 95000000, 142500000, 213750000, 320625000,
	480937500, 721406250, 1082109375, 1623164063, 2100000000,
}

// ProficiencyExpRequired returns the experience a proficiency at level needs
// to reach the next level. ok is false at or beyond the cap.
func ProficiencyExpRequired(level uint16) (uint32, bool) {
	if int(level) >= MaxProficiencyLevel {
		return 0, false
	}
	return proficiencyExp[level], true
}
