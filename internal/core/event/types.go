package event

type PlayerLoggedIn struct {
	CharID      uint32
	AccountName string
	SessionID   uint64
}

type PlayerDisconnected struct {
	CharID    uint32
	SessionID uint64
}

// EntityKilled 死亡已確定（戰鬥核心只會回報一次）。
type EntityKilled struct {
	KillerID uint32
	VictimID uint32
	Value    uint32
}

type SkillLeveled struct {
	OwnerID uint32
	SkillID uint16
	Level   uint16
}

type ProficiencyLeveled struct {
	OwnerID    uint32
	WeaponType uint16
	Level      uint16
}
