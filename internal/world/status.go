package world

import "strconv"

// Status 狀態／增益編號。數值與技能表 status 欄位一致。
type Status uint8

const (
	StatusNone          Status = 0
	StatusPoison        Status = 1
	StatusBlue          Status = 2  // 閃藍（可被捕捉）
	StatusBlack         Status = 3  // 黑名
	StatusXPStart       Status = 4  // XP 技能可用
	StatusReviveProtect Status = 5  // 復活保護
	StatusIntensify     Status = 6  // 下一次技能強化
	StatusShield        Status = 7
	StatusStigma        Status = 8
	StatusAccuracy      Status = 9
	StatusFly           Status = 10
	StatusLuckDiffuse   Status = 11
	StatusLuckAbsorb    Status = 12
	StatusSuperman      Status = 18
	StatusCyclone       Status = 23
)

var statusNames = map[Status]string{
	StatusPoison:        "poison",
	StatusBlue:          "blue",
	StatusBlack:         "black",
	StatusXPStart:       "xp_start",
	StatusReviveProtect: "revive_protect",
	StatusIntensify:     "intensify",
	StatusShield:        "shield",
	StatusStigma:        "stigma",
	StatusAccuracy:      "accuracy",
	StatusFly:           "fly",
	StatusLuckDiffuse:   "luck_diffuse",
	StatusLuckAbsorb:    "luck_absorb",
	StatusSuperman:      "superman",
	StatusCyclone:       "cyclone",
}

func (s Status) String() string {
	if n, ok := statusNames[s]; ok {
		return n
	}
	return "status_" + strconv.Itoa(int(s))
}

// Effect is one active timed status on a combatant.
type Effect struct {
	Status Status
	Until  int64 // server clock ms
	Power  int32
}
