package combat

import "github.com/l1jgo/battlecore/internal/world"

// Message is anything the core asks the Notifier to deliver. The handler
// package encodes each concrete type into a packet.
type Message interface {
	message()
}

// EffectTarget is one (target, value) pair of a skill effect.
type EffectTarget struct {
	ID    uint32
	Value uint32
}

// SkillEffect 技能效果封包：單體技能 Data 為目標 ID，範圍技能帶施放座標。
type SkillEffect struct {
	CasterID uint32
	SkillID  uint16
	Level    uint16
	Data     uint32
	X, Y     int32
	Targets  []EffectTarget
}

func (e *SkillEffect) addTarget(id, value uint32) {
	e.Targets = append(e.Targets, EffectTarget{ID: id, Value: value})
}

// Attack is a plain melee or ranged swing.
type Attack struct {
	AttackerID uint32
	TargetID   uint32
	X, Y       int32
	Shoot      bool
	Damage     uint32
}

// Kill announces a finalized death.
type Kill struct {
	KillerID uint32
	VictimID uint32
	Value    uint32
}

// AbortMagic tells the client its cast was interrupted.
type AbortMagic struct {
	ID uint32
}

// DropMagic tells the client a skill was forgotten.
type DropMagic struct {
	OwnerID uint32
	SkillID uint16
}

// RoleEffect plays a named visual on a role.
type RoleEffect struct {
	ID   uint32
	Name string
}

// ItemUpdate refreshes an item's durability on the client.
type ItemUpdate struct {
	Item world.Item
}

// ItemDelete removes an item from the client.
type ItemDelete struct {
	UID uint32
}

// Spawn shows a new entity.
type Spawn struct {
	ID       uint32
	Name     string
	Lookface uint32
	X, Y     int32
	Life     int32
	Effect   bool // 播放出場特效
}

// Transform changes a role's displayed model.
type Transform struct {
	ID       uint32
	Lookface uint32
	Until    int64
}

// ActionKind is a general role action.
type ActionKind uint8

const (
	ActionSit ActionKind = iota + 1
	ActionStopMining
	ActionRevive
)

// Action plays a general role action.
type Action struct {
	ID   uint32
	Kind ActionKind
}

// Position is an authoritative relocation.
type Position struct {
	ID   uint32
	X, Y int32
}

// SkillInfo sends one skill record to its owner.
type SkillInfo struct {
	Record SkillRecord
}

// ProficiencyInfo sends one proficiency record to its owner.
type ProficiencyInfo struct {
	Record ProficiencyRecord
}

// SystemMessage is plain text for the owner's chat window.
type SystemMessage struct {
	Text string
}

func (*SkillEffect) message() {}
func (Attack) message() {}
func (Kill) message() {}
func (AbortMagic) message() {}
func (DropMagic) message() {}
func (RoleEffect) message() {}
func (ItemUpdate) message() {}
func (ItemDelete) message() {}
func (Spawn) message() {}
func (Transform) message() {}
func (Action) message() {}
func (Position) message() {}
func (SkillInfo) message() {}
func (ProficiencyInfo) message() {}
func (SystemMessage) message() {}
