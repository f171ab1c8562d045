package handler

import (
	"github.com/l1jgo/battlecore/internal/combat"
	"github.com/l1jgo/battlecore/internal/net/packet"
	"github.com/l1jgo/battlecore/internal/world"
)

// Encode turns a combat message into a server packet. Unknown types
// return nil.
func Encode(msg combat.Message) []byte {
	switch m := msg.(type) {
	case *combat.SkillEffect:
		// [DU caster][H skill][H level][DU data][D x][D y][H n]{[DU id][DU value]}
		w := packet.NewWriterWithOpcode(packet.S_OPCODE_SKILLEFFECT)
		w.WriteDU(m.CasterID)
		w.WriteH(m.SkillID)
		w.WriteH(m.Level)
		w.WriteDU(m.Data)
		w.WriteD(m.X)
		w.WriteD(m.Y)
		w.WriteH(uint16(len(m.Targets)))
		for _, t := range m.Targets {
			w.WriteDU(t.ID)
			w.WriteDU(t.Value)
		}
		return w.Bytes()

	case combat.Attack:
		w := packet.NewWriterWithOpcode(packet.S_OPCODE_ATTACK)
		w.WriteDU(m.AttackerID)
		w.WriteDU(m.TargetID)
		w.WriteD(m.X)
		w.WriteD(m.Y)
		w.WriteBool(m.Shoot)
		w.WriteDU(m.Damage)
		return w.Bytes()

	case combat.Kill:
		w := packet.NewWriterWithOpcode(packet.S_OPCODE_KILL)
		w.WriteDU(m.KillerID)
		w.WriteDU(m.VictimID)
		w.WriteDU(m.Value)
		return w.Bytes()

	case combat.AbortMagic:
		w := packet.NewWriterWithOpcode(packet.S_OPCODE_ABORTMAGIC)
		w.WriteDU(m.ID)
		return w.Bytes()

	case combat.DropMagic:
		w := packet.NewWriterWithOpcode(packet.S_OPCODE_DROPMAGIC)
		w.WriteDU(m.OwnerID)
		w.WriteH(m.SkillID)
		return w.Bytes()

	case combat.RoleEffect:
		w := packet.NewWriterWithOpcode(packet.S_OPCODE_ROLEEFFECT)
		w.WriteDU(m.ID)
		w.WriteS(m.Name)
		return w.Bytes()

	case combat.ItemUpdate:
		return encodeItem(m.Item)

	case combat.ItemDelete:
		w := packet.NewWriterWithOpcode(packet.S_OPCODE_ITEMDELETE)
		w.WriteDU(m.UID)
		return w.Bytes()

	case combat.Spawn:
		w := packet.NewWriterWithOpcode(packet.S_OPCODE_SPAWN)
		w.WriteDU(m.ID)
		w.WriteS(m.Name)
		w.WriteDU(m.Lookface)
		w.WriteD(m.X)
		w.WriteD(m.Y)
		w.WriteD(m.Life)
		w.WriteBool(m.Effect)
		return w.Bytes()

	case combat.Transform:
		w := packet.NewWriterWithOpcode(packet.S_OPCODE_TRANSFORM)
		w.WriteDU(m.ID)
		w.WriteDU(m.Lookface)
		w.WriteQ(m.Until)
		return w.Bytes()

	case combat.Action:
		w := packet.NewWriterWithOpcode(packet.S_OPCODE_ACTION)
		w.WriteDU(m.ID)
		w.WriteC(byte(m.Kind))
		return w.Bytes()

	case combat.Position:
		w := packet.NewWriterWithOpcode(packet.S_OPCODE_POSITION)
		w.WriteDU(m.ID)
		w.WriteD(m.X)
		w.WriteD(m.Y)
		return w.Bytes()

	case combat.SkillInfo:
		w := packet.NewWriterWithOpcode(packet.S_OPCODE_SKILLINFO)
		w.WriteH(m.Record.ID)
		w.WriteH(m.Record.Level)
		w.WriteDU(m.Record.Experience)
		return w.Bytes()

	case combat.ProficiencyInfo:
		w := packet.NewWriterWithOpcode(packet.S_OPCODE_PROFICIENCYINFO)
		w.WriteH(m.Record.ID)
		w.WriteH(m.Record.Level)
		w.WriteDU(m.Record.Experience)
		return w.Bytes()

	case combat.SystemMessage:
		return encodeSystemMessage(m.Text)
	}
	return nil
}

func encodeItem(it world.Item) []byte {
	w := packet.NewWriterWithOpcode(packet.S_OPCODE_ITEMUPDATE)
	w.WriteDU(it.UID)
	w.WriteDU(it.StaticID)
	w.WriteD(it.Durability)
	w.WriteC(it.Gem1)
	w.WriteC(it.Gem2)
	return w.Bytes()
}

func encodeSystemMessage(text string) []byte {
	w := packet.NewWriterWithOpcode(packet.S_OPCODE_SYSMSG)
	w.WriteS(text)
	return w.Bytes()
}

// spawnOf describes c for a Spawn packet.
func spawnOf(c *world.Combatant, effect bool) combat.Spawn {
	pos := c.Pos()
	return combat.Spawn{
		ID:       c.ID,
		Name:     c.Name,
		Lookface: c.Lookface(),
		X:        pos.X,
		Y:        pos.Y,
		Life:     c.Life(),
		Effect:   effect,
	}
}
