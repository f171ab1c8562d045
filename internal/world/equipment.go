package world

// EquipSlot identifies an equipment slot on a character.
type EquipSlot int

const (
	SlotNone     EquipSlot = 0
	SlotHelmet   EquipSlot = 1
	SlotNecklace EquipSlot = 2
	SlotArmor    EquipSlot = 3
	SlotWeaponR  EquipSlot = 4
	SlotWeaponL  EquipSlot = 5 // 左手：盾、副手武器或箭袋
	SlotRing     EquipSlot = 6
	SlotGourd    EquipSlot = 7
	SlotBoots    EquipSlot = 8
	SlotMax      EquipSlot = 9
)

// WeaponTypeBow 弓類武器子類型（道具編號 / 1000）。
const WeaponTypeBow uint16 = 500

// ArrowSubtype 箭矢子類型（技能表 use_item 欄位）。
const ArrowSubtype uint16 = 50

// Item is an equipped item instance.
type Item struct {
	UID        uint32
	StaticID   uint32
	Durability int32
	Gem1       uint8
	Gem2       uint8
}

// Subtype returns the item family, e.g. 410 for blades and 500 for bows.
func (it *Item) Subtype() uint16 {
	return uint16(it.StaticID / 1000)
}

// Equipment tracks what a player currently has equipped.
// Guarded by the owning combatant's lock.
type Equipment struct {
	slots [SlotMax]*Item
}

// Get returns the item in a slot, or nil (also for out-of-range slots).
func (e *Equipment) Get(slot EquipSlot) *Item {
	if e == nil || slot <= SlotNone || slot >= SlotMax {
		return nil
	}
	return e.slots[slot]
}

// Set places an item in a slot (or nil to clear).
func (e *Equipment) Set(slot EquipSlot, item *Item) {
	if slot > SlotNone && slot < SlotMax {
		e.slots[slot] = item
	}
}

// Unequip clears a slot and returns what was there.
func (e *Equipment) Unequip(slot EquipSlot) *Item {
	it := e.Get(slot)
	if it != nil {
		e.slots[slot] = nil
	}
	return it
}

// Each calls fn for every occupied slot in slot order.
func (e *Equipment) Each(fn func(EquipSlot, *Item)) {
	if e == nil {
		return
	}
	for s := SlotHelmet; s < SlotMax; s++ {
		if it := e.slots[s]; it != nil {
			fn(s, it)
		}
	}
}
