package world

import (
	"sync/atomic"

	"github.com/sasha-s/go-deadlock"
)

// Kind 戰鬥單位的種類標籤。所有分支都依這個標籤判斷，不做型別斷言。
type Kind uint8

const (
	KindPlayer Kind = iota + 1
	KindMonster
	KindPet
	KindStatic // 可攻擊的建築（攻城物件、稻草人、木樁）
)

func (k Kind) String() string {
	switch k {
	case KindPlayer:
		return "player"
	case KindMonster:
		return "monster"
	case KindPet:
		return "pet"
	case KindStatic:
		return "static"
	default:
		return "unknown"
	}
}

// PkMode 玩家的 PK 模式。
type PkMode uint8

const (
	PkModeOpen    PkMode = iota // 全體攻擊
	PkModePeace                 // 和平
	PkModeTeam                  // 隊伍（不攻擊隊友與同盟）
	PkModeCapture               // 捕捉（只攻擊閃藍／黑名）
)

func (m PkMode) String() string {
	switch m {
	case PkModeOpen:
		return "open"
	case PkModePeace:
		return "peace"
	case PkModeTeam:
		return "team"
	case PkModeCapture:
		return "capture"
	default:
		return "unknown"
	}
}

// PlayerExt holds player-only state. Mutable fields are guarded by the
// owning Combatant's lock and reached through Combatant methods.
type PlayerExt struct {
	AccountName string
	TeamID      uint32
	GuildID     uint32
	RebornCount uint8

	pkMode        PkMode
	experience    uint64
	koCount       uint32
	equipment     Equipment
	mining        bool
	petID         uint32
	luckyStarted  int64
	luckyTime     int64
	luckyAbsorbAt int64
}

// MonsterExt holds monster-only data.
type MonsterExt struct {
	TemplateID uint32
	AttackMode uint8 // 3 = 主動攻擊玩家
}

// PetExt holds pet-only data.
type PetExt struct {
	OwnerID    uint32
	TemplateID uint32
	target     atomic.Uint32
}

// Target returns the id the pet is currently assisting against.
func (p *PetExt) Target() uint32 { return p.target.Load() }

// SetTarget points the pet at a new target.
func (p *PetExt) SetTarget(id uint32) { p.target.Store(id) }

// StaticExt holds data for attackable structures.
type StaticExt struct {
	Mesh uint32
}

// Combatant is any entity that can fight. Exactly one of the extension
// pointers matching Kind is non-nil.
type Combatant struct {
	ID          uint32
	Kind        Kind
	Name        string
	MapID       uint32
	Level       uint8
	AttackRange int32
	AttackSpeed int64 // ms per swing

	Player  *PlayerExt
	Monster *MonsterExt
	Pet     *PetExt
	Static  *StaticExt

	mu            deadlock.RWMutex
	pos           Point
	life          int32
	maxLife       int32
	mana          int32
	maxMana       int32
	stamina       int32
	dead          bool
	killValue     uint32
	killerID      uint32
	lookface      uint32
	disguise      uint32
	disguiseUntil int64
	effects       map[Status]Effect
}

// Vitals is the initial stat block for a new combatant.
type Vitals struct {
	Life, MaxLife int32
	Mana, MaxMana int32
	Stamina       int32
}

// NewCombatant creates a combatant at pos. The caller fills the extension
// matching kind.
func NewCombatant(id uint32, kind Kind, name string, mapID uint32, pos Point, v Vitals) *Combatant {
	return &Combatant{
		ID:      id,
		Kind:    kind,
		Name:    name,
		MapID:   mapID,
		pos:     pos,
		life:    v.Life,
		maxLife: v.MaxLife,
		mana:    v.Mana,
		maxMana: v.MaxMana,
		stamina: v.Stamina,
		effects: make(map[Status]Effect),
	}
}

// NewPlayer creates a player combatant with an empty equipment set.
func NewPlayer(id uint32, name string, mapID uint32, pos Point, v Vitals) *Combatant {
	c := NewCombatant(id, KindPlayer, name, mapID, pos, v)
	c.Player = &PlayerExt{}
	return c
}

// ==================== 位置 ====================

func (c *Combatant) Pos() Point {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.pos
}

// setPos is only called by State so the AOI grid stays in sync.
func (c *Combatant) setPos(p Point) {
	c.mu.Lock()
	c.pos = p
	c.mu.Unlock()
}

// ==================== 生命／魔力／體力 ====================

// IsAlive reports whether the combatant has life left and has not been
// finalized as dead.
func (c *Combatant) IsAlive() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.life > 0 && !c.dead
}

func (c *Combatant) Life() int32 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.life
}

func (c *Combatant) MaxLife() int32 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.maxLife
}

func (c *Combatant) Mana() int32 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.mana
}

func (c *Combatant) MaxMana() int32 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.maxMana
}

func (c *Combatant) Stamina() int32 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stamina
}

// ReceiveDamage lowers life by dmg (floored at zero) and returns what is left.
// Concurrent attackers race here; last writer wins.
func (c *Combatant) ReceiveDamage(dmg uint32) int32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if int64(dmg) >= int64(c.life) {
		c.life = 0
	} else {
		c.life -= int32(dmg)
	}
	return c.life
}

// Heal raises life by amount, capped at max life. Returns the amount restored.
func (c *Combatant) Heal(amount int32) int32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	before := c.life
	c.life += amount
	if c.life > c.maxLife {
		c.life = c.maxLife
	}
	return c.life - before
}

// AddMana raises mana by amount, capped at max mana.
func (c *Combatant) AddMana(amount int32) int32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	before := c.mana
	c.mana += amount
	if c.mana > c.maxMana {
		c.mana = c.maxMana
	}
	return c.mana - before
}

// AddStamina raises stamina by amount, capped at 100.
func (c *Combatant) AddStamina(amount int32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stamina += amount
	if c.stamina > 100 {
		c.stamina = 100
	}
}

// Spend debits mana and stamina together. Nothing is debited unless both
// are sufficient.
func (c *Combatant) Spend(mana, stamina int32) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.mana < mana || c.stamina < stamina {
		return false
	}
	c.mana -= mana
	c.stamina -= stamina
	return true
}

// Die finalizes death. Returns false if the combatant was already dead.
func (c *Combatant) Die(killerID, value uint32) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.dead {
		return false
	}
	c.dead = true
	c.life = 0
	c.killerID = killerID
	c.killValue = value
	return true
}

// KillInfo returns who finalized the death and with which kill value.
func (c *Combatant) KillInfo() (killerID, value uint32) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.killerID, c.killValue
}

// Revive brings a dead combatant back at full life.
func (c *Combatant) Revive() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dead = false
	c.life = c.maxLife
	c.killerID, c.killValue = 0, 0
}

// ==================== 狀態效果 ====================

func (c *Combatant) HasEffect(s Status) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.effects[s]
	return ok
}

// AddEffect applies a timed status. Dead combatants and structures reject
// every status.
func (c *Combatant) AddEffect(s Status, until int64, power int32) bool {
	if c.Kind == KindStatic {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.dead || c.life <= 0 {
		return false
	}
	c.effects[s] = Effect{Status: s, Until: until, Power: power}
	return true
}

// RemoveEffect drops a status; reports whether it was present.
func (c *Combatant) RemoveEffect(s Status) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.effects[s]
	delete(c.effects, s)
	return ok
}

// ExtendEffect pushes an active status' expiry back by ms.
func (c *Combatant) ExtendEffect(s Status, ms int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.effects[s]; ok {
		e.Until += ms
		c.effects[s] = e
	}
}

// Effect returns one active status.
func (c *Combatant) Effect(s Status) (Effect, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.effects[s]
	return e, ok
}

// Effects returns a snapshot of all active statuses.
func (c *Combatant) Effects() []Effect {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Effect, 0, len(c.effects))
	for _, e := range c.effects {
		out = append(out, e)
	}
	return out
}

// ExpireEffects removes every status whose expiry is at or before now and
// returns the removed ones.
func (c *Combatant) ExpireEffects(now int64) []Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	var expired []Status
	for s, e := range c.effects {
		if e.Until <= now {
			delete(c.effects, s)
			expired = append(expired, s)
		}
	}
	return expired
}

// ==================== 外觀 ====================

// Lookface returns the displayed model, honouring an active disguise.
func (c *Combatant) Lookface() uint32 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.disguise != 0 {
		return c.disguise
	}
	return c.lookface
}

// BaseLookface returns the model without any disguise.
func (c *Combatant) BaseLookface() uint32 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lookface
}

func (c *Combatant) SetLookface(v uint32) {
	c.mu.Lock()
	c.lookface = v
	c.mu.Unlock()
}

// SetDisguise transforms the combatant into another model until the given time.
func (c *Combatant) SetDisguise(lookface uint32, until int64) {
	c.mu.Lock()
	c.disguise = lookface
	c.disguiseUntil = until
	c.mu.Unlock()
}

// ExpireDisguise clears a disguise whose time is up. Reports whether it did.
func (c *Combatant) ExpireDisguise(now int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.disguise == 0 || c.disguiseUntil > now {
		return false
	}
	c.disguise, c.disguiseUntil = 0, 0
	return true
}

// ==================== 玩家專屬 ====================

func (c *Combatant) PkMode() PkMode {
	if c.Player == nil {
		return PkModeOpen
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.Player.pkMode
}

func (c *Combatant) SetPkMode(m PkMode) {
	if c.Player == nil {
		return
	}
	c.mu.Lock()
	c.Player.pkMode = m
	c.mu.Unlock()
}

func (c *Combatant) Experience() uint64 {
	if c.Player == nil {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.Player.experience
}

// GainExperience adds character experience. No-op for non-players.
func (c *Combatant) GainExperience(n uint64) {
	if c.Player == nil || n == 0 {
		return
	}
	c.mu.Lock()
	c.Player.experience += n
	c.mu.Unlock()
}

func (c *Combatant) KOCount() uint32 {
	if c.Player == nil {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.Player.koCount
}

// IncKOCount bumps the kill counter and returns the value before the bump.
func (c *Combatant) IncKOCount() uint32 {
	if c.Player == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	prev := c.Player.koCount
	c.Player.koCount++
	return prev
}

func (c *Combatant) ResetKOCount() {
	if c.Player == nil {
		return
	}
	c.mu.Lock()
	c.Player.koCount = 0
	c.mu.Unlock()
}

func (c *Combatant) IsMining() bool {
	if c.Player == nil {
		return false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.Player.mining
}

func (c *Combatant) SetMining(v bool) {
	if c.Player == nil {
		return
	}
	c.mu.Lock()
	c.Player.mining = v
	c.mu.Unlock()
}

// PetID returns the id of the player's live pet, 0 if none.
func (c *Combatant) PetID() uint32 {
	if c.Player == nil {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.Player.petID
}

func (c *Combatant) SetPetID(id uint32) {
	if c.Player == nil {
		return
	}
	c.mu.Lock()
	c.Player.petID = id
	c.mu.Unlock()
}

// ==================== 裝備 ====================

// Equip places a copy of item into slot.
func (c *Combatant) Equip(slot EquipSlot, item Item) {
	if c.Player == nil {
		return
	}
	c.mu.Lock()
	it := item
	c.Player.equipment.Set(slot, &it)
	c.mu.Unlock()
}

// EquippedItem returns a copy of the item in slot.
func (c *Combatant) EquippedItem(slot EquipSlot) (Item, bool) {
	if c.Player == nil {
		return Item{}, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	it := c.Player.equipment.Get(slot)
	if it == nil {
		return Item{}, false
	}
	return *it, true
}

// HasEquipment reports whether the combatant carries an equipment set.
func (c *Combatant) HasEquipment() bool {
	return c.Player != nil
}

// EachEquipped calls fn with a copy of every equipped item.
func (c *Combatant) EachEquipped(fn func(EquipSlot, Item)) {
	if c.Player == nil {
		return
	}
	c.mu.RLock()
	var items []struct {
		slot EquipSlot
		item Item
	}
	c.Player.equipment.Each(func(s EquipSlot, it *Item) {
		items = append(items, struct {
			slot EquipSlot
			item Item
		}{s, *it})
	})
	c.mu.RUnlock()
	for _, e := range items {
		fn(e.slot, e.item)
	}
}

// WeaponType returns the right-hand weapon family, 0 when bare handed.
func (c *Combatant) WeaponType() uint16 {
	it, ok := c.EquippedItem(SlotWeaponR)
	if !ok {
		return 0
	}
	return it.Subtype()
}

// ConsumeDurability takes n points of durability from the item in slot.
// Fails without touching the item when it is missing or short. An item
// reaching zero is unequipped; depleted reports that case.
func (c *Combatant) ConsumeDurability(slot EquipSlot, n int32) (after Item, depleted, ok bool) {
	if c.Player == nil {
		return Item{}, false, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	it := c.Player.equipment.Get(slot)
	if it == nil || it.Durability < n {
		return Item{}, false, false
	}
	it.Durability -= n
	after = *it
	if it.Durability == 0 {
		c.Player.equipment.Unequip(slot)
		depleted = true
	}
	return after, depleted, true
}

// ==================== 幸運時間 ====================

// StartLuckyTime starts accruing lucky time at now.
func (c *Combatant) StartLuckyTime(now int64) {
	if c.Player == nil {
		return
	}
	c.mu.Lock()
	c.Player.luckyStarted = now
	c.Player.luckyAbsorbAt = 0
	c.mu.Unlock()
}

// LuckyTimeCheck banks the time accrued since the timer started and
// restarts it at now.
func (c *Combatant) LuckyTimeCheck(now int64) {
	if c.Player == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Player.luckyStarted != 0 && now > c.Player.luckyStarted {
		c.Player.luckyTime += now - c.Player.luckyStarted
		c.Player.luckyStarted = now
	}
}

// StopLuckyTime banks the time accrued up to now and stops the timer.
func (c *Combatant) StopLuckyTime(now int64) {
	if c.Player == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Player.luckyStarted != 0 && now > c.Player.luckyStarted {
		c.Player.luckyTime += now - c.Player.luckyStarted
	}
	c.Player.luckyStarted = 0
}

// LuckyTime returns the banked lucky time in ms.
func (c *Combatant) LuckyTime() int64 {
	if c.Player == nil {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.Player.luckyTime
}

func (c *Combatant) LuckyAbsorbTimer() int64 {
	if c.Player == nil {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.Player.luckyAbsorbAt
}

func (c *Combatant) SetLuckyAbsorbTimer(at int64) {
	if c.Player == nil {
		return
	}
	c.mu.Lock()
	c.Player.luckyAbsorbAt = at
	c.mu.Unlock()
}
