package world

import (
	"sync/atomic"

	"github.com/sasha-s/go-deadlock"
)

// MapRules answers per-map combat questions. data.MapTable implements it.
type MapRules interface {
	IsPvpEnabled(mapID uint32) bool
	IsContestMap(mapID uint32) bool
}

// Team is a snapshot of a team's membership.
type Team struct {
	ID       uint32
	LeaderID uint32
	Members  []uint32 // 不含隊長
}

// Has reports whether id is the leader or a member.
func (t *Team) Has(id uint32) bool {
	if t == nil {
		return false
	}
	if t.LeaderID == id {
		return true
	}
	for _, m := range t.Members {
		if m == id {
			return true
		}
	}
	return false
}

// PetSpec describes a pet to spawn.
type PetSpec struct {
	TemplateID  uint32
	Name        string
	Lookface    uint32
	Level       uint8
	Life        int32
	AttackRange int32
	AttackSpeed int64
}

// petIDBase 寵物動態 ID 起始值，與角色 ID 區隔。
const petIDBase = 700_000_000

// State is the live entity registry: id index, AOI grid, teams and the
// territorial contest result. Safe for concurrent use.
type State struct {
	mu          deadlock.RWMutex
	entities    map[uint32]*Combatant
	aoi         *AOIGrid
	teams       map[uint32]*Team
	rules       MapRules
	screenRange int32

	nextPetID      atomic.Uint32
	nextTeamID     atomic.Uint32
	guildWarWinner atomic.Uint32
}

func NewState(rules MapRules, screenRange int32) *State {
	s := &State{
		entities:    make(map[uint32]*Combatant),
		aoi:         NewAOIGrid(),
		teams:       make(map[uint32]*Team),
		rules:       rules,
		screenRange: screenRange,
	}
	s.nextPetID.Store(petIDBase)
	return s
}

// ==================== 實體註冊 ====================

// Add registers a combatant and places it in the AOI grid.
func (s *State) Add(c *Combatant) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entities[c.ID] = c
	s.aoi.Add(c.ID, c.Pos(), c.MapID)
}

// Remove unregisters a combatant; returns it or nil.
func (s *State) Remove(id uint32) *Combatant {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.entities[id]
	if c == nil {
		return nil
	}
	delete(s.entities, id)
	s.aoi.Remove(id, c.Pos(), c.MapID)
	return c
}

// FindByID resolves a live combatant, nil if unknown.
func (s *State) FindByID(id uint32) *Combatant {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.entities[id]
}

// Count returns the number of live entities.
func (s *State) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entities)
}

// All calls fn for a snapshot of every entity.
func (s *State) All(fn func(*Combatant)) {
	s.mu.RLock()
	list := make([]*Combatant, 0, len(s.entities))
	for _, c := range s.entities {
		list = append(list, c)
	}
	s.mu.RUnlock()
	for _, c := range list {
		fn(c)
	}
}

// EntitiesInScreen returns every other entity on the same map within
// screen range of of.
func (s *State) EntitiesInScreen(of *Combatant) []*Combatant {
	center := of.Pos()
	s.mu.RLock()
	ids := s.aoi.Nearby(center, of.MapID)
	out := make([]*Combatant, 0, len(ids))
	for _, id := range ids {
		if id == of.ID {
			continue
		}
		c := s.entities[id]
		if c == nil || c.MapID != of.MapID {
			continue
		}
		out = append(out, c)
	}
	s.mu.RUnlock()

	n := 0
	for _, c := range out {
		if Distance(center, c.Pos()) <= s.screenRange {
			out[n] = c
			n++
		}
	}
	return out[:n]
}

// InScreen reports whether two points are within screen range.
func (s *State) InScreen(a, b Point) bool {
	return Distance(a, b) <= s.screenRange
}

// MoveTo relocates a combatant and keeps the AOI grid consistent.
func (s *State) MoveTo(c *Combatant, p Point) {
	s.mu.Lock()
	defer s.mu.Unlock()
	from := c.Pos()
	c.setPos(p)
	if _, ok := s.entities[c.ID]; ok {
		s.aoi.Move(c.ID, from, p, c.MapID)
	}
}

// ==================== 地圖規則 ====================

func (s *State) IsPvpEnabled(mapID uint32) bool {
	if s.rules == nil {
		return true
	}
	return s.rules.IsPvpEnabled(mapID)
}

func (s *State) IsContestMap(mapID uint32) bool {
	if s.rules == nil {
		return false
	}
	return s.rules.IsContestMap(mapID)
}

// ==================== 隊伍 ====================

// CreateTeam opens a team led by the given player.
func (s *State) CreateTeam(leader *Combatant) *Team {
	if leader.Player == nil {
		return nil
	}
	t := &Team{ID: s.nextTeamID.Add(1), LeaderID: leader.ID}
	s.mu.Lock()
	s.teams[t.ID] = t
	leader.Player.TeamID = t.ID
	s.mu.Unlock()
	return t
}

// JoinTeam adds a player to an existing team.
func (s *State) JoinTeam(teamID uint32, member *Combatant) bool {
	if member.Player == nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.teams[teamID]
	if t == nil || t.Has(member.ID) {
		return false
	}
	t.Members = append(t.Members, member.ID)
	member.Player.TeamID = teamID
	return true
}

// TeamOf returns a copy of the player's team, nil when not in one.
func (s *State) TeamOf(c *Combatant) *Team {
	if c.Player == nil {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	t := s.teams[c.Player.TeamID] // TeamID 只在持有 s.mu 時寫入
	if t == nil {
		return nil
	}
	cp := &Team{ID: t.ID, LeaderID: t.LeaderID, Members: make([]uint32, len(t.Members))}
	copy(cp.Members, t.Members)
	return cp
}

// ==================== 攻城戰 ====================

// GuildWarWinner returns the guild currently holding the territorial contest.
func (s *State) GuildWarWinner() uint32 { return s.guildWarWinner.Load() }

func (s *State) SetGuildWarWinner(guildID uint32) { s.guildWarWinner.Store(guildID) }

// ==================== 寵物 ====================

// SpawnPet creates a pet bound to owner at the owner's position.
func (s *State) SpawnPet(owner *Combatant, spec PetSpec) *Combatant {
	id := s.nextPetID.Add(1)
	pet := NewCombatant(id, KindPet, spec.Name, owner.MapID, owner.Pos(), Vitals{
		Life: spec.Life, MaxLife: spec.Life,
	})
	pet.Level = spec.Level
	pet.AttackRange = spec.AttackRange
	pet.AttackSpeed = spec.AttackSpeed
	pet.SetLookface(spec.Lookface)
	pet.Pet = &PetExt{OwnerID: owner.ID, TemplateID: spec.TemplateID}
	s.Add(pet)
	owner.SetPetID(id)
	return pet
}

// Despawn removes an entity from the world (pets on dismissal).
func (s *State) Despawn(id uint32) *Combatant {
	c := s.Remove(id)
	if c != nil && c.Pet != nil {
		if owner := s.FindByID(c.Pet.OwnerID); owner != nil && owner.PetID() == id {
			owner.SetPetID(0)
		}
	}
	return c
}
