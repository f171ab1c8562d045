package combat

import (
	"math/rand"

	"go.uber.org/zap"

	"github.com/l1jgo/battlecore/internal/config"
	"github.com/l1jgo/battlecore/internal/data"
	"github.com/l1jgo/battlecore/internal/world"
)

// Clock is the monotonic server tick clock in milliseconds.
type Clock interface {
	Now() int64
}

// World resolves live combatants and answers spatial and map-rule questions.
// world.State implements it.
type World interface {
	FindByID(id uint32) *world.Combatant
	EntitiesInScreen(of *world.Combatant) []*world.Combatant
	InScreen(a, b world.Point) bool
	IsPvpEnabled(mapID uint32) bool
	IsContestMap(mapID uint32) bool
	TeamOf(c *world.Combatant) *world.Team
	GuildWarWinner() uint32
	SpawnPet(owner *world.Combatant, spec world.PetSpec) *world.Combatant
	Despawn(id uint32) *world.Combatant
	MoveTo(c *world.Combatant, p world.Point)
}

// Repository loads and saves combat records and resolves static data.
// Save and delete calls must not block.
type Repository interface {
	SkillsOf(ownerID uint32) ([]SkillRecord, error)
	ProficienciesOf(ownerID uint32) ([]ProficiencyRecord, error)
	SkillDefinition(id, level uint16) *data.SkillDef
	MonsterTemplate(id uint32) *data.MonsterTemplate

	SaveSkill(ownerID uint32, r SkillRecord)
	DeleteSkill(ownerID uint32, skillID uint16)
	SaveProficiency(ownerID uint32, r ProficiencyRecord)
	SaveItem(ownerID uint32, it world.Item)
	DeleteItem(ownerID uint32, uid uint32)
}

// DamageService computes damage and experience. skill may be nil for plain swings.
type DamageService interface {
	PhysicalDamage(attacker, target *world.Combatant, skill *data.SkillDef) uint32
	SkillDamage(attacker, target *world.Combatant, skill *data.SkillDef, variance bool) uint32
	BowDamage(attacker, target *world.Combatant, skill *data.SkillDef) uint32
	ExperienceGain(attacker, target *world.Combatant, damage uint32) uint64
}

// Notifier delivers messages to clients.
type Notifier interface {
	SendTo(c *world.Combatant, msg Message)
	BroadcastToScreen(origin *world.Combatant, msg Message, includeSelf bool)
}

// Observer receives gameplay events the core does not act on itself.
type Observer interface {
	EntityKilled(killer, victim *world.Combatant, value uint32)
	SkillLeveled(owner *world.Combatant, r SkillRecord)
	ProficiencyLeveled(owner *world.Combatant, r ProficiencyRecord)
}

// Dice is the random source for procs.
type Dice interface {
	PercentSuccess(pct int) bool
	Intn(n int) int
}

// ActivityChecker reports whether another combatant's session is busy.
type ActivityChecker interface {
	IsActive(id uint32) bool
}

// Deps bundles every collaborator a Session needs.
type Deps struct {
	Clock    Clock
	World    World
	Repo     Repository
	Damage   DamageService
	Notify   Notifier
	Observer Observer
	Dice     Dice
	Sessions ActivityChecker

	WeaponSkills *data.WeaponSkillTable
	Contest      *data.ContestTable
	Config       config.CombatConfig
	Log          *zap.Logger
}

func (d *Deps) observer() Observer {
	if d.Observer == nil {
		return nopObserver{}
	}
	return d.Observer
}

type nopObserver struct{}

func (nopObserver) EntityKilled(_, _ *world.Combatant, _ uint32) {}
func (nopObserver) SkillLeveled(_ *world.Combatant, _ SkillRecord) {}
func (nopObserver) ProficiencyLeveled(_ *world.Combatant, _ ProficiencyRecord) {}

// RandomDice is the production Dice backed by math/rand.
type RandomDice struct{}

func (RandomDice) PercentSuccess(pct int) bool {
	if pct >= 100 {
		return true
	}
	if pct <= 0 {
		return false
	}
	return rand.Intn(100) < pct
}

func (RandomDice) Intn(n int) int {
	if n <= 1 {
		return 0
	}
	return rand.Intn(n)
}
