package persist

import (
	"context"
	"time"

	"github.com/l1jgo/battlecore/internal/combat"
	"github.com/l1jgo/battlecore/internal/data"
	"github.com/l1jgo/battlecore/internal/world"
)

// loadTimeout 登入時載入戰鬥紀錄的時限
const loadTimeout = 5 * time.Second

type skillStore interface {
	LoadByCharID(ctx context.Context, charID uint32) ([]combat.SkillRecord, error)
	Save(ctx context.Context, charID uint32, rec combat.SkillRecord) error
	Delete(ctx context.Context, charID uint32, skillID uint16) error
}

type proficiencyStore interface {
	LoadByCharID(ctx context.Context, charID uint32) ([]combat.ProficiencyRecord, error)
	Save(ctx context.Context, charID uint32, rec combat.ProficiencyRecord) error
}

type itemStore interface {
	UpdateDurability(ctx context.Context, charID uint32, it world.Item) error
	Delete(ctx context.Context, charID, uid uint32) error
}

// Store is the combat core's Repository: static tables answer definition
// lookups, repositories load records, and every save goes through the
// Writer.
type Store struct {
	skills   *data.SkillTable
	monsters *data.MonsterTable
	skillDB  skillStore
	profDB   proficiencyStore
	itemDB   itemStore
	writer   *Writer
}

func NewStore(skills *data.SkillTable, monsters *data.MonsterTable,
	skillDB skillStore, profDB proficiencyStore, itemDB itemStore, w *Writer) *Store {
	return &Store{
		skills:   skills,
		monsters: monsters,
		skillDB:  skillDB,
		profDB:   profDB,
		itemDB:   itemDB,
		writer:   w,
	}
}

var _ combat.Repository = (*Store)(nil)

func (s *Store) SkillsOf(ownerID uint32) ([]combat.SkillRecord, error) {
	ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
	defer cancel()
	return s.skillDB.LoadByCharID(ctx, ownerID)
}

func (s *Store) ProficienciesOf(ownerID uint32) ([]combat.ProficiencyRecord, error) {
	ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
	defer cancel()
	return s.profDB.LoadByCharID(ctx, ownerID)
}

func (s *Store) SkillDefinition(id, level uint16) *data.SkillDef {
	return s.skills.Get(id, level)
}

func (s *Store) MonsterTemplate(id uint32) *data.MonsterTemplate {
	return s.monsters.Get(id)
}

func (s *Store) SaveSkill(ownerID uint32, rec combat.SkillRecord) {
	s.writer.Enqueue("save skill", func(ctx context.Context) error {
		return s.skillDB.Save(ctx, ownerID, rec)
	})
}

func (s *Store) DeleteSkill(ownerID uint32, skillID uint16) {
	s.writer.Enqueue("delete skill", func(ctx context.Context) error {
		return s.skillDB.Delete(ctx, ownerID, skillID)
	})
}

func (s *Store) SaveProficiency(ownerID uint32, rec combat.ProficiencyRecord) {
	s.writer.Enqueue("save proficiency", func(ctx context.Context) error {
		return s.profDB.Save(ctx, ownerID, rec)
	})
}

func (s *Store) SaveItem(ownerID uint32, it world.Item) {
	s.writer.Enqueue("save item", func(ctx context.Context) error {
		return s.itemDB.UpdateDurability(ctx, ownerID, it)
	})
}

func (s *Store) DeleteItem(ownerID uint32, uid uint32) {
	s.writer.Enqueue("delete item", func(ctx context.Context) error {
		return s.itemDB.Delete(ctx, ownerID, uid)
	})
}
