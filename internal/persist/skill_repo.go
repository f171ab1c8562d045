package persist

import (
	"context"
	"fmt"

	"github.com/l1jgo/battlecore/internal/combat"
)

type SkillRepo struct {
	db *DB
}

func NewSkillRepo(db *DB) *SkillRepo {
	return &SkillRepo{db: db}
}

// LoadByCharID returns every learned skill of a character.
func (r *SkillRepo) LoadByCharID(ctx context.Context, charID uint32) ([]combat.SkillRecord, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT skill_id, level, experience, previous_level
		 FROM character_skills WHERE char_id = $1 ORDER BY skill_id`, charID,
	)
	if err != nil {
		return nil, fmt.Errorf("query skills of %d: %w", charID, err)
	}
	defer rows.Close()

	var result []combat.SkillRecord
	for rows.Next() {
		var rec combat.SkillRecord
		if err := rows.Scan(&rec.ID, &rec.Level, &rec.Experience, &rec.PreviousLevel); err != nil {
			return nil, err
		}
		result = append(result, rec)
	}
	return result, rows.Err()
}

// Save upserts one skill record.
func (r *SkillRepo) Save(ctx context.Context, charID uint32, rec combat.SkillRecord) error {
	_, err := r.db.Pool.Exec(ctx,
		`INSERT INTO character_skills (char_id, skill_id, level, experience, previous_level)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (char_id, skill_id) DO UPDATE SET
			level = EXCLUDED.level,
			experience = EXCLUDED.experience,
			previous_level = EXCLUDED.previous_level`,
		charID, rec.ID, rec.Level, rec.Experience, rec.PreviousLevel,
	)
	return err
}

func (r *SkillRepo) Delete(ctx context.Context, charID uint32, skillID uint16) error {
	_, err := r.db.Pool.Exec(ctx,
		`DELETE FROM character_skills WHERE char_id = $1 AND skill_id = $2`, charID, skillID,
	)
	return err
}
