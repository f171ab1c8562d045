package persist

import (
	"context"
	"fmt"

	"github.com/l1jgo/battlecore/internal/combat"
)

type ProficiencyRepo struct {
	db *DB
}

func NewProficiencyRepo(db *DB) *ProficiencyRepo {
	return &ProficiencyRepo{db: db}
}

func (r *ProficiencyRepo) LoadByCharID(ctx context.Context, charID uint32) ([]combat.ProficiencyRecord, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT weapon_type, level, experience, previous_level
		 FROM character_proficiencies WHERE char_id = $1 ORDER BY weapon_type`, charID,
	)
	if err != nil {
		return nil, fmt.Errorf("query proficiencies of %d: %w", charID, err)
	}
	defer rows.Close()

	var result []combat.ProficiencyRecord
	for rows.Next() {
		var rec combat.ProficiencyRecord
		if err := rows.Scan(&rec.ID, &rec.Level, &rec.Experience, &rec.PreviousLevel); err != nil {
			return nil, err
		}
		result = append(result, rec)
	}
	return result, rows.Err()
}

// Save upserts one proficiency record.
func (r *ProficiencyRepo) Save(ctx context.Context, charID uint32, rec combat.ProficiencyRecord) error {
	_, err := r.db.Pool.Exec(ctx,
		`INSERT INTO character_proficiencies (char_id, weapon_type, level, experience, previous_level)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (char_id, weapon_type) DO UPDATE SET
			level = EXCLUDED.level,
			experience = EXCLUDED.experience,
			previous_level = EXCLUDED.previous_level`,
		charID, rec.ID, rec.Level, rec.Experience, rec.PreviousLevel,
	)
	return err
}
