package persist

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/l1jgo/battlecore/internal/world"
)

// EquippedRow is one persisted equipped item.
type EquippedRow struct {
	Slot world.EquipSlot
	Item world.Item
}

type ItemRepo struct {
	db *DB
}

func NewItemRepo(db *DB) *ItemRepo {
	return &ItemRepo{db: db}
}

// LoadByCharID returns every equipped item of a character.
func (r *ItemRepo) LoadByCharID(ctx context.Context, charID uint32) ([]EquippedRow, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT uid, static_id, slot, durability, gem1, gem2
		 FROM character_items WHERE char_id = $1 ORDER BY slot`, charID,
	)
	if err != nil {
		return nil, fmt.Errorf("query items of %d: %w", charID, err)
	}
	defer rows.Close()

	var result []EquippedRow
	for rows.Next() {
		var (
			row  EquippedRow
			slot int16
		)
		if err := rows.Scan(
			&row.Item.UID, &row.Item.StaticID, &slot,
			&row.Item.Durability, &row.Item.Gem1, &row.Item.Gem2,
		); err != nil {
			return nil, err
		}
		row.Slot = world.EquipSlot(slot)
		result = append(result, row)
	}
	return result, rows.Err()
}

// SaveEquipment replaces all items for a character in one batch.
func (r *ItemRepo) SaveEquipment(ctx context.Context, charID uint32, items []EquippedRow) error {
	batch := &pgx.Batch{}
	batch.Queue(`DELETE FROM character_items WHERE char_id = $1`, charID)
	for _, it := range items {
		batch.Queue(
			`INSERT INTO character_items (uid, char_id, static_id, slot, durability, gem1, gem2)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			it.Item.UID, charID, it.Item.StaticID, int16(it.Slot),
			it.Item.Durability, int16(it.Item.Gem1), int16(it.Item.Gem2),
		)
	}

	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("save equipment of %d: %w", charID, err)
	}
	return tx.Commit(ctx)
}

// UpdateDurability writes back a single item's durability.
func (r *ItemRepo) UpdateDurability(ctx context.Context, charID uint32, it world.Item) error {
	_, err := r.db.Pool.Exec(ctx,
		`UPDATE character_items SET durability = $1 WHERE uid = $2 AND char_id = $3`,
		it.Durability, it.UID, charID,
	)
	return err
}

func (r *ItemRepo) Delete(ctx context.Context, charID, uid uint32) error {
	_, err := r.db.Pool.Exec(ctx,
		`DELETE FROM character_items WHERE uid = $1 AND char_id = $2`, uid, charID,
	)
	return err
}
