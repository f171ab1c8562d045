package persist

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/l1jgo/battlecore/internal/world"
)

type CharacterRow struct {
	ID          uint32
	AccountName string
	Name        string
	Level       int16
	Exp         int64
	Life        int32
	MaxLife     int32
	Mana        int32
	MaxMana     int32
	Stamina     int32
	Lookface    uint32
	MapID       uint32
	X           int32
	Y           int32
	PkMode      int16
	GuildID     uint32
	RebornCount int16
	Effects     []byte // msgpack，見 EncodeEffects
}

const characterColumns = `id, account_name, name, level, exp,
	life, max_life, mana, max_mana, stamina, lookface,
	map_id, x, y, pk_mode, guild_id, reborn_count, effects`

func scanCharacter(row pgx.Row) (*CharacterRow, error) {
	c := &CharacterRow{}
	err := row.Scan(
		&c.ID, &c.AccountName, &c.Name, &c.Level, &c.Exp,
		&c.Life, &c.MaxLife, &c.Mana, &c.MaxMana, &c.Stamina, &c.Lookface,
		&c.MapID, &c.X, &c.Y, &c.PkMode, &c.GuildID, &c.RebornCount, &c.Effects,
	)
	return c, err
}

type CharacterRepo struct {
	db *DB
}

func NewCharacterRepo(db *DB) *CharacterRepo {
	return &CharacterRepo{db: db}
}

func (r *CharacterRepo) LoadByAccount(ctx context.Context, accountName string) ([]CharacterRow, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+characterColumns+` FROM characters WHERE account_name = $1 ORDER BY id`,
		accountName,
	)
	if err != nil {
		return nil, fmt.Errorf("query characters of %s: %w", accountName, err)
	}
	defer rows.Close()

	var result []CharacterRow
	for rows.Next() {
		c, err := scanCharacter(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *c)
	}
	return result, rows.Err()
}

// LoadByName returns one character or ErrNotFound.
func (r *CharacterRepo) LoadByName(ctx context.Context, name string) (*CharacterRow, error) {
	c, err := scanCharacter(r.db.Pool.QueryRow(ctx,
		`SELECT `+characterColumns+` FROM characters WHERE name = $1`, name,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load character %s: %w", name, err)
	}
	return c, nil
}

// Create inserts a new character and fills c.ID.
func (r *CharacterRepo) Create(ctx context.Context, c *CharacterRow) error {
	return r.db.Pool.QueryRow(ctx,
		`INSERT INTO characters (
			account_name, name, level, exp, life, max_life, mana, max_mana,
			stamina, lookface, map_id, x, y, pk_mode, guild_id, reborn_count
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
		RETURNING id`,
		c.AccountName, c.Name, c.Level, c.Exp, c.Life, c.MaxLife, c.Mana, c.MaxMana,
		c.Stamina, c.Lookface, c.MapID, c.X, c.Y, c.PkMode, c.GuildID, c.RebornCount,
	).Scan(&c.ID)
}

// SaveCharacter updates all mutable character fields (position, vitals, combat state).
func (r *CharacterRepo) SaveCharacter(ctx context.Context, c *CharacterRow) error {
	_, err := r.db.Pool.Exec(ctx,
		`UPDATE characters SET
			level = $1, exp = $2, life = $3, max_life = $4, mana = $5, max_mana = $6,
			stamina = $7, lookface = $8, map_id = $9, x = $10, y = $11,
			pk_mode = $12, guild_id = $13, reborn_count = $14, effects = $15,
			updated_at = NOW()
		WHERE id = $16`,
		c.Level, c.Exp, c.Life, c.MaxLife, c.Mana, c.MaxMana,
		c.Stamina, c.Lookface, c.MapID, c.X, c.Y,
		c.PkMode, c.GuildID, c.RebornCount, c.Effects,
		c.ID,
	)
	return err
}

// ==================== 與世界實體互轉 ====================

// ToCombatant builds a live player from a row. Effects are restored
// relative to now.
func (c *CharacterRow) ToCombatant(now int64) (*world.Combatant, error) {
	p := world.NewPlayer(c.ID, c.Name, c.MapID, world.Point{X: c.X, Y: c.Y}, world.Vitals{
		Life: c.Life, MaxLife: c.MaxLife,
		Mana: c.Mana, MaxMana: c.MaxMana,
		Stamina: c.Stamina,
	})
	p.Level = uint8(c.Level)
	p.AttackRange = 1
	p.AttackSpeed = 1000
	p.Player.AccountName = c.AccountName
	p.Player.GuildID = c.GuildID
	p.Player.RebornCount = uint8(c.RebornCount)
	p.SetLookface(c.Lookface)
	p.SetPkMode(world.PkMode(c.PkMode))
	if c.Exp > 0 {
		p.GainExperience(uint64(c.Exp))
	}

	effects, err := DecodeEffects(c.Effects, now)
	if err != nil {
		return nil, fmt.Errorf("character %d: %w", c.ID, err)
	}
	for _, e := range effects {
		p.AddEffect(e.Status, e.Until, e.Power)
	}
	return p, nil
}

// CharacterSnapshot captures the persistable state of a live player.
func CharacterSnapshot(p *world.Combatant, now int64) (*CharacterRow, error) {
	blob, err := EncodeEffects(p.Effects(), now)
	if err != nil {
		return nil, fmt.Errorf("character %d: %w", p.ID, err)
	}
	pos := p.Pos()
	row := &CharacterRow{
		ID:       p.ID,
		Name:     p.Name,
		Level:    int16(p.Level),
		Exp:      int64(p.Experience()),
		Life:     p.Life(),
		MaxLife:  p.MaxLife(),
		Mana:     p.Mana(),
		MaxMana:  p.MaxMana(),
		Stamina:  p.Stamina(),
		Lookface: p.BaseLookface(),
		MapID:    p.MapID,
		X:        pos.X,
		Y:        pos.Y,
		PkMode:   int16(p.PkMode()),
		Effects:  blob,
	}
	if p.Player != nil {
		row.AccountName = p.Player.AccountName
		row.GuildID = p.Player.GuildID
		row.RebornCount = int16(p.Player.RebornCount)
	}
	return row, nil
}
