package handler

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/l1jgo/battlecore/internal/combat"
	"github.com/l1jgo/battlecore/internal/core/event"
	"github.com/l1jgo/battlecore/internal/net"
	"github.com/l1jgo/battlecore/internal/net/packet"
	"github.com/l1jgo/battlecore/internal/persist"
	"github.com/l1jgo/battlecore/internal/world"
)

// 新角色出生資料
const (
	startMapID    uint32 = 1002
	startX        int32  = 430
	startY        int32  = 380
	startLookface uint32 = 1003
	startLife     int32  = 100
	startMana     int32  = 30
	startStamina  int32  = 100
)

// HandleEnterWorld processes C_ENTERWORLD.
// Format: [opcode][character name\0]
func HandleEnterWorld(sess *net.Session, r *packet.Reader, deps *Deps) {
	name := strings.TrimSpace(r.ReadS())
	if name == "" {
		sendLoginResult(sess, packet.LoginNoCharacter)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()

	row, err := loadOrCreateCharacter(ctx, deps, sess.AccountName, name)
	if err != nil {
		if !errors.Is(err, persist.ErrNotFound) {
			deps.Log.Error("載入角色失敗", zap.String("name", name), zap.Error(err))
		}
		sendLoginResult(sess, packet.LoginNoCharacter)
		return
	}
	if row.AccountName != sess.AccountName {
		deps.Log.Warn("嘗試進入他人角色",
			zap.String("account", sess.AccountName), zap.String("name", name))
		sendLoginResult(sess, packet.LoginNoCharacter)
		return
	}
	if deps.World.FindByID(row.ID) != nil {
		sendLoginResult(sess, packet.LoginAlreadyOnline)
		return
	}

	p, err := row.ToCombatant(deps.Clock.Now())
	if err != nil {
		deps.Log.Error("還原角色狀態失敗", zap.Uint32("char", row.ID), zap.Error(err))
		sendLoginResult(sess, packet.LoginServerError)
		return
	}
	items, err := deps.Items.LoadByCharID(ctx, row.ID)
	if err != nil {
		deps.Log.Error("載入裝備失敗", zap.Uint32("char", row.ID), zap.Error(err))
		sendLoginResult(sess, packet.LoginServerError)
		return
	}
	for _, it := range items {
		p.Equip(it.Slot, it.Item)
	}

	deps.World.Add(p)
	deps.Hub.Bind(p.ID, sess)
	sess.CharID = p.ID
	sess.CharName = p.Name
	sendEnterWorld(sess, p)

	// Attach 會把技能與熟練度送給客戶端，必須在 Bind 之後
	if _, err := deps.Combat.Attach(p); err != nil {
		deps.Log.Error("建立戰鬥狀態失敗", zap.Uint32("char", p.ID), zap.Error(err))
		deps.Hub.Unbind(p.ID, sess)
		deps.World.Remove(p.ID)
		sess.CharID, sess.CharName = 0, ""
		sendLoginResult(sess, packet.LoginServerError)
		return
	}
	sess.SetState(packet.StateInWorld)

	p.EachEquipped(func(_ world.EquipSlot, it world.Item) {
		sess.Send(encodeItem(it))
	})
	for _, c := range deps.World.EntitiesInScreen(p) {
		sess.Send(Encode(spawnOf(c, false)))
	}
	deps.Hub.BroadcastToScreen(p, spawnOf(p, true), false)

	event.Emit(deps.Bus, event.PlayerLoggedIn{
		CharID:      p.ID,
		AccountName: sess.AccountName,
		SessionID:   sess.ID,
	})
	deps.Log.Info("進入世界",
		zap.String("account", sess.AccountName),
		zap.String("name", p.Name),
		zap.Uint32("char", p.ID),
	)
}

func loadOrCreateCharacter(ctx context.Context, deps *Deps, account, name string) (*persist.CharacterRow, error) {
	row, err := deps.Characters.LoadByName(ctx, name)
	if !errors.Is(err, persist.ErrNotFound) || !deps.Config.Server.AutoCreateAccounts {
		return row, err
	}
	row = &persist.CharacterRow{
		AccountName: account,
		Name:        name,
		Level:       1,
		Life:        startLife,
		MaxLife:     startLife,
		Mana:        startMana,
		MaxMana:     startMana,
		Stamina:     startStamina,
		Lookface:    startLookface,
		MapID:       startMapID,
		X:           startX,
		Y:           startY,
		PkMode:      int16(world.PkModePeace),
	}
	if err := deps.Characters.Create(ctx, row); err != nil {
		return nil, err
	}
	deps.Log.Info("建立角色", zap.String("account", account), zap.String("name", name), zap.Uint32("char", row.ID))
	return row, nil
}

// sendEnterWorld [DU id][S name][DU lookface][DU map][D x][D y]
// [D life][D maxLife][D mana][D maxMana][D stamina][C level][C pkMode]
func sendEnterWorld(sess *net.Session, p *world.Combatant) {
	pos := p.Pos()
	w := packet.NewWriterWithOpcode(packet.S_OPCODE_ENTERWORLD)
	w.WriteDU(p.ID)
	w.WriteS(p.Name)
	w.WriteDU(p.Lookface())
	w.WriteDU(p.MapID)
	w.WriteD(pos.X)
	w.WriteD(pos.Y)
	w.WriteD(p.Life())
	w.WriteD(p.MaxLife())
	w.WriteD(p.Mana())
	w.WriteD(p.MaxMana())
	w.WriteD(p.Stamina())
	w.WriteC(p.Level)
	w.WriteC(byte(p.PkMode()))
	sess.Send(w.Bytes())
}

// ==================== 離線與存檔 ====================

// HandleLogout processes C_LOGOUT: save everything and close the connection.
func HandleLogout(sess *net.Session, _ *packet.Reader, deps *Deps) {
	Logout(sess, deps)
	sess.Close()
}

// Logout removes the session's character from the world and queues its
// saves. Safe to call more than once. InputSystem also calls it for
// dropped connections.
func Logout(sess *net.Session, deps *Deps) {
	if sess.CharID != 0 {
		charID := sess.CharID
		// Detach 會中斷施法並存下技能與熟練度
		deps.Combat.Detach(charID)
		if p := deps.World.FindByID(charID); p != nil {
			if petID := p.PetID(); petID != 0 {
				deps.Combat.Detach(petID)
				deps.World.Despawn(petID)
			}
			SavePlayer(p, deps)
			deps.World.Remove(charID)
		}
		deps.Hub.Unbind(charID, sess)
		event.Emit(deps.Bus, event.PlayerDisconnected{CharID: charID, SessionID: sess.ID})
		deps.Log.Info("離開世界", zap.String("name", sess.CharName), zap.Uint32("char", charID))
		sess.CharID, sess.CharName = 0, ""
	}

	if sess.AccountName != "" {
		account := sess.AccountName
		deps.Writer.Enqueue("account offline", func(ctx context.Context) error {
			return deps.Accounts.SetOnline(ctx, account, false)
		})
		sess.AccountName = ""
	}
}

// SavePlayer queues a snapshot of p and its equipment.
func SavePlayer(p *world.Combatant, deps *Deps) {
	row, err := persist.CharacterSnapshot(p, deps.Clock.Now())
	if err != nil {
		deps.Log.Error("角色快照失敗", zap.Uint32("char", p.ID), zap.Error(err))
		return
	}
	var items []persist.EquippedRow
	p.EachEquipped(func(slot world.EquipSlot, it world.Item) {
		items = append(items, persist.EquippedRow{Slot: slot, Item: it})
	})
	deps.Writer.Enqueue("save character", func(ctx context.Context) error {
		if err := deps.Characters.SaveCharacter(ctx, row); err != nil {
			return err
		}
		return deps.Items.SaveEquipment(ctx, row.ID, items)
	})
}

// sessionOf returns the combat session of the character bound to sess.
func sessionOf(sess *net.Session, deps *Deps) *combat.Session {
	if sess.CharID == 0 {
		return nil
	}
	return deps.Combat.Get(sess.CharID)
}
