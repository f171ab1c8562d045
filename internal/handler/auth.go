package handler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/l1jgo/battlecore/internal/net"
	"github.com/l1jgo/battlecore/internal/net/packet"
	"github.com/l1jgo/battlecore/internal/persist"
)

var (
	errBadCredentials = errors.New("bad credentials")
	errAlreadyOnline  = errors.New("account already online")
)

// dbTimeout 封包處理中同步查詢資料庫的時限
const dbTimeout = 5 * time.Second

// HandleLogin processes C_LOGIN.
// Format: [opcode][account\0][password\0]
func HandleLogin(sess *net.Session, r *packet.Reader, deps *Deps) {
	name := strings.ToLower(strings.TrimSpace(r.ReadS()))
	password := r.ReadS()

	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()

	account, err := authenticate(ctx, deps, name, password, sess.IP)
	switch {
	case errors.Is(err, errBadCredentials):
		sendLoginResult(sess, packet.LoginBadCredentials)
		return
	case errors.Is(err, errAlreadyOnline):
		sendLoginResult(sess, packet.LoginAlreadyOnline)
		return
	case err != nil:
		deps.Log.Error("登入失敗", zap.String("account", name), zap.Error(err))
		sendLoginResult(sess, packet.LoginServerError)
		return
	}

	if err := deps.Accounts.SetOnline(ctx, name, true); err != nil {
		deps.Log.Error("設定上線狀態資料庫錯誤", zap.Error(err))
	}
	if err := deps.Accounts.UpdateLastActive(ctx, name, sess.IP); err != nil {
		deps.Log.Error("更新最後活動時間資料庫錯誤", zap.Error(err))
	}

	sess.AccountName = name
	sess.AccessLevel = account.AccessLevel
	sess.SetState(packet.StateAuthenticated)
	sendLoginResult(sess, packet.LoginOK)

	deps.Log.Info("登入成功", zap.String("account", name), zap.String("ip", sess.IP))
}

// authenticate checks the password, creating the account on first login
// when the server allows it.
func authenticate(ctx context.Context, deps *Deps, name, password, ip string) (*persist.AccountRow, error) {
	if name == "" || password == "" {
		return nil, errBadCredentials
	}
	account, err := deps.Accounts.Load(ctx, name)
	switch {
	case errors.Is(err, persist.ErrNotFound):
		if !deps.Config.Server.AutoCreateAccounts {
			return nil, errBadCredentials
		}
		account, err = deps.Accounts.Create(ctx, name, password, ip)
		if err != nil {
			return nil, fmt.Errorf("auto create: %w", err)
		}
		deps.Log.Info("自動建立帳號", zap.String("account", name))
		return account, nil
	case err != nil:
		return nil, err
	}

	if !persist.ValidatePassword(account.PasswordHash, password) || account.Banned {
		return nil, errBadCredentials
	}
	if account.Online {
		return nil, errAlreadyOnline
	}
	return account, nil
}

// sendLoginResult [C code]
func sendLoginResult(sess *net.Session, code byte) {
	w := packet.NewWriterWithOpcode(packet.S_OPCODE_LOGINRESULT)
	w.WriteC(code)
	sess.Send(w.Bytes())
}
