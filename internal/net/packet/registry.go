package packet

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// SessionState is the connection's protocol phase.
type SessionState int

const (
	StateConnected     SessionState = iota // 已連線，等待登入
	StateAuthenticated                     // 已登入，尚未進入世界
	StateInWorld
	StateDisconnecting
)

func (s SessionState) String() string {
	switch s {
	case StateConnected:
		return "Connected"
	case StateAuthenticated:
		return "Authenticated"
	case StateInWorld:
		return "InWorld"
	case StateDisconnecting:
		return "Disconnecting"
	default:
		return fmt.Sprintf("Unknown(%d)", int(s))
	}
}

// ErrStateNotAllowed is returned when an opcode arrives in the wrong phase.
var ErrStateNotAllowed = errors.New("opcode not allowed in this state")

// HandlerFunc is the callback signature for packet handlers.
// The session is passed as an opaque value to avoid import cycles.
type HandlerFunc func(sess any, r *Reader)

type handlerEntry struct {
	fn            HandlerFunc
	allowedStates map[SessionState]bool
}

// Registry maps opcodes to handlers with state-based access control.
type Registry struct {
	handlers map[byte]*handlerEntry
	log      *zap.Logger
}

func NewRegistry(log *zap.Logger) *Registry {
	return &Registry{
		handlers: make(map[byte]*handlerEntry),
		log:      log,
	}
}

// Register maps an opcode to a handler, restricted to the given session states.
func (reg *Registry) Register(opcode byte, states []SessionState, fn HandlerFunc) {
	allowed := make(map[SessionState]bool, len(states))
	for _, s := range states {
		allowed[s] = true
	}
	reg.handlers[opcode] = &handlerEntry{fn: fn, allowedStates: allowed}
}

// Registered reports whether a handler exists for opcode.
func (reg *Registry) Registered(opcode byte) bool {
	_, ok := reg.handlers[opcode]
	return ok
}

// Dispatch finds the handler for data[0], validates the session state and
// calls it. Unknown opcodes are ignored.
func (reg *Registry) Dispatch(sess any, state SessionState, data []byte) error {
	if len(data) == 0 {
		return errors.New("empty packet")
	}
	opcode := data[0]

	entry, ok := reg.handlers[opcode]
	if !ok {
		reg.log.Debug("未知操作碼", zap.Uint8("opcode", opcode), zap.Stringer("state", state))
		return nil
	}
	if !entry.allowedStates[state] {
		reg.log.Warn("操作碼在此狀態下不允許",
			zap.Uint8("opcode", opcode),
			zap.Stringer("state", state),
		)
		return fmt.Errorf("opcode %d in state %s: %w", opcode, state, ErrStateNotAllowed)
	}
	return reg.safeCall(entry.fn, sess, NewReader(data), opcode)
}

// safeCall 攔截 handler panic，單一壞封包不會拖垮遊戲迴圈。
func (reg *Registry) safeCall(fn HandlerFunc, sess any, r *Reader, opcode byte) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			reg.log.Error("處理器 panic 已恢復",
				zap.Uint8("opcode", opcode),
				zap.Any("panic", rec),
			)
			err = fmt.Errorf("handler panic for opcode %d: %v", opcode, rec)
		}
	}()
	fn(sess, r)
	return nil
}
