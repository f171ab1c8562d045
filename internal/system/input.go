package system

import (
	"time"

	"go.uber.org/zap"

	coresys "github.com/l1jgo/battlecore/internal/core/system"
	"github.com/l1jgo/battlecore/internal/handler"
	"github.com/l1jgo/battlecore/internal/net"
	"github.com/l1jgo/battlecore/internal/net/packet"
)

// InputSystem accepts new sessions, drains packet queues and dispatches
// them through the packet registry. Phase 0 (Input).
type InputSystem struct {
	newSessions <-chan *net.Session
	registry    *packet.Registry
	store       *net.SessionStore
	deps        *handler.Deps
	maxPerTick  int
	log         *zap.Logger
}

func NewInputSystem(
	newSessions <-chan *net.Session,
	registry *packet.Registry,
	store *net.SessionStore,
	deps *handler.Deps,
	maxPerTick int,
	log *zap.Logger,
) *InputSystem {
	if maxPerTick <= 0 {
		maxPerTick = 32
	}
	return &InputSystem{
		newSessions: newSessions,
		registry:    registry,
		store:       store,
		deps:        deps,
		maxPerTick:  maxPerTick,
		log:         log,
	}
}

func (s *InputSystem) Phase() coresys.Phase { return coresys.PhaseInput }

func (s *InputSystem) Update(_ time.Duration) {
	s.acceptNew()

	for _, sess := range s.store.Snapshot() {
		if sess.IsClosed() {
			// 斷線前送達的封包（例如登出）仍要處理
			s.drain(sess)
			sess.FlushOutput()
			handler.Logout(sess, s.deps)
			s.store.Remove(sess.ID)
			s.log.Info("玩家斷線", zap.Uint64("session", sess.ID), zap.String("ip", sess.IP))
			continue
		}
		s.drain(sess)
	}

	// 提前 flush：Phase 0 產生的封包立即進入 OutQueue
	s.store.ForEach(func(sess *net.Session) {
		sess.FlushOutput()
	})
}

func (s *InputSystem) acceptNew() {
	for {
		select {
		case sess := <-s.newSessions:
			s.store.Add(sess)
		default:
			return
		}
	}
}

// drain dispatches up to maxPerTick queued packets of sess.
func (s *InputSystem) drain(sess *net.Session) {
	for i := 0; i < s.maxPerTick; i++ {
		select {
		case data := <-sess.InQueue:
			if err := s.registry.Dispatch(sess, sess.State(), data); err != nil {
				s.log.Debug("封包分派錯誤",
					zap.Uint64("session", sess.ID),
					zap.Error(err),
				)
			}
		default:
			return
		}
	}
}
