package net

import (
	"errors"
	"net"
	"sync/atomic"

	"go.uber.org/zap"
)

// Server accepts TCP connections and hands new sessions to the game loop.
type Server struct {
	listener  net.Listener
	nextID    atomic.Uint64
	newConns  chan *Session
	inSize    int
	outSize   int
	pktPerSec int
	log       *zap.Logger
	closeCh   chan struct{}
	closed    atomic.Bool
}

func NewServer(bindAddr string, inSize, outSize, pktPerSec int, log *zap.Logger) (*Server, error) {
	ln, err := net.Listen("tcp", bindAddr)
	if err != nil {
		return nil, err
	}
	return &Server{
		listener:  ln,
		newConns:  make(chan *Session, 64),
		inSize:    inSize,
		outSize:   outSize,
		pktPerSec: pktPerSec,
		log:       log,
		closeCh:   make(chan struct{}),
	}, nil
}

// AcceptLoop accepts connections until Shutdown. Each new session gets its
// init packet before it is queued for the game loop.
func (s *Server) AcceptLoop() error {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.closeCh:
				return nil
			default:
			}
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			s.log.Error("連線接受失敗", zap.Error(err))
			continue
		}

		id := s.nextID.Add(1)
		sess := NewSession(conn, id, s.inSize, s.outSize, s.pktPerSec, s.log)
		sess.Start()

		s.log.Info("玩家連線", zap.Uint64("session", id), zap.String("ip", sess.IP))

		select {
		case s.newConns <- sess:
		default:
			s.log.Warn("連線佇列已滿，拒絕新連線")
			sess.Close()
		}
	}
}

// NewSessions returns the channel of newly connected sessions.
func (s *Server) NewSessions() <-chan *Session {
	return s.newConns
}

// Shutdown stops accepting new connections.
func (s *Server) Shutdown() {
	if s.closed.Swap(true) {
		return
	}
	close(s.closeCh)
	s.listener.Close()
}

// Addr returns the listener's address.
func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}
