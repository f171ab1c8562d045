package net

import (
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/l1jgo/battlecore/internal/net/packet"
)

// ProtocolVersion is announced in the init packet.
const ProtocolVersion uint16 = 1

// Session represents a single client connection. Network I/O runs in
// dedicated goroutines; packets are handled by the game loop.
type Session struct {
	ID   uint64
	conn net.Conn

	state atomic.Int32 // packet.SessionState

	InQueue  chan []byte // game loop reads packets from here
	OutQueue chan []byte // writer goroutine reads from here

	IP          string
	AccountName string
	AccessLevel int16 // >0 可使用 GM 指令
	CharID      uint32
	CharName    string

	// 戰鬥核心可能在遊戲迴圈以外的 goroutine 送封包，outBuf 需要鎖
	outMu  sync.Mutex
	outBuf [][]byte

	closeCh   chan struct{}
	closeOnce sync.Once
	closed    atomic.Bool

	// 每秒封包數限制（只在 readLoop 使用）
	pktPerSec  int
	pktCount   int
	pktResetAt int64

	log *zap.Logger
}

func NewSession(conn net.Conn, id uint64, inSize, outSize, pktPerSec int, log *zap.Logger) *Session {
	s := &Session{
		ID:        id,
		conn:      conn,
		InQueue:   make(chan []byte, inSize),
		OutQueue:  make(chan []byte, outSize),
		IP:        conn.RemoteAddr().String(),
		closeCh:   make(chan struct{}),
		pktPerSec: pktPerSec,
		log:       log.With(zap.Uint64("session", id)),
	}
	s.state.Store(int32(packet.StateConnected))
	return s
}

func (s *Session) State() packet.SessionState {
	return packet.SessionState(s.state.Load())
}

func (s *Session) SetState(st packet.SessionState) {
	s.state.Store(int32(st))
}

// Start writes the init packet and launches the reader and writer goroutines.
func (s *Session) Start() {
	w := packet.NewWriterWithOpcode(packet.S_OPCODE_INITPACKET)
	w.WriteDU(uint32(s.ID))
	w.WriteH(ProtocolVersion)

	s.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	if err := WriteFrame(s.conn, w.Bytes()); err != nil {
		s.log.Error("初始封包發送失敗", zap.Error(err))
		s.Close()
		return
	}

	go s.readLoop()
	go s.writeLoop()
}

// Send buffers a packet. It reaches TCP when FlushOutput runs.
func (s *Session) Send(data []byte) {
	if s.closed.Load() {
		return
	}
	s.outMu.Lock()
	s.outBuf = append(s.outBuf, data)
	s.outMu.Unlock()
}

// FlushOutput drains the output buffer to OutQueue, once per tick.
// A full OutQueue disconnects the session.
func (s *Session) FlushOutput() {
	s.outMu.Lock()
	defer s.outMu.Unlock()
	for _, data := range s.outBuf {
		select {
		case s.OutQueue <- data:
		default:
			s.log.Warn("輸出佇列已滿，斷開慢速連線")
			s.outBuf = s.outBuf[:0]
			go s.Close()
			return
		}
	}
	s.outBuf = s.outBuf[:0]
}

// Close shuts the session down. Safe to call more than once.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		s.SetState(packet.StateDisconnecting)
		close(s.closeCh)
		s.conn.Close()
	})
}

func (s *Session) IsClosed() bool {
	return s.closed.Load()
}

// readLoop pushes every inbound frame onto InQueue.
func (s *Session) readLoop() {
	defer s.Close()

	for {
		payload, err := ReadFrame(s.conn)
		if err != nil {
			if !s.closed.Load() {
				s.log.Debug("讀取錯誤", zap.Error(err))
			}
			return
		}

		if s.pktPerSec > 0 {
			now := time.Now().Unix()
			if now != s.pktResetAt {
				s.pktCount = 0
				s.pktResetAt = now
			}
			s.pktCount++
			if s.pktCount > s.pktPerSec {
				s.log.Warn("封包速率超限，斷開連線", zap.Int("pps", s.pktCount))
				return
			}
		}

		// 阻塞直到佇列有空間：丟掉互動封包會讓客戶端與伺服器不同步
		select {
		case s.InQueue <- payload:
		case <-s.closeCh:
			return
		}
	}
}

func (s *Session) writeLoop() {
	defer s.Close()

	for {
		select {
		case data := <-s.OutQueue:
			if !s.writeOnePacket(data) {
				return
			}
		case <-s.closeCh:
			return
		}
	}
}

func (s *Session) writeOnePacket(data []byte) bool {
	if len(data) > 0 {
		s.log.Debug("TX",
			zap.String("op", fmt.Sprintf("0x%02X(%d)", data[0], data[0])),
			zap.Int("len", len(data)),
		)
	}
	s.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	if err := WriteFrame(s.conn, data); err != nil {
		if !s.closed.Load() {
			s.log.Debug("寫入錯誤", zap.Error(err))
		}
		return false
	}
	return true
}
