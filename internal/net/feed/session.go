package feed

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/l1jgo/combatcore/internal/core/ecs"
)

const (
	writeWait = 5 * time.Second
	readWait  = 60 * time.Second
	pingEvery = readWait * 9 / 10
)

// Session is one websocket client. Network I/O runs in dedicated goroutines;
// Creature and the output buffer are accessed only from the game loop.
type Session struct {
	ID   uint64
	conn *websocket.Conn

	InQueue  chan Command // game loop reads commands from here
	OutQueue chan []byte  // writer goroutine reads from here

	IP string

	// Creature is the entity this session controls, set on join.
	Creature ecs.EntityID

	outBuf [][]byte // buffered frames, flushed by the output system

	closeCh   chan struct{}
	closeOnce sync.Once
	closed    atomic.Bool

	log *zap.Logger
}

func NewSession(conn *websocket.Conn, id uint64, inSize, outSize int, log *zap.Logger) *Session {
	return &Session{
		ID:       id,
		conn:     conn,
		InQueue:  make(chan Command, inSize),
		OutQueue: make(chan []byte, outSize),
		IP:       conn.RemoteAddr().String(),
		closeCh:  make(chan struct{}),
		log:      log.With(zap.Uint64("session", id)),
	}
}

// Start launches the reader and writer goroutines. onDead runs once the
// reader exits.
func (s *Session) Start(onDead func(id uint64)) {
	go func() {
		s.readLoop()
		if onDead != nil {
			onDead(s.ID)
		}
	}()
	go s.writeLoop()
}

// Send buffers a frame. It is not written until FlushOutput runs.
// Called only from the game loop goroutine; no lock needed on outBuf.
func (s *Session) Send(data []byte) {
	if s.closed.Load() {
		return
	}
	s.outBuf = append(s.outBuf, data)
}

// FlushOutput drains the output buffer to OutQueue for the writeLoop goroutine.
// Non-blocking: if OutQueue is full, the session is disconnected (backpressure).
func (s *Session) FlushOutput() {
	for _, data := range s.outBuf {
		select {
		case s.OutQueue <- data:
		default:
			s.log.Warn("output queue full, dropping slow client")
			s.Close()
			s.outBuf = s.outBuf[:0]
			return
		}
	}
	s.outBuf = s.outBuf[:0]
}

// Close gracefully shuts down the session.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		close(s.closeCh)
		_ = s.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"),
			time.Now().Add(time.Second))
		s.conn.Close()
	})
}

func (s *Session) IsClosed() bool {
	return s.closed.Load()
}

// readLoop decodes client messages and pushes them onto InQueue. Malformed
// commands are logged and skipped.
func (s *Session) readLoop() {
	defer s.Close()

	s.conn.SetReadLimit(4096)
	_ = s.conn.SetReadDeadline(time.Now().Add(readWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(readWait))
	})

	for {
		_, msg, err := s.conn.ReadMessage()
		if err != nil {
			if !s.closed.Load() && websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.log.Debug("read error", zap.Error(err))
			}
			return
		}
		_ = s.conn.SetReadDeadline(time.Now().Add(readWait))

		cmd, err := DecodeCommand(msg)
		if err != nil {
			s.log.Debug("bad command", zap.Error(err))
			continue
		}

		// Block until InQueue has space or the session closes; dropping a
		// command would desync the client.
		select {
		case s.InQueue <- cmd:
		case <-s.closeCh:
			return
		}
	}
}

// writeLoop writes queued frames and keeps the connection alive with pings.
func (s *Session) writeLoop() {
	ping := time.NewTicker(pingEvery)
	defer ping.Stop()

	for {
		select {
		case <-s.closeCh:
			return
		case data := <-s.OutQueue:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				s.log.Debug("write error", zap.Error(err))
				s.Close()
				return
			}
		case <-ping.C:
			if err := s.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				s.Close()
				return
			}
		}
	}
}
