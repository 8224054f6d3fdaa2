// Package feed is the presentation boundary over websockets: presentation
// events go out as JSON envelopes and player commands come in.
package feed

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync/atomic"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/l1jgo/combatcore/internal/config"
)

// Hub accepts websocket connections and creates Sessions.
// New/dead sessions are communicated to the game loop via channels.
type Hub struct {
	upgrader websocket.Upgrader
	nextID   atomic.Uint64
	newConns chan *Session
	deadCh   chan uint64 // session IDs of dead sessions
	inSize   int
	outSize  int
	log      *zap.Logger

	listener net.Listener
	srv      *http.Server
}

// NewHub builds a hub without listening. Use Listen to bind, or mount
// Handler on an existing server.
func NewHub(cfg config.FeedConfig, log *zap.Logger) *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4 * 1024,
			WriteBufferSize: 16 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		newConns: make(chan *Session, 64),
		deadCh:   make(chan uint64, 64),
		inSize:   cfg.InQueueSize,
		outSize:  cfg.OutQueueSize,
		log:      log,
	}
}

// Listen binds addr and serves the feed on /ws in its own goroutine.
func (h *Hub) Listen(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	mux := http.NewServeMux()
	mux.Handle("/ws", h.Handler())
	h.listener = ln
	h.srv = &http.Server{Handler: mux}
	go func() {
		if err := h.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			h.log.Error("feed server stopped", zap.Error(err))
		}
	}()
	return nil
}

// Handler upgrades the request and hands the session to the game loop.
func (h *Hub) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := h.upgrader.Upgrade(w, r, nil)
		if err != nil {
			h.log.Debug("websocket upgrade failed", zap.Error(err))
			return
		}

		id := h.nextID.Add(1)
		sess := NewSession(conn, id, h.inSize, h.outSize, h.log)

		select {
		case h.newConns <- sess:
		default:
			h.log.Warn("session queue full, rejecting connection")
			sess.Close()
			return
		}
		sess.Start(h.NotifyDead)
		h.log.Info("feed client connected", zap.Uint64("session", id), zap.String("ip", sess.IP))
	}
}

// NewSessions returns the channel of newly connected sessions.
func (h *Hub) NewSessions() <-chan *Session {
	return h.newConns
}

// NotifyDead reports a dead session ID to the game loop.
func (h *Hub) NotifyDead(sessionID uint64) {
	select {
	case h.deadCh <- sessionID:
	default:
	}
}

// DeadSessions returns the channel of dead session IDs.
func (h *Hub) DeadSessions() <-chan uint64 {
	return h.deadCh
}

// Shutdown stops accepting new connections.
func (h *Hub) Shutdown(ctx context.Context) error {
	if h.srv == nil {
		return nil
	}
	return h.srv.Shutdown(ctx)
}

// Addr returns the listener's address, nil before Listen.
func (h *Hub) Addr() net.Addr {
	if h.listener == nil {
		return nil
	}
	return h.listener.Addr()
}
