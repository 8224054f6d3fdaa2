package system

import (
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/l1jgo/combatcore/internal/core/event"
	coresys "github.com/l1jgo/combatcore/internal/core/system"
	"github.com/l1jgo/combatcore/internal/net/feed"
)

// Broadcaster fans frames out to connected clients; *feed.SessionStore
// implements it.
type Broadcaster interface {
	Broadcast(frame []byte)
	Flush()
}

// OutputSystem delivers the tick's presentation events and flushes client
// output buffers. Phase 5 (Output).
type OutputSystem struct {
	bus  *event.Bus
	out  Broadcaster
	log  *zap.Logger
	sent int
}

func NewOutputSystem(bus *event.Bus, out Broadcaster, log *zap.Logger) *OutputSystem {
	s := &OutputSystem{bus: bus, out: out, log: log}
	bus.SubscribeAll(s.forward)
	return s
}

func (s *OutputSystem) Phase() coresys.Phase { return coresys.PhaseOutput }

func (s *OutputSystem) Update(time.Duration) {
	s.bus.Flush()
	s.out.Flush()
}

// Sent returns the number of frames broadcast so far.
func (s *OutputSystem) Sent() int { return s.sent }

func (s *OutputSystem) forward(ev any) {
	frame, err := feed.Encode(ev)
	if err != nil {
		if !errors.Is(err, feed.ErrUnhandledEvent) {
			s.log.Error("encode event", zap.Error(err))
		}
		return
	}
	s.out.Broadcast(frame)
	s.sent++
}
