package creature

import (
	"time"

	"github.com/l1jgo/combatcore/internal/core/event"
	"github.com/l1jgo/combatcore/internal/data"
	"github.com/l1jgo/combatcore/internal/timer"
)

// Status is one active status effect instance.
type Status struct {
	Key       string
	Magnitude float64
	Duration  int // seconds remaining
	Stacks    int
	Config    *data.StatusEffect
	Source    *Creature // who applied it; may be nil
}

// NewStatus creates a single-stack status lasting duration seconds.
func NewStatus(cfg *data.StatusEffect, magnitude float64, duration int) *Status {
	return &Status{
		Key:       cfg.ID,
		Magnitude: magnitude,
		Duration:  duration,
		Stacks:    1,
		Config:    cfg,
	}
}

// View is the presentation copy.
func (s *Status) View() event.StatusView {
	return event.StatusView{Key: s.Key, Magnitude: s.Magnitude, Duration: s.Duration, Stacks: s.Stacks}
}

func (s *Status) hasKind(kind string) bool {
	for _, k := range s.Config.Kinds {
		if k == kind {
			return true
		}
	}
	return false
}

// NearExpiry is the default bulk-update filter: visible statuses with under a
// minute left, plus one report per remaining whole minute.
func NearExpiry(s *Status) bool {
	if s.Config.Hidden {
		return false
	}
	return s.Duration < 60 || (s.Duration+1)%60 == 0
}

// StatusScheduler holds at most one Status per key and ticks them while any
// are active.
type StatusScheduler struct {
	c        *Creature
	statuses []*Status
	byKey    map[string]*Status
	ticker   *timer.Ticker

	// Filter selects the statuses reported in each bulk update.
	Filter func(*Status) bool
}

func newStatusScheduler(c *Creature) *StatusScheduler {
	return &StatusScheduler{
		c:      c,
		byKey:  make(map[string]*Status),
		Filter: NearExpiry,
	}
}

// Add registers st, or applies the reapply policy to the existing status with
// the same key: resettable configs take the incoming duration, others extend
// by it, and stackable configs gain a stack.
func (s *StatusScheduler) Add(st *Status) {
	if st == nil || st.Config == nil {
		return
	}
	ev := s.c.svc.Events
	if cur, ok := s.byKey[st.Key]; ok {
		if cur.Config.Reset {
			cur.Duration = st.Duration
		} else {
			cur.Duration += st.Duration
		}
		if cur.Config.Stackable {
			cur.Stacks++
		}
		event.Emit(ev, event.StatusUpdated{Entity: s.c.ID, Status: cur.View()})
		return
	}

	s.byKey[st.Key] = st
	s.statuses = append(s.statuses, st)
	for _, k := range st.Config.Kinds {
		if fx, ok := effectKinds[k]; ok && fx.Apply != nil {
			fx.Apply(st, s.c)
		}
	}
	s.c.particle(st.Config.Particle, true)
	if !st.Config.Hidden {
		event.Emit(ev, event.StatusAdded{Entity: s.c.ID, Status: st.View()})
	}

	if !s.ticker.Running() {
		tick := s.c.svc.Combat.StatusTick
		s.ticker = s.c.svc.Timers.Repeat(tick, tick, s.tick)
	}
}

// Remove unapplies and drops the status with key. Returns false if absent.
func (s *StatusScheduler) Remove(key string) bool {
	key = data.NormalizeID(key)
	st, ok := s.byKey[key]
	if !ok {
		return false
	}
	if len(s.statuses) == 1 {
		s.stop()
	}
	for _, k := range st.Config.Kinds {
		if fx, ok := effectKinds[k]; ok && fx.Unapply != nil {
			fx.Unapply(st, s.c)
		}
	}
	s.c.particle(st.Config.Particle, false)
	delete(s.byKey, key)
	for i, x := range s.statuses {
		if x == st {
			s.statuses = append(s.statuses[:i], s.statuses[i+1:]...)
			break
		}
	}
	event.Emit(s.c.svc.Events, event.StatusRemoved{Entity: s.c.ID, Key: key})
	return true
}

// Clear removes every status.
func (s *StatusScheduler) Clear() {
	for len(s.statuses) > 0 {
		s.Remove(s.statuses[0].Key)
	}
}

func (s *StatusScheduler) HasEffect(key string) bool {
	_, ok := s.byKey[data.NormalizeID(key)]
	return ok
}

func (s *StatusScheduler) Get(key string) *Status {
	return s.byKey[data.NormalizeID(key)]
}

func (s *StatusScheduler) Len() int { return len(s.statuses) }

// Ticking reports whether the periodic tick is scheduled.
func (s *StatusScheduler) Ticking() bool { return s.ticker.Running() }

// Statuses returns the active statuses in insertion order.
func (s *StatusScheduler) Statuses() []*Status {
	out := make([]*Status, len(s.statuses))
	copy(out, s.statuses)
	return out
}

// WithKind returns the key of the first status carrying the effect kind.
func (s *StatusScheduler) WithKind(kind string) (string, bool) {
	for _, st := range s.statuses {
		if st.hasKind(kind) {
			return st.Key, true
		}
	}
	return "", false
}

func (s *StatusScheduler) tick() {
	if !s.c.Valid() {
		s.stop()
		return
	}
	step := int(s.c.svc.Combat.StatusTick / time.Second)
	if step < 1 {
		step = 1
	}
	for _, st := range s.Statuses() {
		if s.byKey[st.Key] != st {
			continue // removed by an earlier status this tick
		}
		for _, k := range st.Config.Kinds {
			if fx, ok := effectKinds[k]; ok && fx.Tick != nil {
				fx.Tick(st, s.c)
			}
		}
		if !st.Config.Temporary || s.byKey[st.Key] != st {
			continue
		}
		st.Duration -= step
		if st.Duration <= 0 {
			s.Remove(st.Key)
		}
	}

	views := make([]event.StatusView, 0, len(s.statuses))
	for _, st := range s.statuses {
		if s.Filter == nil || s.Filter(st) {
			views = append(views, st.View())
		}
	}
	event.Emit(s.c.svc.Events, event.StatusesUpdated{Entity: s.c.ID, Statuses: views})
}

func (s *StatusScheduler) stop() {
	s.ticker.Stop()
	s.ticker = nil
}
