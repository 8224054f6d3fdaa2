// Package trigger implements radius-based proximity watchers. A trigger follows
// an anchor (a fixed point or a moving body) and fires its callback when a
// candidate that satisfies its predicate enters the radius.
package trigger

import (
	"github.com/l1jgo/combatcore/internal/core/ecs"
	"github.com/l1jgo/combatcore/internal/geo"
)

// Body is a positioned candidate tested against trigger predicates.
type Body struct {
	ID  ecs.EntityID
	Pos geo.Vec2
}

// Source returns every body within radius of center.
type Source interface {
	Within(center geo.Vec2, radius float64) []Body
}

// Anchor reports where a trigger currently sits. ok=false means the anchored
// body is gone; the trigger stays idle until its owner destroys or moves it.
type Anchor func() (pos geo.Vec2, ok bool)

// Fixed anchors a trigger to a point.
func Fixed(p geo.Vec2) Anchor {
	return func() (geo.Vec2, bool) { return p, true }
}

// Mode controls how often a trigger fires.
type Mode int

const (
	// Once fires on the first entry, then disarms until MoveTo re-arms it.
	Once Mode = iota
	// Repeat fires on every fresh entry for the trigger's lifetime.
	Repeat
)

// Trigger is owned by whoever created it and must be destroyed by that owner.
type Trigger struct {
	anchor    Anchor
	radius    float64
	predicate func(Body) bool
	onEnter   func()
	mode      Mode
	armed     bool
	alive     bool
	inside    map[ecs.EntityID]struct{}
}

// Alive reports whether the trigger has not been destroyed.
func (t *Trigger) Alive() bool { return t != nil && t.alive }

// Radius returns the trigger radius.
func (t *Trigger) Radius() float64 { return t.radius }

// Position returns the current anchor position.
func (t *Trigger) Position() (geo.Vec2, bool) { return t.anchor() }

// Destroy stops the trigger permanently. Safe on nil and when already destroyed.
func (t *Trigger) Destroy() {
	if t == nil {
		return
	}
	t.alive = false
	t.onEnter = nil
	t.predicate = nil
}

// MoveTo re-anchors the trigger on a fixed point and re-arms it.
func (t *Trigger) MoveTo(p geo.Vec2) {
	t.Follow(Fixed(p))
}

// Follow re-anchors the trigger and re-arms it.
func (t *Trigger) Follow(a Anchor) {
	if !t.Alive() {
		return
	}
	t.anchor = a
	t.armed = true
	t.inside = make(map[ecs.EntityID]struct{})
}

// SetRadius changes the trigger radius.
func (t *Trigger) SetRadius(r float64) { t.radius = r }

// Manager steps every live trigger once per tick.
// Accessed only from the game loop goroutine; no locks.
type Manager struct {
	source   Source
	triggers []*Trigger
}

func NewManager(source Source) *Manager {
	return &Manager{
		source:   source,
		triggers: make([]*Trigger, 0, 64),
	}
}

// Create registers a new trigger. It is first tested on the next Step.
func (m *Manager) Create(anchor Anchor, radius float64, predicate func(Body) bool, onEnter func(), mode Mode) *Trigger {
	t := &Trigger{
		anchor:    anchor,
		radius:    radius,
		predicate: predicate,
		onEnter:   onEnter,
		mode:      mode,
		armed:     true,
		alive:     true,
		inside:    make(map[ecs.EntityID]struct{}),
	}
	m.triggers = append(m.triggers, t)
	return t
}

// Len returns the number of live triggers.
func (m *Manager) Len() int {
	n := 0
	for _, t := range m.triggers {
		if t.alive {
			n++
		}
	}
	return n
}

// Step tests every live trigger against nearby bodies. Triggers created or
// destroyed by callbacks during Step take effect immediately for destruction and
// on the next Step for creation.
func (m *Manager) Step() {
	current := m.triggers
	for _, t := range current {
		if !t.alive {
			continue
		}
		m.test(t)
	}

	live := m.triggers[:0]
	for _, t := range m.triggers {
		if t.alive {
			live = append(live, t)
		}
	}
	for i := len(live); i < len(m.triggers); i++ {
		m.triggers[i] = nil
	}
	m.triggers = live
}

func (m *Manager) test(t *Trigger) {
	pos, ok := t.anchor()
	if !ok {
		return
	}
	seen := make(map[ecs.EntityID]struct{})
	entered := false
	for _, b := range m.source.Within(pos, t.radius) {
		if t.predicate == nil || !t.predicate(b) {
			continue
		}
		seen[b.ID] = struct{}{}
		if _, was := t.inside[b.ID]; !was {
			entered = true
		}
	}
	t.inside = seen
	if !entered || !t.armed {
		return
	}
	if t.mode == Once {
		t.armed = false
	}
	if fn := t.onEnter; fn != nil {
		fn()
	}
}
