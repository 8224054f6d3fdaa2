package creature

import (
	"math"
	"time"

	"github.com/l1jgo/combatcore/internal/geo"
)

// Agent is the locomotion boundary. It walks a straight line toward its
// destination; terrain is consulted only through Services.Blocked, which turns
// a refused step into a stale path.
type Agent struct {
	c       *Creature
	dest    geo.Vec2
	hasPath bool
	stopped bool
	stale   bool
	enabled bool
	heading float64
}

func newAgent(c *Creature) *Agent {
	return &Agent{c: c, enabled: true, stopped: true}
}

// SetDestination starts a new path. Returns false when the agent is disabled.
func (a *Agent) SetDestination(p geo.Vec2) bool {
	if !a.enabled {
		return false
	}
	a.dest = p
	a.hasPath = true
	a.stale = false
	a.stopped = false
	return true
}

// Destination returns the current target point and whether a path is set.
func (a *Agent) Destination() (geo.Vec2, bool) { return a.dest, a.hasPath }

// Stop halts movement but keeps the destination.
func (a *Agent) Stop() { a.stopped = true }

// Disable stops the agent permanently.
func (a *Agent) Disable() {
	a.enabled = false
	a.stopped = true
	a.hasPath = false
}

func (a *Agent) Enabled() bool { return a.enabled }

// Moving reports whether the next Step will move the creature.
func (a *Agent) Moving() bool {
	return a.enabled && !a.stopped && a.hasPath && !a.c.Stunned
}

// PathStale reports that the last path was refused by the navigation boundary.
func (a *Agent) PathStale() bool { return a.stale }

// Heading is the facing in degrees.
func (a *Agent) Heading() float64 { return a.heading }

// Face turns toward p without moving.
func (a *Agent) Face(p geo.Vec2) {
	d := p.Sub(a.c.Position())
	if d.IsZero() {
		return
	}
	a.heading = d.Heading()
}

// Speed is the effective walking speed in units per second.
func (a *Agent) Speed() float64 {
	return math.Max(0, a.c.Stats.WalkingSpeed*a.c.SpeedMod)
}

// Step advances the creature along its path.
func (a *Agent) Step(dt time.Duration) {
	if !a.Moving() {
		return
	}
	from := a.c.Position()
	next := geo.MoveTowards(from, a.dest, a.Speed()*dt.Seconds())
	if blocked := a.c.svc.Blocked; blocked != nil && blocked(next) {
		a.stale = true
		a.stopped = true
		return
	}
	a.Face(a.dest)
	a.c.svc.World.Place(a.c.ID, next)
	if next == a.dest {
		a.hasPath = false
	}
}
