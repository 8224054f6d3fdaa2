package creature

import (
	"github.com/l1jgo/combatcore/internal/core/event"
	"github.com/l1jgo/combatcore/internal/geo"
	"github.com/l1jgo/combatcore/internal/trigger"
)

// MoveTask walks to a point and ends on arrival.
type MoveTask struct {
	taskBase
	dest    geo.Vec2
	arrival *trigger.Trigger
}

func newMoveTask(c *Creature) Task {
	return &MoveTask{taskBase: taskBase{c: c}}
}

func (m *MoveTask) Kind() TaskKind { return TaskMove }

// Destination returns the point being walked to.
func (m *MoveTask) Destination() geo.Vec2 { return m.dest }

func (m *MoveTask) Initialize(args TaskArgs, p Priority) {
	m.initialize(args, p)
}

func (m *MoveTask) Execute() {
	args, ok := m.args.(MoveArgs)
	if !ok {
		m.invalid(m, "not move arguments")
		return
	}
	c := m.c
	if c.Dead() || !c.Agent.Enabled() {
		m.OnEnd()
		return
	}
	radius := args.Radius
	if radius <= 0 {
		radius = c.svc.Combat.DefaultMoveRadius
	}
	m.dest = args.Position

	if m.arrival == nil {
		self := c.ID
		m.arrival = c.svc.Triggers.Create(
			trigger.Fixed(m.dest),
			radius,
			func(b trigger.Body) bool { return b.ID == self },
			m.OnEnd,
			trigger.Once,
		)
	} else {
		// Reuse the trigger; moving it re-arms it.
		m.arrival.SetRadius(radius)
		m.arrival.MoveTo(m.dest)
	}

	dir := m.dest.Sub(c.Position())
	if !dir.IsZero() && geo.AngleBetween(c.Agent.Heading(), dir.Heading()) > c.svc.Combat.PivotAngle {
		c.cue(event.CueTurn)
	}
	c.Agent.SetDestination(m.dest)
	c.setMoving(true)
}

func (m *MoveTask) Combine(args TaskArgs) {
	m.initialize(args, m.priority)
	m.Execute()
}

func (m *MoveTask) OnEnd() {
	if !m.finish(m) {
		return
	}
	m.arrival.Destroy()
	m.arrival = nil
	m.c.Agent.Stop()
	m.c.setMoving(false)
}
