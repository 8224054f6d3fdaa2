package creature

import (
	"github.com/l1jgo/combatcore/internal/core/event"
	"github.com/l1jgo/combatcore/internal/trigger"
)

// Interactable is a world object a creature can walk up to and use.
type Interactable interface {
	OnInteractEnter(actor *Creature)
	OnInteractExit(actor *Creature)
	InteractionRadius() float64
	DefaultAction() string
}

// Pickup is implemented by interactables that are picked up on arrival.
type Pickup interface {
	IsPickup() bool
}

// InteractTask approaches an interactable and uses it.
type InteractTask struct {
	taskBase
	target  Interactable
	arrival *trigger.Trigger
	arrived bool
}

func newInteractTask(c *Creature) Task {
	return &InteractTask{taskBase: taskBase{c: c}}
}

func (t *InteractTask) Kind() TaskKind { return TaskInteract }

// Arrived reports whether OnInteractEnter has run.
func (t *InteractTask) Arrived() bool { return t.arrived }

func (t *InteractTask) Initialize(args TaskArgs, p Priority) {
	t.initialize(args, p)
}

func (t *InteractTask) Execute() {
	args, ok := t.args.(InteractArgs)
	if !ok || args.Target == nil {
		t.invalid(t, "missing interactable")
		return
	}
	c := t.c
	if c.Dead() {
		t.OnEnd()
		return
	}
	t.target = args.Target
	t.arrived = false
	radius := t.target.InteractionRadius()

	self := c.ID
	t.arrival = c.svc.Triggers.Create(
		trigger.Fixed(args.Position),
		radius,
		func(b trigger.Body) bool { return b.ID == self },
		t.arrive,
		trigger.Once,
	)
	if c.Position().Dist(args.Position) > radius && c.Agent.SetDestination(args.Position) {
		c.setMoving(true)
	}
}

func (t *InteractTask) Combine(args TaskArgs) {
	t.initialize(args, t.priority)
	t.arrival.Destroy()
	t.arrival = nil
	t.Execute()
}

func (t *InteractTask) arrive() {
	if t.ended {
		return
	}
	c := t.c
	args := t.args.(InteractArgs)
	c.Agent.Face(args.Position)
	t.arrived = true
	t.target.OnInteractEnter(c)
	if t.ended {
		// The interactable issued a new task.
		return
	}
	c.Agent.Stop()
	c.setMoving(false)
	if p, ok := t.target.(Pickup); ok && p.IsPickup() {
		c.cue(event.CuePickup)
	}
}

func (t *InteractTask) OnEnd() {
	if !t.finish(t) {
		return
	}
	if t.target != nil {
		t.target.OnInteractExit(t.c)
	}
	t.arrival.Destroy()
	t.arrival = nil
	if t.c.Agent.Enabled() {
		t.c.Agent.Stop()
	}
	t.c.setMoving(false)
}
