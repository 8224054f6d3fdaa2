package creature

import (
	"github.com/l1jgo/combatcore/internal/timer"
	"github.com/l1jgo/combatcore/internal/trigger"
)

// AttackTask pursues a target until in range, then attacks it every
// attack-speed interval until either side dies.
type AttackTask struct {
	taskBase
	target  *Creature
	routine *timer.Ticker
	pursuit *timer.Ticker
	inRange *trigger.Trigger
}

func newAttackTask(c *Creature) Task {
	return &AttackTask{taskBase: taskBase{c: c}}
}

func (a *AttackTask) Kind() TaskKind { return TaskAttack }

// Target returns the creature being attacked.
func (a *AttackTask) Target() *Creature { return a.target }

func (a *AttackTask) Initialize(args TaskArgs, p Priority) {
	a.initialize(args, p)
}

func (a *AttackTask) Execute() {
	args, ok := a.args.(AttackArgs)
	if !ok || args.Target == nil {
		a.invalid(a, "missing target")
		return
	}
	if args.Target != a.target {
		// Retargeting: the range trigger is anchored on the old target.
		a.inRange.Destroy()
		a.inRange = nil
		a.pursuit.Stop()
		a.pursuit = nil
	}
	a.target = args.Target
	if a.target == a.c || a.target.Dead() || a.c.Dead() {
		a.OnEnd()
		return
	}
	a.routine.Stop()
	a.routine = a.c.svc.Timers.Repeat(0, a.c.Stats.AttackSpeed, a.tick)
}

func (a *AttackTask) Combine(args TaskArgs) {
	a.initialize(args, a.priority)
	a.Execute()
}

func (a *AttackTask) tick() {
	if a.ended {
		return
	}
	if !a.c.Valid() || !a.target.Valid() || a.c.Dead() || a.target.Dead() {
		a.OnEnd()
		return
	}
	if a.c.Stunned {
		return
	}
	if a.closeEnough() {
		a.pursuit.Stop()
		a.pursuit = nil
		a.attackState()
	} else {
		a.moveState()
	}
}

// reach is the centre distance at which the target counts as in range.
func (a *AttackTask) reach() float64 {
	return a.c.Stats.AttackRange + 2*a.target.Stats.Size
}

func (a *AttackTask) closeEnough() bool {
	return a.c.DistanceTo(a.target) <= a.reach()
}

func (a *AttackTask) moveState() {
	if a.c.Agent.PathStale() {
		a.c.log().Debug("attack path blocked")
		a.OnEnd()
		return
	}
	if a.inRange == nil {
		self := a.c.ID
		a.inRange = a.c.svc.Triggers.Create(
			a.c.svc.World.Anchor(a.target.ID),
			a.reach(),
			func(b trigger.Body) bool { return b.ID == self },
			a.tick,
			trigger.Repeat,
		)
	}
	if !a.pursuit.Running() {
		a.pursuit = a.c.svc.Timers.Repeat(0, a.c.svc.Combat.PursuitRepath, a.chase)
	}
}

func (a *AttackTask) chase() {
	if a.ended || !a.target.Valid() {
		return
	}
	if a.c.Agent.SetDestination(a.target.Position()) {
		a.c.setMoving(true)
	}
}

func (a *AttackTask) attackState() {
	a.c.setMoving(false)
	a.c.Agent.Stop()
	if a.c.Abilities.GlobalCooldown() {
		return
	}
	a.attackNow()
}

func (a *AttackTask) attackNow() {
	c, target := a.c, a.target
	c.Combat.EnterCombat(target)
	if a.ended {
		// Engagement replaced this task with a fresh Attack.
		return
	}
	c.Agent.Face(target.Position())

	if target.Dead() || c.Dead() {
		c.Combat.ExitCombat(target)
		target.Combat.ExitCombat(c)
		a.OnEnd()
		return
	}

	if c.Kind == KindMonster && c.Abilities.TriggerNextAbility() {
		return
	}
	if c.Abilities.TriggerBasicAttack(a.tick) {
		a.hit()
	}
}

// hit resolves a basic attack.
func (a *AttackTask) hit() {
	svc := a.c.svc
	dmg := svc.Formula.HitDamage(a.c.Stats.Damage, svc.roll())
	a.target.Combat.SufferDamageFrom(a.c.Stats.Category, dmg, a.c)
}

func (a *AttackTask) OnEnd() {
	if !a.finish(a) {
		return
	}
	a.routine.Stop()
	a.pursuit.Stop()
	a.inRange.Destroy()
	a.routine, a.pursuit, a.inRange = nil, nil, nil
	if a.c.Agent.Enabled() {
		a.c.Agent.Stop()
	}
	a.c.setMoving(false)
}
