package creature

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/l1jgo/combatcore/internal/core/event"
	"github.com/l1jgo/combatcore/internal/data"
	"github.com/l1jgo/combatcore/internal/geo"
)

// countingTask records the scheduler calls it receives.
type countingTask struct {
	kind     TaskKind
	priority Priority
	combines int
	executes int
	ends     int
}

func (t *countingTask) Kind() TaskKind                    { return t.kind }
func (t *countingTask) Priority() Priority                { return t.priority }
func (t *countingTask) Initialize(_ TaskArgs, p Priority) { t.priority = p }
func (t *countingTask) Execute()                          { t.executes++ }
func (t *countingTask) Combine(TaskArgs)                  { t.combines++ }
func (t *countingTask) OnEnd()                            { t.ends++ }

type countingFactory struct {
	built []*countingTask
}

func (f *countingFactory) register(c *Creature, kind TaskKind) {
	c.Tasks.Register(kind, func(*Creature) Task {
		t := &countingTask{kind: kind}
		f.built = append(f.built, t)
		return t
	})
}

// stubInteractable counts enter and exit calls.
type stubInteractable struct {
	radius float64
	enter  int
	exit   int
}

func (s *stubInteractable) OnInteractEnter(*Creature)  { s.enter++ }
func (s *stubInteractable) OnInteractExit(*Creature)   { s.exit++ }
func (s *stubInteractable) InteractionRadius() float64 { return s.radius }
func (s *stubInteractable) DefaultAction() string      { return "Use" }

func TestSameKindRequestCombines(t *testing.T) {
	svc := newTestServices(t)
	p := newPlayer(svc, "hero", geo.V(0, 0))
	b := newPlayer(svc, "b", geo.V(30, 0))
	c := newPlayer(svc, "c", geo.V(0, 30))

	first := p.Tasks.CreateTask(AttackArgs{Target: b}, PriorityNormal)
	require.NotNil(t, first)
	second := p.Tasks.CreateTask(AttackArgs{Target: c}, PriorityNormal)

	assert.Same(t, first, second)
	assert.Equal(t, c, second.(*AttackTask).Target())
}

func TestFactoryCalledOnlyForNewKinds(t *testing.T) {
	svc := newTestServices(t)
	p := newPlayer(svc, "hero", geo.V(0, 0))
	b := newPlayer(svc, "b", geo.V(30, 0))
	var f countingFactory
	f.register(p, TaskMove)

	p.Tasks.CreateTask(MoveArgs{Position: geo.V(5, 0)}, PriorityNormal)
	p.Tasks.CreateTask(MoveArgs{Position: geo.V(6, 0)}, PriorityNormal)
	require.Len(t, f.built, 1)
	assert.Equal(t, 1, f.built[0].executes)
	assert.Equal(t, 1, f.built[0].combines)

	p.Tasks.CreateTask(AttackArgs{Target: b}, PriorityNormal)
	assert.Equal(t, 1, f.built[0].ends)
	assert.IsType(t, &AttackTask{}, p.Tasks.Active())
}

func TestLowerPriorityRequestIsRefused(t *testing.T) {
	svc := newTestServices(t)
	p := newPlayer(svc, "hero", geo.V(0, 0))
	b := newPlayer(svc, "b", geo.V(30, 0))
	var f countingFactory
	f.register(p, TaskMove)

	attack := p.Tasks.CreateTask(AttackArgs{Target: b}, PriorityHigh)
	require.NotNil(t, attack)

	assert.Nil(t, p.Tasks.CreateTask(MoveArgs{Position: geo.V(1, 1)}, PriorityNormal))
	assert.Same(t, attack, p.Tasks.Active())
	assert.Empty(t, f.built)

	move := p.Tasks.CreateTask(MoveArgs{Position: geo.V(1, 1)}, PriorityHigh)
	require.NotNil(t, move)
	assert.Same(t, move, p.Tasks.Active())
}

func TestCancelReleasesTriggers(t *testing.T) {
	svc := newTestServices(t)
	p := newPlayer(svc, "hero", geo.V(0, 0))
	b := newPlayer(svc, "b", geo.V(30, 0))

	p.Tasks.CreateTask(MoveArgs{Position: geo.V(10, 0)}, PriorityNormal)
	assert.Equal(t, 1, svc.Triggers.Len())
	p.Tasks.CancelTask()
	assert.Equal(t, 0, svc.Triggers.Len())
	assert.Nil(t, p.Tasks.Active())
	assert.False(t, p.Agent.Moving())

	p.Tasks.CreateTask(AttackArgs{Target: b}, PriorityNormal)
	svc.Timers.Advance(0) // first attack tick enters pursuit
	assert.Equal(t, 1, svc.Triggers.Len())
	p.Tasks.CancelTask()
	assert.Equal(t, 0, svc.Triggers.Len())

	p.Tasks.CancelTask()
	assert.Nil(t, p.Tasks.Active())
}

func TestMoveEndsOnArrival(t *testing.T) {
	svc := newTestServices(t)
	rec := record(svc)
	p := newPlayer(svc, "hero", geo.V(0, 0))
	dest := geo.V(5, 0)

	task := p.Tasks.CreateTask(MoveArgs{Position: dest}, PriorityNormal)
	require.IsType(t, &MoveTask{}, task)
	assert.Equal(t, dest, task.(*MoveTask).Destination())

	run(svc, 3*time.Second)

	assert.Nil(t, p.Tasks.Active())
	assert.LessOrEqual(t, p.Position().Dist(dest), svc.Combat.DefaultMoveRadius)
	assert.False(t, p.Agent.Moving())
	assert.Equal(t, 0, svc.Triggers.Len())

	var moves []bool
	for _, an := range eventsOf[event.Animation](rec) {
		if an.Name == event.CueMove {
			moves = append(moves, an.Value)
		}
	}
	assert.Equal(t, []bool{true, false}, moves)
}

func TestMoveCombineRetargetsTrigger(t *testing.T) {
	svc := newTestServices(t)
	p := newPlayer(svc, "hero", geo.V(0, 0))

	first := p.Tasks.CreateTask(MoveArgs{Position: geo.V(50, 0)}, PriorityNormal)
	second := p.Tasks.CreateTask(MoveArgs{Position: geo.V(0, 2)}, PriorityNormal)
	require.Same(t, first, second)
	assert.Equal(t, 1, svc.Triggers.Len())

	run(svc, 2*time.Second)
	assert.Nil(t, p.Tasks.Active())
	assert.InDelta(t, 0, p.Position().X, 1e-9)
}

func TestMovePivotCue(t *testing.T) {
	svc := newTestServices(t)
	rec := record(svc)
	p := newPlayer(svc, "hero", geo.V(0, 0))

	p.Tasks.CreateTask(MoveArgs{Position: geo.V(5, 0)}, PriorityNormal)
	p.Tasks.CancelTask()
	p.Tasks.CreateTask(MoveArgs{Position: geo.V(-5, 0)}, PriorityNormal)

	var turns int
	for _, an := range eventsOf[event.Animation](rec) {
		if an.Name == event.CueTurn {
			assert.True(t, an.Trigger)
			turns++
		}
	}
	assert.Equal(t, 1, turns, "only the reversal pivots")
}

func TestAttackPursuesAndKills(t *testing.T) {
	svc := newTestServices(t)
	rec := record(svc)
	stats := DefaultStats()
	stats.Damage = 40
	stats.AttackSpeed = time.Second
	p := New(svc, "hero", KindPlayer, stats, geo.V(0, 0))
	b := newPlayer(svc, "b", geo.V(5, 0))

	p.Tasks.CreateTask(AttackArgs{Target: b}, PriorityNormal)
	run(svc, 8*time.Second)

	assert.True(t, b.Dead())
	assert.Less(t, p.DistanceTo(b), 5.0, "attacker closed the distance")
	assert.Nil(t, p.Tasks.Active())
	assert.Nil(t, b.Tasks.Active())
	assert.False(t, p.Combat.InCombat())
	assert.Equal(t, 0, svc.Triggers.Len())

	assert.Len(t, eventsOf[event.Death](rec), 1)
	var hits []int
	for _, h := range eventsOf[event.Hitsplat](rec) {
		if h.Entity == b.ID {
			hits = append(hits, h.Amount)
		}
	}
	assert.Equal(t, []int{40, 40, 20}, hits)
}

func TestAttackFailsClosed(t *testing.T) {
	svc := newTestServices(t)
	p := newPlayer(svc, "hero", geo.V(0, 0))
	b := newPlayer(svc, "b", geo.V(2, 0))
	b.Combat.SufferDamage(data.Typeless, 1000)

	p.Tasks.CreateTask(AttackArgs{Target: b}, PriorityNormal)
	assert.Nil(t, p.Tasks.Active())
	assert.False(t, p.Combat.InCombat())

	p.Tasks.CreateTask(AttackArgs{Target: p}, PriorityNormal)
	assert.Nil(t, p.Tasks.Active())
}

func TestInvalidArgumentsEndTask(t *testing.T) {
	svc := newTestServices(t)
	p := newPlayer(svc, "hero", geo.V(0, 0))

	p.Tasks.CreateTask(AttackArgs{}, PriorityNormal)
	assert.Nil(t, p.Tasks.Active())
	p.Tasks.CreateTask(InteractArgs{Position: geo.V(1, 0)}, PriorityNormal)
	assert.Nil(t, p.Tasks.Active())
	assert.Nil(t, p.Tasks.CreateTask(nil, PriorityHigh))
	assert.Equal(t, 0, svc.Triggers.Len())
}

func TestInteractEnterAndExit(t *testing.T) {
	svc := newTestServices(t)
	p := newPlayer(svc, "hero", geo.V(0, 0))
	target := &stubInteractable{radius: 1}

	task := p.Tasks.CreateTask(InteractArgs{Target: target, Position: geo.V(4, 0)}, PriorityNormal)
	require.IsType(t, &InteractTask{}, task)
	assert.True(t, p.Agent.Moving())

	run(svc, 3*time.Second)

	assert.Equal(t, 1, target.enter)
	assert.Equal(t, 0, target.exit)
	assert.True(t, task.(*InteractTask).Arrived())
	assert.False(t, p.Agent.Moving())
	assert.Same(t, task, p.Tasks.Active())

	p.Tasks.CancelTask()
	assert.Equal(t, 1, target.exit)
	p.Tasks.CancelTask()
	assert.Equal(t, 1, target.exit)
}

func TestInteractWithMonsterAttacks(t *testing.T) {
	svc := newTestServices(t)
	p := newPlayer(svc, "hero", geo.V(0, 0))
	ogre, err := Spawn(svc, ogreTemplate(t, svc), geo.V(3, 0))
	require.NoError(t, err)
	require.NotNil(t, ogre.Interactable)
	assert.Equal(t, "Attack", ogre.Interactable.DefaultAction())

	p.Tasks.CreateTask(InteractArgs{Target: ogre.Interactable, Position: ogre.Position()}, PriorityNormal)
	run(svc, time.Second)

	atk, ok := p.Tasks.Active().(*AttackTask)
	require.True(t, ok)
	assert.Equal(t, ogre, atk.Target())
}

func TestBlockedPathEndsAttack(t *testing.T) {
	svc := newTestServices(t)
	svc.Blocked = func(v geo.Vec2) bool { return v.X > 2 }
	p := newPlayer(svc, "hero", geo.V(0, 0))
	b := newPlayer(svc, "b", geo.V(10, 0))

	p.Tasks.CreateTask(AttackArgs{Target: b}, PriorityNormal)
	run(svc, 5*time.Second)

	assert.Nil(t, p.Tasks.Active())
	assert.LessOrEqual(t, p.Position().X, 2.0)
	assert.False(t, p.Combat.InCombat())
}
