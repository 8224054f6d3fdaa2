package creature

import (
	"go.uber.org/zap"

	"github.com/l1jgo/combatcore/internal/geo"
)

// TaskKind identifies a task variant. A scheduler holds at most one task, and
// a request of the same kind is merged into it instead of replacing it.
type TaskKind int

const (
	TaskAttack TaskKind = iota + 1
	TaskMove
	TaskInteract
)

func (k TaskKind) String() string {
	switch k {
	case TaskAttack:
		return "attack"
	case TaskMove:
		return "move"
	case TaskInteract:
		return "interact"
	default:
		return "task"
	}
}

// Priority orders task requests. A request of a different kind with a lower
// priority than the active task is refused.
type Priority int

const (
	PriorityLow Priority = iota
	PriorityNormal
	PriorityHigh
)

// TaskArgs are the arguments of a task request.
type TaskArgs interface {
	TaskKind() TaskKind
}

// AttackArgs targets a creature.
type AttackArgs struct {
	Target *Creature
}

func (AttackArgs) TaskKind() TaskKind { return TaskAttack }

// MoveArgs walks to Position; the task ends once within Radius. A zero
// Radius uses the configured default.
type MoveArgs struct {
	Position geo.Vec2
	Radius   float64
}

func (MoveArgs) TaskKind() TaskKind { return TaskMove }

// InteractArgs approaches Target at Position and interacts on arrival.
type InteractArgs struct {
	Target   Interactable
	Position geo.Vec2
}

func (InteractArgs) TaskKind() TaskKind { return TaskInteract }

// Task is a single cancellable unit of behaviour.
type Task interface {
	Kind() TaskKind
	Priority() Priority
	Initialize(args TaskArgs, p Priority)
	Execute()
	// Combine merges a same-kind request into the running task.
	Combine(args TaskArgs)
	// OnEnd releases every trigger and timer the task created. Idempotent.
	OnEnd()
}

// TaskFactory builds a task bound to a creature.
type TaskFactory func(c *Creature) Task

// TaskScheduler holds the creature's active task.
type TaskScheduler struct {
	c         *Creature
	active    Task
	factories map[TaskKind]TaskFactory
}

func newTaskScheduler(c *Creature) *TaskScheduler {
	return &TaskScheduler{
		c: c,
		factories: map[TaskKind]TaskFactory{
			TaskAttack:   newAttackTask,
			TaskMove:     newMoveTask,
			TaskInteract: newInteractTask,
		},
	}
}

// Register installs or replaces the factory for a task kind.
func (s *TaskScheduler) Register(kind TaskKind, f TaskFactory) {
	s.factories[kind] = f
}

// Active returns the running task, or nil.
func (s *TaskScheduler) Active() Task { return s.active }

// CreateTask combines args into the active task when the kinds match,
// otherwise replaces the active task with a new one. Returns the task that
// ended up handling the request, or nil when it was refused.
func (s *TaskScheduler) CreateTask(args TaskArgs, p Priority) Task {
	if args == nil {
		return nil
	}
	kind := args.TaskKind()
	if cur := s.active; cur != nil {
		if cur.Kind() == kind {
			cur.Combine(args)
			return cur
		}
		if p < cur.Priority() {
			s.c.log().Debug("task refused",
				zap.Stringer("kind", kind), zap.Stringer("active", cur.Kind()))
			return nil
		}
		s.CancelTask()
	}

	f, ok := s.factories[kind]
	if !ok {
		s.c.log().Error("no factory for task", zap.Stringer("kind", kind))
		return nil
	}
	t := f(s.c)
	t.Initialize(args, p)
	s.active = t
	t.Execute()
	return t
}

// CancelTask ends the active task.
func (s *TaskScheduler) CancelTask() {
	t := s.active
	if t == nil {
		return
	}
	s.active = nil
	t.OnEnd()
}

// release clears t if it is still the active task.
func (s *TaskScheduler) release(t Task) {
	if s.active == t {
		s.active = nil
	}
}

// taskBase carries the bookkeeping shared by the built-in tasks.
type taskBase struct {
	c        *Creature
	args     TaskArgs
	priority Priority
	ended    bool
}

func (b *taskBase) Priority() Priority { return b.priority }

func (b *taskBase) initialize(args TaskArgs, p Priority) {
	b.args = args
	b.priority = p
}

// finish marks the task ended and detaches it from the scheduler. Returns
// false if it had already ended.
func (b *taskBase) finish(self Task) bool {
	if b.ended {
		return false
	}
	b.ended = true
	b.c.Tasks.release(self)
	return true
}

func (b *taskBase) invalid(self Task, reason string) {
	b.c.log().Warn("invalid task arguments",
		zap.Stringer("kind", self.Kind()), zap.String("reason", reason))
	self.OnEnd()
}
