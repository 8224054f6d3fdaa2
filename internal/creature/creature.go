package creature

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/l1jgo/combatcore/internal/core/ecs"
	"github.com/l1jgo/combatcore/internal/core/event"
	"github.com/l1jgo/combatcore/internal/data"
	"github.com/l1jgo/combatcore/internal/geo"
)

// Kind separates player-directed creatures from autonomous ones.
type Kind int

const (
	KindPlayer Kind = iota
	KindMonster
)

func (k Kind) String() string {
	if k == KindMonster {
		return "monster"
	}
	return "player"
}

// Stats are the combat attributes of a creature. Health lives in CombatState.
type Stats struct {
	MaxHealth     float64
	Damage        float64
	Category      data.DamageCategory
	Armor         float64
	AttackRange   float64
	AttackSpeed   time.Duration
	Size          float64
	Height        float64
	WalkingSpeed  float64
	RegenPer5s    float64
	ForwardOffset float64
}

// DefaultStats matches an unconfigured creature.
func DefaultStats() Stats {
	return Stats{
		MaxHealth:    100,
		Damage:       1,
		AttackRange:  1,
		AttackSpeed:  2 * time.Second,
		Size:         1,
		Height:       2,
		WalkingSpeed: 3.5,
	}
}

// Creature is an addressable combat participant.
// Accessed only from the game loop goroutine; no locks needed.
type Creature struct {
	ID    ecs.EntityID
	Name  string
	Kind  Kind
	Stats Stats

	Combat    *CombatState
	Abilities *AbilityController
	Statuses  *StatusScheduler
	Tasks     *TaskScheduler
	Agent     *Agent

	// Interactable is set when other creatures may interact with this one.
	Interactable Interactable
	// Template is the monster record this creature was spawned from, nil for players.
	Template *data.Monster

	Stunned  bool
	SpeedMod float64 // multiplier applied to WalkingSpeed by slow/haste

	brain   *Brain
	moving  bool
	onDeath []func(killer *Creature)
	dirty   bool
	svc     *Services
}

// New creates a creature at pos with full health and registers it with the
// entity world, the creature store and the spatial index.
func New(svc *Services, name string, kind Kind, stats Stats, pos geo.Vec2) *Creature {
	c := &Creature{
		ID:       svc.Entities.CreateEntity(),
		Name:     name,
		Kind:     kind,
		Stats:    stats,
		SpeedMod: 1,
		svc:      svc,
	}
	c.Combat = newCombatState(c)
	c.Abilities = newAbilityController(c)
	c.Statuses = newStatusScheduler(c)
	c.Tasks = newTaskScheduler(c)
	c.Agent = newAgent(c)

	svc.Creatures.Set(c.ID, c)
	svc.World.Place(c.ID, pos)
	svc.Log.Debug("creature created",
		zap.String("name", name),
		zap.Stringer("id", c.ID),
		zap.Stringer("kind", kind))
	return c
}

// Services returns the shared collaborators.
func (c *Creature) Services() *Services { return c.svc }

// Valid reports whether the entity still exists. Deferred callbacks check it
// before touching the creature.
func (c *Creature) Valid() bool {
	return c != nil && c.svc.Entities.Alive(c.ID)
}

// Dead reports the terminal health state.
func (c *Creature) Dead() bool { return c.Combat.Dead() }

// Alive is Valid and not Dead.
func (c *Creature) Alive() bool { return c.Valid() && !c.Dead() }

// Position returns the creature's current ground position.
func (c *Creature) Position() geo.Vec2 {
	p, _ := c.svc.World.Position(c.ID)
	return p
}

// DistanceTo returns the ground distance between the two creatures.
func (c *Creature) DistanceTo(o *Creature) float64 {
	return c.Position().Dist(o.Position())
}

// OnDeath registers a callback run once when the creature dies.
func (c *Creature) OnDeath(fn func(killer *Creature)) {
	c.onDeath = append(c.onDeath, fn)
}

// Dirty reports whether the persisted shape changed since the last ClearDirty.
func (c *Creature) Dirty() bool { return c.dirty }
func (c *Creature) ClearDirty() { c.dirty = false }
func (c *Creature) markDirty()  { c.dirty = true }

func (c *Creature) log() *zap.Logger {
	return c.svc.Log.With(zap.String("creature", c.Name), zap.Stringer("id", c.ID))
}

// setAnim emits a boolean animator signal.
func (c *Creature) setAnim(name string, v bool) {
	event.Emit(c.svc.Events, event.Animation{Entity: c.ID, Name: name, Value: v})
}

// cue emits a one-shot animator trigger.
func (c *Creature) cue(name string) {
	event.Emit(c.svc.Events, event.Animation{Entity: c.ID, Name: name, Trigger: true})
}

func (c *Creature) particle(id string, play bool) {
	if id == "" {
		return
	}
	event.Emit(c.svc.Events, event.Effect{Entity: c.ID, Kind: "particle", ID: id, Play: play})
}

// setMoving drives the Move animator flag, emitting only on change.
func (c *Creature) setMoving(v bool) {
	if c.moving == v {
		return
	}
	c.moving = v
	c.setAnim(event.CueMove, v)
}

// Despawn queues the creature for destruction at the end of the tick.
func (c *Creature) Despawn() {
	c.svc.Entities.MarkForDestruction(c.ID)
}

// teardown releases every timer and trigger the creature still owns. It runs
// from the entity world's destroy hook.
func (c *Creature) teardown() {
	c.Tasks.CancelTask()
	c.Combat.leaveAll()
	c.Combat.stopMonitor()
	c.Abilities.reset()
	c.Statuses.stop()
	if c.brain != nil {
		c.brain.stop()
	}
}

// Snapshot is the persisted shape of a creature. Statuses and in-flight
// tasks are not persisted.
type Snapshot struct {
	Name      string
	MaxHealth float64
	Health    float64
	Damage    float64
	Abilities [SlotCount]string
}

// Snapshot captures the persistable state.
func (c *Creature) Snapshot() Snapshot {
	s := Snapshot{
		Name:      c.Name,
		MaxHealth: c.Stats.MaxHealth,
		Health:    c.Combat.Health(),
		Damage:    c.Stats.Damage,
	}
	for i, slot := range c.Abilities.slots {
		if slot != nil {
			s.Abilities[i] = slot.ability.ID
		}
	}
	return s
}

// Restore applies a snapshot. An ability id the catalog cannot resolve is a
// configuration error.
func (c *Creature) Restore(s Snapshot) error {
	abilities := make([]*data.Ability, SlotCount)
	for i, id := range s.Abilities {
		if id == "" {
			continue
		}
		a, err := c.svc.Catalog.Ability(id)
		if err != nil {
			return fmt.Errorf("restore %s slot %d: %w", c.Name, i, err)
		}
		abilities[i] = a
	}
	c.Stats.MaxHealth = s.MaxHealth
	c.Stats.Damage = s.Damage
	c.Combat.setHealth(s.Health)
	for i, a := range abilities {
		if a == nil {
			c.Abilities.ClearSlot(i)
			continue
		}
		c.Abilities.AssignAbilityToSlot(i, a)
	}
	c.dirty = false
	return nil
}
