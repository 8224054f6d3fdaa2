package event

import (
	"time"

	"github.com/l1jgo/combatcore/internal/core/ecs"
)

// Presentation cues. The core only emits these; it never reads rendering state.

// Animation cue names.
const (
	CueCombat  = "Combat"
	CueAttack  = "Attack"
	CueMove    = "Move"
	CueTurn    = "Turn"
	CueHarvest = "Harvest"
	CuePickup  = "Pickup"
	CueDeath   = "Death"
	CueStunned = "Stunned"
	CueBlock   = "Block"
	CueSlam    = "Slam"
)

// Animation is a boolean (Trigger=false) or one-shot (Trigger=true) animator signal.
type Animation struct {
	Entity  ecs.EntityID
	Name    string
	Trigger bool
	Value   bool
}

// Effect requests a particle or sound keyed by id. Play=false stops a looping effect.
type Effect struct {
	Entity ecs.EntityID
	Kind   string // "particle" or "sound"
	ID     string
	Play   bool
}

type AbilityTriggered struct {
	Entity         ecs.EntityID
	Slot           int
	Cooldown       time.Duration
	GlobalCooldown time.Duration
}

type HealthUpdated struct {
	Entity    ecs.EntityID
	Fraction  float64
	Health    float64
	MaxHealth float64
}

// Hitsplat reports damage actually taken; Blocked is set when it was zero.
type Hitsplat struct {
	Entity  ecs.EntityID
	Amount  int
	Blocked bool
}

type Death struct {
	Entity ecs.EntityID
}

type CombatChanged struct {
	Entity   ecs.EntityID
	InCombat bool
}

// StatusView is the presentation-facing copy of an active status.
type StatusView struct {
	Key       string
	Magnitude float64
	Duration  int
	Stacks    int
}

type StatusAdded struct {
	Entity ecs.EntityID
	Status StatusView
}

type StatusRemoved struct {
	Entity ecs.EntityID
	Key    string
}

type StatusUpdated struct {
	Entity ecs.EntityID
	Status StatusView
}

type StatusesUpdated struct {
	Entity   ecs.EntityID
	Statuses []StatusView
}

// ExperienceAwarded is emitted per damage category when a creature dies.
type ExperienceAwarded struct {
	Victim    ecs.EntityID
	Recipient ecs.EntityID // last attacker; NoEntity when the killing blow had no source
	Category  string
	Amount    int
}
