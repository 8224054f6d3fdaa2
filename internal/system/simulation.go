package system

import (
	"time"

	"github.com/l1jgo/combatcore/internal/core/ecs"
	coresys "github.com/l1jgo/combatcore/internal/core/system"
	"github.com/l1jgo/combatcore/internal/creature"
)

// TimerSystem advances simulated time. Every cooldown, monitor, status tick
// and attack routine fires from here. Phase 1 (Timers).
type TimerSystem struct {
	svc *creature.Services
}

func NewTimerSystem(svc *creature.Services) *TimerSystem {
	return &TimerSystem{svc: svc}
}

func (s *TimerSystem) Phase() coresys.Phase { return coresys.PhaseTimers }

func (s *TimerSystem) Update(dt time.Duration) {
	s.svc.Timers.Advance(dt)
}

// MovementSystem steps every creature's agent and syncs the spatial grid.
// Phase 2 (Movement).
type MovementSystem struct {
	svc *creature.Services
}

func NewMovementSystem(svc *creature.Services) *MovementSystem {
	return &MovementSystem{svc: svc}
}

func (s *MovementSystem) Phase() coresys.Phase { return coresys.PhaseMovement }

func (s *MovementSystem) Update(dt time.Duration) {
	s.svc.Creatures.Each(func(_ ecs.EntityID, c *creature.Creature) {
		c.Agent.Step(dt)
	})
}

// TriggerSystem tests proximity triggers against the positions produced by
// movement. Phase 3 (Triggers).
type TriggerSystem struct {
	svc *creature.Services
}

func NewTriggerSystem(svc *creature.Services) *TriggerSystem {
	return &TriggerSystem{svc: svc}
}

func (s *TriggerSystem) Phase() coresys.Phase { return coresys.PhaseTriggers }

func (s *TriggerSystem) Update(time.Duration) {
	s.svc.Triggers.Step()
}
