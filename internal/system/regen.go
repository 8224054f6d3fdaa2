package system

import (
	"time"

	"github.com/l1jgo/combatcore/internal/core/ecs"
	coresys "github.com/l1jgo/combatcore/internal/core/system"
	"github.com/l1jgo/combatcore/internal/creature"
)

// RegenFormula scales the configured regeneration; the Lua engine
// implements it.
type RegenFormula interface {
	RegenAmount(perInterval, health, maxHealth float64) float64
}

// RegenSystem heals creatures that are alive, out of combat and below max
// health. Phase 4 (PostUpdate). Runs every tick; the accumulator gates
// actual regen to once per configured interval.
type RegenSystem struct {
	svc     *creature.Services
	formula RegenFormula // nil heals the flat configured amount
	acc     time.Duration
}

func NewRegenSystem(svc *creature.Services, formula RegenFormula) *RegenSystem {
	return &RegenSystem{svc: svc, formula: formula}
}

func (s *RegenSystem) Phase() coresys.Phase { return coresys.PhasePostUpdate }

func (s *RegenSystem) Update(dt time.Duration) {
	interval := s.svc.Combat.RegenInterval
	if interval <= 0 {
		return
	}
	s.acc += dt
	if s.acc < interval {
		return
	}
	s.acc -= interval

	// regen_per_5s is expressed per five seconds; scale to the interval.
	scale := interval.Seconds() / 5
	s.svc.Creatures.Each(func(_ ecs.EntityID, c *creature.Creature) {
		s.regen(c, scale)
	})
}

func (s *RegenSystem) regen(c *creature.Creature, scale float64) {
	if !c.Alive() || c.Combat.InCombat() || c.Stats.RegenPer5s <= 0 {
		return
	}
	health, maxHealth := c.Combat.Health(), c.Stats.MaxHealth
	if health >= maxHealth {
		return
	}
	amount := c.Stats.RegenPer5s * scale
	if s.formula != nil {
		amount = s.formula.RegenAmount(amount, health, maxHealth)
	}
	c.Combat.IncreaseHealth(amount)
}
