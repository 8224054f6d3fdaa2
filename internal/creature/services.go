// Package creature implements combat participants: each Creature owns a
// CombatState, an AbilityController, a StatusScheduler and a TaskScheduler,
// and drives them through the shared timer queue and trigger manager.
//
// Everything here runs on the game loop goroutine. Cross-creature calls such
// as EnterCombat forcing the target into combat are direct and synchronous.
package creature

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"go.uber.org/zap"

	"github.com/l1jgo/combatcore/internal/config"
	"github.com/l1jgo/combatcore/internal/core/ecs"
	"github.com/l1jgo/combatcore/internal/core/event"
	"github.com/l1jgo/combatcore/internal/data"
	"github.com/l1jgo/combatcore/internal/geo"
	"github.com/l1jgo/combatcore/internal/timer"
	"github.com/l1jgo/combatcore/internal/trigger"
	"github.com/l1jgo/combatcore/internal/world"
)

// Catalog validation errors.
var (
	ErrUnknownBehavior   = errors.New("unknown ability behavior")
	ErrUnknownEffectKind = errors.New("unknown status effect kind")
)

// Formula computes the numeric side of a hit. The scripting engine implements
// it with Lua; DefaultFormula is the built-in fallback.
type Formula interface {
	// HitDamage scales base damage by roll, drawn from [1-jitter, 1+jitter].
	HitDamage(base, roll float64) float64
	// Mitigation returns the flat reduction granted by armor.
	Mitigation(armor, factor float64) float64
}

// DefaultFormula rounds to the nearest whole point.
type DefaultFormula struct{}

func (DefaultFormula) HitDamage(base, roll float64) float64 { return math.Round(base * roll) }

func (DefaultFormula) Mitigation(armor, factor float64) float64 { return math.Round(armor * factor) }

// Services holds the process-wide collaborators shared by every creature.
type Services struct {
	Entities  *ecs.World
	Creatures *ecs.Store[Creature]
	World     *world.State
	Timers    *timer.Queue
	Triggers  *trigger.Manager
	Events    *event.Bus
	Catalog   *data.Catalog
	Formula   Formula
	Rand      *rand.Rand
	Log       *zap.Logger
	Combat    config.CombatConfig

	// Blocked is the navigation boundary: it reports positions the agent
	// cannot step onto. Nil means open ground.
	Blocked func(geo.Vec2) bool
}

// NewServices builds a service set with a fresh entity world, spatial index,
// timer queue, trigger manager and event bus. Callers may swap Formula or
// Blocked afterwards.
func NewServices(catalog *data.Catalog, combat config.CombatConfig, log *zap.Logger, seed int64) *Services {
	if log == nil {
		log = zap.NewNop()
	}
	ws := world.NewState(8)
	svc := &Services{
		Entities:  ecs.NewWorld(),
		Creatures: ecs.NewStore[Creature](),
		World:     ws,
		Timers:    timer.NewQueue(),
		Triggers:  trigger.NewManager(ws),
		Events:    event.NewBus(),
		Catalog:   catalog,
		Formula:   DefaultFormula{},
		Rand:      rand.New(rand.NewSource(seed)),
		Log:       log,
		Combat:    combat,
	}
	svc.Entities.OnDestroy(func(id ecs.EntityID) {
		if c, ok := svc.Creatures.Get(id); ok {
			c.teardown()
		}
		ws.Remove(id)
	})
	svc.Entities.Register(svc.Creatures)
	return svc
}

// Lookup returns the live creature for id, or nil.
func (s *Services) Lookup(id ecs.EntityID) *Creature {
	if !s.Entities.Alive(id) {
		return nil
	}
	c, _ := s.Creatures.Get(id)
	return c
}

// roll draws a damage multiplier from [1-jitter, 1+jitter].
func (s *Services) roll() float64 {
	j := s.Combat.DamageJitter
	return 1 - j + s.Rand.Float64()*2*j
}

// ValidateCatalog checks that every behaviour and effect kind named by the
// catalog has an implementation.
func ValidateCatalog(c *data.Catalog) error {
	var err error
	c.Abilities.Each(func(a *data.Ability) {
		if err != nil {
			return
		}
		if _, ok := behaviors[a.Behavior]; !ok {
			err = fmt.Errorf("ability %q: %w: %q", a.ID, ErrUnknownBehavior, a.Behavior)
		}
	})
	if err != nil {
		return err
	}
	c.Statuses.Each(func(s *data.StatusEffect) {
		if err != nil {
			return
		}
		for _, k := range s.Kinds {
			if _, ok := effectKinds[k]; !ok {
				err = fmt.Errorf("status %q: %w: %q", s.ID, ErrUnknownEffectKind, k)
				return
			}
		}
	})
	return err
}
