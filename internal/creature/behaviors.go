package creature

import (
	"go.uber.org/zap"

	"github.com/l1jgo/combatcore/internal/core/event"
	"github.com/l1jgo/combatcore/internal/data"
)

// Behavior executes an ability for caster against target.
type Behavior func(ab *data.Ability, caster, target *Creature)

// behaviors maps the catalog's behavior key to its implementation. Filled in
// init since behaviours end up calling execute.
var behaviors map[string]Behavior

func init() {
	behaviors = map[string]Behavior{
		"slam":         slam,
		"reflect":      reflectSelf,
		"boom":         boom,
		"apply_status": applyStatus,
	}
}

func execute(ab *data.Ability, caster, target *Creature) {
	fn, ok := behaviors[ab.Behavior]
	if !ok {
		caster.log().Error("unknown ability behavior",
			zap.String("ability", ab.ID), zap.String("behavior", ab.Behavior))
		return
	}
	fn(ab, caster, target)
}

// newStatusFor resolves the ability's status config. Catalog validation makes
// a miss here a broken invariant.
func newStatusFor(ab *data.Ability, caster *Creature) *Status {
	cfg, err := caster.svc.Catalog.Status(ab.StatusID)
	if err != nil {
		caster.log().Error("ability status", zap.String("ability", ab.ID), zap.Error(err))
		return nil
	}
	st := NewStatus(cfg, ab.Magnitude, ab.Duration)
	st.Source = caster
	return st
}

// slam plays the Slam cue, then stuns the target once the impact lands.
func slam(ab *data.Ability, caster, target *Creature) {
	if target == nil {
		caster.log().Debug("no target for slam")
		return
	}
	caster.cue(event.CueSlam)
	land := func() {
		if !caster.Alive() || !target.Alive() {
			return
		}
		if st := newStatusFor(ab, caster); st != nil {
			target.Statuses.Add(st)
		}
	}
	if ab.ImpactDelay <= 0 {
		land()
		return
	}
	caster.svc.Timers.Schedule(ab.ImpactDelay, land)
}

// reflectSelf arms a reflect status on the caster.
func reflectSelf(ab *data.Ability, caster, _ *Creature) {
	if st := newStatusFor(ab, caster); st != nil {
		caster.Statuses.Add(st)
	}
}

// boom deals direct damage of the ability's category.
func boom(ab *data.Ability, caster, target *Creature) {
	if target == nil {
		caster.log().Debug("no target for boom")
		return
	}
	caster.log().Debug("boom", zap.String("target", target.Name), zap.Float64("damage", ab.Damage))
	if ab.Damage > 0 {
		target.Combat.SufferDamageFrom(ab.Category, ab.Damage, caster)
	}
}

// applyStatus puts the ability's status on the target.
func applyStatus(ab *data.Ability, caster, target *Creature) {
	if target == nil {
		return
	}
	if st := newStatusFor(ab, caster); st != nil {
		target.Statuses.Add(st)
	}
}
