package creature

import (
	"time"

	"go.uber.org/zap"

	"github.com/l1jgo/combatcore/internal/config"
	"github.com/l1jgo/combatcore/internal/core/event"
	"github.com/l1jgo/combatcore/internal/data"
	"github.com/l1jgo/combatcore/internal/timer"
)

// SlotCount is the fixed number of ability slots per creature.
const SlotCount = 5

// abilitySlot is one assignment. Reassigning a slot replaces the struct, so a
// pending clear from the previous assignment cannot touch the new one.
type abilitySlot struct {
	ability    *data.Ability
	onCooldown bool
	clear      *timer.Handle
}

// SlotView is a read-only copy of a slot for callers outside the package.
type SlotView struct {
	Ability    *data.Ability
	OnCooldown bool
}

// AbilityController owns the ability slots, their cooldowns, the shared
// global cooldown and the basic-attack cooldown.
type AbilityController struct {
	c         *Creature
	slots     [SlotCount]*abilitySlot
	global    bool
	globalClr *timer.Handle
	basic     bool
	basicClr  *timer.Handle
}

func newAbilityController(c *Creature) *AbilityController {
	return &AbilityController{c: c}
}

// GlobalCooldown reports whether the shared gate is closed.
func (a *AbilityController) GlobalCooldown() bool { return a.global }

// BasicAttackCooldown reports whether a basic attack is recovering.
func (a *AbilityController) BasicAttackCooldown() bool { return a.basic }

// GlobalCooldownDuration derives the gate length from attack speed under the
// configured policy.
func (a *AbilityController) GlobalCooldownDuration() time.Duration {
	speed := a.c.Stats.AttackSpeed
	if a.c.svc.Combat.GlobalCooldown == config.GCDAttackSpeed {
		return speed
	}
	if half := speed / 2; half < time.Second {
		return half
	}
	return time.Second
}

// SlotOnCooldown reports a slot's own cooldown. Empty or out-of-range slots
// report false.
func (a *AbilityController) SlotOnCooldown(i int) bool {
	if i < 0 || i >= SlotCount || a.slots[i] == nil {
		return false
	}
	return a.slots[i].onCooldown
}

// Slots returns a view of every slot.
func (a *AbilityController) Slots() [SlotCount]SlotView {
	var out [SlotCount]SlotView
	for i, s := range a.slots {
		if s != nil {
			out[i] = SlotView{Ability: s.ability, OnCooldown: s.onCooldown}
		}
	}
	return out
}

// HasAbilities reports whether any slot is assigned.
func (a *AbilityController) HasAbilities() bool {
	for _, s := range a.slots {
		if s != nil {
			return true
		}
	}
	return false
}

// AssignAbilityToSlot overwrites slot i and clears its cooldown.
func (a *AbilityController) AssignAbilityToSlot(i int, ab *data.Ability) {
	if i < 0 || i >= SlotCount {
		a.c.log().Error("ability slot out of range", zap.Int("slot", i))
		return
	}
	if old := a.slots[i]; old != nil {
		old.clear.Cancel()
	}
	a.slots[i] = &abilitySlot{ability: ab}
	a.c.markDirty()
}

// ClearSlot empties slot i.
func (a *AbilityController) ClearSlot(i int) {
	if i < 0 || i >= SlotCount || a.slots[i] == nil {
		return
	}
	a.slots[i].clear.Cancel()
	a.slots[i] = nil
	a.c.markDirty()
}

// TriggerAbility fires slot i at the first combat target. It returns false,
// doing nothing, when there is no target, the global cooldown is active, the
// slot is empty or the slot is cooling down.
func (a *AbilityController) TriggerAbility(i int) bool {
	if i < 0 || i >= SlotCount {
		return false
	}
	target := a.c.Combat.FirstTarget()
	log := a.c.log()
	switch {
	case target == nil:
		log.Debug("no target for ability", zap.Int("slot", i))
		return false
	case a.c.Dead() || a.c.Stunned:
		return false
	case a.global:
		log.Debug("global cooldown active", zap.Int("slot", i))
		return false
	case a.slots[i] == nil:
		log.Debug("no ability in slot", zap.Int("slot", i))
		return false
	case a.slots[i].ability.Passive:
		return false
	case a.slots[i].onCooldown:
		log.Debug("ability on cooldown", zap.String("ability", a.slots[i].ability.ID))
		return false
	}
	a.fire(i, target)
	return true
}

// TriggerNextAbility fires the first assigned slot that is not cooling down.
// Used by autonomous creatures. Returns false when the global cooldown is
// active or no slot is ready.
func (a *AbilityController) TriggerNextAbility() bool {
	if a.global || a.c.Dead() || a.c.Stunned {
		return false
	}
	target := a.c.Combat.FirstTarget()
	if target == nil {
		return false
	}
	for i, s := range a.slots {
		if s == nil || s.onCooldown || s.ability.Passive {
			continue
		}
		a.fire(i, target)
		return true
	}
	return false
}

func (a *AbilityController) fire(i int, target *Creature) {
	svc := a.c.svc
	slot := a.slots[i]
	gcd := a.GlobalCooldownDuration()

	a.global = true
	slot.onCooldown = true
	slot.clear = svc.Timers.Schedule(slot.ability.Cooldown, func() {
		slot.onCooldown = false
	})
	a.globalClr = svc.Timers.Schedule(gcd, func() {
		a.global = false
	})

	event.Emit(svc.Events, event.AbilityTriggered{
		Entity:         a.c.ID,
		Slot:           i,
		Cooldown:       slot.ability.Cooldown,
		GlobalCooldown: gcd,
	})
	a.c.Combat.MarkActivity()
	execute(slot.ability, a.c, target)
}

// TriggerBasicAttack starts a basic attack unless one is recovering. The
// cooldown lasts one attack-speed interval; onCompleted runs when it clears.
// It does not touch the global cooldown.
func (a *AbilityController) TriggerBasicAttack(onCompleted func()) bool {
	if a.basic {
		return false
	}
	a.basic = true
	a.c.cue(event.CueAttack)
	a.basicClr = a.c.svc.Timers.Schedule(a.c.Stats.AttackSpeed, func() {
		a.basic = false
		if onCompleted != nil {
			onCompleted()
		}
	})
	return true
}

// reset drops every pending clear; used on teardown.
func (a *AbilityController) reset() {
	a.globalClr.Cancel()
	a.basicClr.Cancel()
	for _, s := range a.slots {
		if s != nil {
			s.clear.Cancel()
			s.onCooldown = false
		}
	}
	a.global = false
	a.basic = false
}
