package creature

import (
	"math"
	"time"

	"github.com/l1jgo/combatcore/internal/core/event"
	"github.com/l1jgo/combatcore/internal/data"
	"github.com/l1jgo/combatcore/internal/timer"
)

// CombatState tracks engagement, health and death for one creature.
//
// State machine: Alive(OutOfCombat) <-> Alive(InCombat) -> Dead.
type CombatState struct {
	c        *Creature
	health   float64
	dead     bool
	inCombat bool
	activity bool
	idle     time.Duration
	targets  []*Creature
	monitor  *timer.Ticker

	// damage taken per category during the current engagement; typeless
	// counts as melee. Cleared when combat is exited, kept through death.
	ledger       [4]float64
	lastAttacker *Creature
}

func newCombatState(c *Creature) *CombatState {
	return &CombatState{c: c, health: c.Stats.MaxHealth}
}

func (s *CombatState) Health() float64 { return s.health }
func (s *CombatState) Dead() bool      { return s.dead }
func (s *CombatState) InCombat() bool  { return s.inCombat }

// Fraction is health over max health, 0 when max health is not positive.
func (s *CombatState) Fraction() float64 {
	if s.c.Stats.MaxHealth <= 0 {
		return 0
	}
	return s.health / s.c.Stats.MaxHealth
}

// Idle returns the accumulated time without combat activity.
func (s *CombatState) Idle() time.Duration { return s.idle }

// Targets returns a copy of the combat-target set in engagement order.
func (s *CombatState) Targets() []*Creature {
	out := make([]*Creature, len(s.targets))
	copy(out, s.targets)
	return out
}

// FirstTarget returns the earliest engaged target, or nil.
func (s *CombatState) FirstTarget() *Creature {
	if len(s.targets) == 0 {
		return nil
	}
	return s.targets[0]
}

func (s *CombatState) HasTarget(t *Creature) bool {
	for _, x := range s.targets {
		if x == t {
			return true
		}
	}
	return false
}

// DamageTaken returns the damage accumulated for a category during the
// current engagement.
func (s *CombatState) DamageTaken(cat data.DamageCategory) float64 {
	return s.ledger[ledgerSlot(cat)]
}

func ledgerSlot(cat data.DamageCategory) data.DamageCategory {
	if cat == data.Typeless {
		return data.Melee
	}
	return cat
}

// MarkActivity resets the inactivity timeout at the next monitor check.
func (s *CombatState) MarkActivity() { s.activity = true }

// EnterCombat engages target. The first engagement also forces the target to
// engage back and replaces the target's task with an Attack on this creature.
func (s *CombatState) EnterCombat(target *Creature) {
	if target == nil || target == s.c || s.dead || target.Dead() {
		return
	}
	if !s.inCombat {
		s.inCombat = true
		s.c.setAnim(event.CueCombat, true)
		event.Emit(s.c.svc.Events, event.CombatChanged{Entity: s.c.ID, InCombat: true})

		target.Combat.EnterCombat(s.c)
		target.Tasks.CancelTask()
		target.Tasks.CreateTask(AttackArgs{Target: s.c}, PriorityHigh)
	}

	if !s.HasTarget(target) {
		s.targets = append(s.targets, target)
	}
	s.activity = true

	if s.monitor.Running() {
		return
	}
	interval := s.c.svc.Combat.MonitorInterval
	s.monitor = s.c.svc.Timers.Repeat(0, interval, s.checkActivity)
}

func (s *CombatState) checkActivity() {
	if !s.c.Valid() {
		s.stopMonitor()
		return
	}
	if s.activity {
		s.idle = 0
		s.activity = false
		return
	}
	s.idle += s.c.svc.Combat.MonitorInterval
	if s.idle >= s.c.svc.Combat.CombatTimeout {
		s.c.log().Debug("combat timed out")
		s.ExitAllCombat()
	}
}

// ExitCombat drops target from the target set. Combat only ends once no
// targets remain. A nil target ends combat outright.
func (s *CombatState) ExitCombat(target *Creature) {
	if target != nil {
		s.removeTarget(target)
		if len(s.targets) > 0 {
			return
		}
	}
	s.ExitAllCombat()
}

// ExitAllCombat ends combat with every target.
func (s *CombatState) ExitAllCombat() {
	s.leaveAll()
	s.ledger = [4]float64{}
}

func (s *CombatState) removeTarget(t *Creature) {
	for i, x := range s.targets {
		if x == t {
			s.targets = append(s.targets[:i], s.targets[i+1:]...)
			return
		}
	}
}

func (s *CombatState) leaveAll() {
	s.stopMonitor()
	if s.inCombat {
		s.c.setAnim(event.CueCombat, false)
		event.Emit(s.c.svc.Events, event.CombatChanged{Entity: s.c.ID, InCombat: false})
	}
	s.inCombat = false
	s.activity = false
	s.idle = 0
	s.targets = nil
}

func (s *CombatState) stopMonitor() {
	s.monitor.Stop()
	s.monitor = nil
}

// SufferDamage runs the damage pipeline: reflect, armor mitigation, clamp to
// remaining health, then death when health reaches zero.
func (s *CombatState) SufferDamage(cat data.DamageCategory, amount float64) {
	s.suffer(cat, amount, nil)
}

// SufferDamageFrom is SufferDamage followed by EnterCombat(attacker).
func (s *CombatState) SufferDamageFrom(cat data.DamageCategory, amount float64, attacker *Creature) {
	s.suffer(cat, amount, attacker)
	if attacker.Alive() {
		s.EnterCombat(attacker)
	}
}

func (s *CombatState) suffer(cat data.DamageCategory, amount float64, attacker *Creature) {
	if s.dead {
		return
	}
	if s.reflect(cat, amount) {
		return
	}

	svc := s.c.svc
	amount -= svc.Formula.Mitigation(s.c.Stats.Armor, svc.Combat.MitigationFactor)
	if amount < 0 {
		amount = 0
	}
	if amount > s.health {
		amount = s.health
	}
	s.health -= amount
	s.ledger[ledgerSlot(cat)] += amount
	if attacker != nil {
		s.lastAttacker = attacker
	}
	s.c.markDirty()

	s.emitHealth()
	event.Emit(svc.Events, event.Hitsplat{Entity: s.c.ID, Amount: int(amount), Blocked: amount == 0})

	if s.health <= 0 {
		s.die()
	}
}

// reflect bounces the hit to the first combat target and consumes the
// reflecting status.
func (s *CombatState) reflect(cat data.DamageCategory, amount float64) bool {
	key, ok := s.c.Statuses.WithKind(KindReflect)
	if !ok {
		return false
	}
	attacker := s.FirstTarget()
	if attacker == nil {
		return false
	}
	s.c.cue(event.CueBlock)
	attacker.Combat.SufferDamage(cat, amount)
	s.c.Statuses.Remove(key)
	return true
}

// IncreaseHealth heals up to max health. Dead creatures are not healed.
func (s *CombatState) IncreaseHealth(v float64) {
	if s.dead || v <= 0 {
		return
	}
	s.health = math.Min(s.health+v, s.c.Stats.MaxHealth)
	s.c.markDirty()
	s.emitHealth()
}

// setHealth overwrites health from a snapshot. Death is one-way: a dead
// creature keeps zero health.
func (s *CombatState) setHealth(v float64) {
	if s.dead {
		return
	}
	s.health = math.Max(0, math.Min(v, s.c.Stats.MaxHealth))
	if s.health <= 0 {
		s.dead = true
	}
	s.emitHealth()
}

func (s *CombatState) emitHealth() {
	event.Emit(s.c.svc.Events, event.HealthUpdated{
		Entity:    s.c.ID,
		Fraction:  s.Fraction(),
		Health:    s.health,
		MaxHealth: s.c.Stats.MaxHealth,
	})
}

// die is the one-way transition to Dead.
func (s *CombatState) die() {
	if s.dead {
		return
	}
	s.dead = true
	c := s.c
	c.setAnim(event.CueDeath, true)
	c.Agent.Stop()
	c.Agent.Disable()
	c.Tasks.CancelTask()

	for _, t := range s.Targets() {
		t.Combat.ExitCombat(c)
	}
	s.leaveAll()

	event.Emit(c.svc.Events, event.Death{Entity: c.ID})
	c.log().Info("creature died")

	killer := s.lastAttacker
	for _, fn := range c.onDeath {
		fn(killer)
	}
}

// experienceShares splits xp by the share of damage taken per category.
func (s *CombatState) experienceShares(xp int) map[data.DamageCategory]int {
	var total float64
	for _, d := range s.ledger {
		total += d
	}
	out := make(map[data.DamageCategory]int)
	if total <= 0 {
		return out
	}
	for cat, d := range s.ledger {
		if d > 0 {
			out[data.DamageCategory(cat)] = int(math.Round(d / total * float64(xp)))
		}
	}
	return out
}
