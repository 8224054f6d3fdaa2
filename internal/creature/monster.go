package creature

import (
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/l1jgo/combatcore/internal/core/event"
	"github.com/l1jgo/combatcore/internal/data"
	"github.com/l1jgo/combatcore/internal/geo"
	"github.com/l1jgo/combatcore/internal/timer"
)

// Spawn creates a monster from its template at pos, assigns its abilities in
// order and starts its brain.
func Spawn(svc *Services, m *data.Monster, pos geo.Vec2) (*Creature, error) {
	if len(m.Abilities) > SlotCount {
		return nil, fmt.Errorf("monster %q: %d abilities exceed %d slots", m.ID, len(m.Abilities), SlotCount)
	}
	abilities := make([]*data.Ability, 0, len(m.Abilities))
	for _, id := range m.Abilities {
		a, err := svc.Catalog.Ability(id)
		if err != nil {
			return nil, fmt.Errorf("monster %q: %w", m.ID, err)
		}
		abilities = append(abilities, a)
	}

	c := New(svc, m.Name, KindMonster, Stats{
		MaxHealth:     m.Health,
		Damage:        m.Damage,
		Category:      m.Category,
		Armor:         m.Armor,
		AttackRange:   m.AttackRange,
		AttackSpeed:   m.AttackSpeed,
		Size:          m.Size,
		Height:        m.Height,
		WalkingSpeed:  m.WalkingSpeed,
		RegenPer5s:    m.RegenPer5s,
		ForwardOffset: m.ForwardOffset,
	}, pos)
	c.Template = m
	for i, a := range abilities {
		c.Abilities.AssignAbilityToSlot(i, a)
	}
	if m.Attackable {
		c.Interactable = &monsterTarget{c: c}
	}
	c.OnDeath(c.awardExperience)
	c.OnDeath(func(*Creature) {
		svc.Timers.Schedule(svc.Combat.CorpseLinger, func() {
			if c.Valid() {
				c.Despawn()
			}
		})
	})

	c.brain = &Brain{c: c, spawn: pos}
	c.brain.schedule()
	c.ClearDirty()
	return c, nil
}

// awardExperience splits the template's experience by damage category.
func (c *Creature) awardExperience(killer *Creature) {
	if c.Template == nil || c.Template.Experience <= 0 {
		return
	}
	shares := c.Combat.experienceShares(c.Template.Experience)
	for cat := data.Melee; cat <= data.Magic; cat++ {
		amount, ok := shares[cat]
		if !ok || amount <= 0 {
			continue
		}
		ev := event.ExperienceAwarded{Victim: c.ID, Category: cat.String(), Amount: amount}
		if killer != nil {
			ev.Recipient = killer.ID
		}
		event.Emit(c.svc.Events, ev)
	}
}

// Brain makes periodic decisions for an autonomous creature: wander near the
// spawn point while out of combat.
type Brain struct {
	c     *Creature
	spawn geo.Vec2
	next  *timer.Handle
}

// Spawn returns the brain's home point.
func (b *Brain) Spawn() geo.Vec2 { return b.spawn }

func (b *Brain) schedule() {
	b.next = b.c.svc.Timers.Schedule(b.interval(), b.think)
}

// interval jitters the template's think period by ±ActionJitter.
func (b *Brain) interval() time.Duration {
	base := b.c.Template.TimeBetweenActions
	j := b.c.svc.Combat.ActionJitter
	f := 1 + (b.c.svc.Rand.Float64()*2-1)*j
	return time.Duration(float64(base) * f)
}

func (b *Brain) think() {
	c := b.c
	if !c.Valid() || c.Dead() {
		return
	}
	if !c.Combat.InCombat() && c.Template.Wanders && c.Template.WanderingRadius > 0 {
		b.wander()
	}
	b.schedule()
}

func (b *Brain) wander() {
	c := b.c
	r := c.Template.WanderingRadius * math.Sqrt(c.svc.Rand.Float64())
	dest := b.spawn.Add(geo.FromHeading(c.svc.Rand.Float64() * 360).Scale(r))
	c.log().Debug("wander", zap.Float64("x", dest.X), zap.Float64("y", dest.Y))
	c.Tasks.CreateTask(MoveArgs{Position: dest}, PriorityLow)
}

func (b *Brain) stop() {
	b.next.Cancel()
}

// Brain returns the monster's brain, nil for players.
func (c *Creature) Brain() *Brain { return c.brain }

// monsterTarget makes a monster interactable: interacting means attacking it.
type monsterTarget struct {
	c *Creature
}

func (m *monsterTarget) OnInteractEnter(actor *Creature) {
	if !m.c.Alive() {
		return
	}
	actor.Tasks.CreateTask(AttackArgs{Target: m.c}, PriorityNormal)
}

func (m *monsterTarget) OnInteractExit(*Creature) {}

func (m *monsterTarget) InteractionRadius() float64 {
	return m.c.Stats.AttackRange + m.c.Stats.Size
}

func (m *monsterTarget) DefaultAction() string { return "Attack" }
