package creature

import "github.com/l1jgo/combatcore/internal/core/event"

// Effect kinds understood by the status scheduler.
const (
	KindDamageOverTime = "damage_over_time"
	KindHealOverTime   = "heal_over_time"
	KindStun           = "stun"
	KindSlow           = "slow"
	KindHaste          = "haste"
	KindReflect        = "reflect"
)

// EffectKind is the behaviour attached to an effect-kind tag. Any function may
// be nil.
type EffectKind struct {
	Apply   func(st *Status, c *Creature)
	Unapply func(st *Status, c *Creature)
	Tick    func(st *Status, c *Creature)
}

// effectKinds is filled in init: the kind functions reach back into the
// scheduler, which reads this table.
var effectKinds map[string]EffectKind

func init() {
	effectKinds = map[string]EffectKind{
		KindDamageOverTime: {Tick: damageOverTime},
		KindHealOverTime:   {Tick: healOverTime},
		KindStun:           {Apply: stun, Unapply: unstun},
		KindSlow:           {Apply: slow, Unapply: haste},
		KindHaste:          {Apply: haste, Unapply: slow},
		KindReflect:        {}, // marker consumed by CombatState
	}
}

func damageOverTime(st *Status, c *Creature) {
	if c.Dead() {
		return
	}
	c.Combat.SufferDamage(st.Config.Category, st.Magnitude*float64(st.Stacks))
}

func healOverTime(st *Status, c *Creature) {
	c.Combat.IncreaseHealth(st.Magnitude * float64(st.Stacks))
}

func stun(_ *Status, c *Creature) {
	c.Stunned = true
	c.setAnim(event.CueStunned, true)
}

func unstun(_ *Status, c *Creature) {
	c.Stunned = false
	c.setAnim(event.CueStunned, false)
}

func slow(st *Status, c *Creature) {
	c.SpeedMod -= st.Magnitude
}

func haste(st *Status, c *Creature) {
	c.SpeedMod += st.Magnitude
}
