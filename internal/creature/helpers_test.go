package creature

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/l1jgo/combatcore/internal/config"
	"github.com/l1jgo/combatcore/internal/core/ecs"
	"github.com/l1jgo/combatcore/internal/data"
	"github.com/l1jgo/combatcore/internal/geo"
)

const testAbilities = `
abilities:
  - id: strike
    behavior: apply_status
    cooldown: 5
    status: mark
    duration: 30
  - id: bash
    behavior: apply_status
    cooldown: 3
    status: mark
    duration: 30
  - id: slam
    behavior: slam
    cooldown: 8
    status: stun
    magnitude: 1
    duration: 2
  - id: reflect
    behavior: reflect
    cooldown: 20
    status: reflect
    magnitude: 1
    duration: 10
  - id: boom
    behavior: boom
    cooldown: 6
    damage: 25
    damage_category: magic
`

const testStatuses = `
status_effects:
  - id: mark
    temporary: true
    reset: true
  - id: renew
    temporary: true
    reset: true
  - id: extend
    temporary: true
  - id: poison
    temporary: true
    stackable: true
    kinds: [damage_over_time]
    damage_category: magic
  - id: stun
    temporary: true
    reset: true
    kinds: [stun]
    particle: stars
  - id: reflect
    temporary: true
    reset: true
    kinds: [reflect]
  - id: slow
    temporary: true
    reset: true
    kinds: [slow]
  - id: hidden
    hidden: true
`

const testMonsters = `
monsters:
  - id: ogre
    name: Ogre
    walking_speed: 2
    time_between_actions: 2
    wandering_radius: 3
    attackable: true
    size: 0.5
    health: 100
    damage: 10
    damage_category: melee
    attack_range: 1
    attack_speed: 2
    experience: 100
    abilities: [slam]
  - id: broken
    abilities: [does_not_exist]
`

func testCatalog(t *testing.T) *data.Catalog {
	t.Helper()
	abilities, err := data.ParseAbilityTable([]byte(testAbilities))
	require.NoError(t, err)
	statuses, err := data.ParseStatusTable([]byte(testStatuses))
	require.NoError(t, err)
	monsters, err := data.ParseMonsterTable([]byte(testMonsters))
	require.NoError(t, err)
	return &data.Catalog{Abilities: abilities, Statuses: statuses, Monsters: monsters}
}

func newTestServices(t *testing.T) *Services {
	t.Helper()
	combat := config.DefaultCombat()
	combat.DamageJitter = 0
	return NewServices(testCatalog(t), combat, zaptest.NewLogger(t), 42)
}

// tick advances one simulated frame the way the game loop does.
func tick(svc *Services, dt time.Duration) {
	svc.Timers.Advance(dt)
	svc.Creatures.Each(func(_ ecs.EntityID, c *Creature) { c.Agent.Step(dt) })
	svc.Triggers.Step()
	svc.Entities.Flush()
}

// run ticks at 100ms until d has elapsed.
func run(svc *Services, d time.Duration) {
	const dt = 100 * time.Millisecond
	for elapsed := time.Duration(0); elapsed < d; elapsed += dt {
		tick(svc, dt)
	}
}

func newPlayer(svc *Services, name string, pos geo.Vec2) *Creature {
	return New(svc, name, KindPlayer, DefaultStats(), pos)
}

func ability(t *testing.T, svc *Services, id string) *data.Ability {
	t.Helper()
	a, err := svc.Catalog.Ability(id)
	require.NoError(t, err)
	return a
}

func status(t *testing.T, svc *Services, id string, magnitude float64, duration int) *Status {
	t.Helper()
	cfg, err := svc.Catalog.Status(id)
	require.NoError(t, err)
	return NewStatus(cfg, magnitude, duration)
}

// recorder collects every event the bus delivers.
type recorder struct {
	svc    *Services
	events []any
}

func record(svc *Services) *recorder {
	r := &recorder{svc: svc}
	svc.Events.SubscribeAll(func(ev any) { r.events = append(r.events, ev) })
	return r
}

func (r *recorder) flush() []any {
	r.svc.Events.Flush()
	return r.events
}

func eventsOf[T any](r *recorder) []T {
	var out []T
	for _, ev := range r.flush() {
		if v, ok := ev.(T); ok {
			out = append(out, v)
		}
	}
	return out
}
