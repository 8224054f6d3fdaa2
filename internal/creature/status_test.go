package creature

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/l1jgo/combatcore/internal/core/event"
	"github.com/l1jgo/combatcore/internal/data"
	"github.com/l1jgo/combatcore/internal/geo"
)

func TestReapplyResettableTakesIncomingDuration(t *testing.T) {
	svc := newTestServices(t)
	p := newPlayer(svc, "hero", geo.V(0, 0))

	p.Statuses.Add(status(t, svc, "renew", 1, 3))
	p.Statuses.Add(status(t, svc, "renew", 1, 10))

	assert.Equal(t, 10, p.Statuses.Get("renew").Duration)
	assert.Equal(t, 1, p.Statuses.Len())
}

func TestReapplyNonResettableExtends(t *testing.T) {
	svc := newTestServices(t)
	p := newPlayer(svc, "hero", geo.V(0, 0))

	p.Statuses.Add(status(t, svc, "extend", 1, 3))
	p.Statuses.Add(status(t, svc, "extend", 1, 10))

	assert.Equal(t, 13, p.Statuses.Get("extend").Duration)
}

func TestReapplyAfterTicking(t *testing.T) {
	svc := newTestServices(t)
	p := newPlayer(svc, "hero", geo.V(0, 0))

	p.Statuses.Add(status(t, svc, "renew", 1, 5))
	svc.Timers.Advance(time.Second)
	svc.Timers.Advance(time.Second)
	require.Equal(t, 3, p.Statuses.Get("renew").Duration)

	p.Statuses.Add(status(t, svc, "renew", 1, 10))
	assert.Equal(t, 10, p.Statuses.Get("renew").Duration)
}

func TestStackableIncrementsStacks(t *testing.T) {
	svc := newTestServices(t)
	rec := record(svc)
	p := newPlayer(svc, "hero", geo.V(0, 0))

	p.Statuses.Add(status(t, svc, "poison", 2, 5))
	p.Statuses.Add(status(t, svc, "poison", 2, 5))

	st := p.Statuses.Get("poison")
	require.NotNil(t, st)
	assert.Equal(t, 2, st.Stacks)
	assert.Equal(t, 1, p.Statuses.Len())

	assert.Len(t, eventsOf[event.StatusAdded](rec), 1)
	updated := eventsOf[event.StatusUpdated](rec)
	require.Len(t, updated, 1)
	assert.Equal(t, 2, updated[0].Status.Stacks)
}

func TestStatusExpiresAndStopsTicking(t *testing.T) {
	svc := newTestServices(t)
	rec := record(svc)
	p := newPlayer(svc, "hero", geo.V(0, 0))

	p.Statuses.Add(status(t, svc, "mark", 1, 2))
	assert.True(t, p.Statuses.Ticking())

	svc.Timers.Advance(time.Second)
	assert.Equal(t, 1, p.Statuses.Get("mark").Duration)

	svc.Timers.Advance(time.Second)
	assert.False(t, p.Statuses.HasEffect("mark"))
	assert.False(t, p.Statuses.Ticking())

	removed := eventsOf[event.StatusRemoved](rec)
	require.Len(t, removed, 1)
	assert.Equal(t, "mark", removed[0].Key)
}

func TestNonTemporaryStatusPersists(t *testing.T) {
	svc := newTestServices(t)
	p := newPlayer(svc, "hero", geo.V(0, 0))

	p.Statuses.Add(status(t, svc, "hidden", 1, 1))
	for i := 0; i < 5; i++ {
		svc.Timers.Advance(time.Second)
	}
	assert.True(t, p.Statuses.HasEffect("hidden"))
	assert.Equal(t, 1, p.Statuses.Get("hidden").Duration)
}

func TestHiddenStatusIsNotAnnounced(t *testing.T) {
	svc := newTestServices(t)
	rec := record(svc)
	p := newPlayer(svc, "hero", geo.V(0, 0))

	p.Statuses.Add(status(t, svc, "hidden", 1, 30))
	assert.Empty(t, eventsOf[event.StatusAdded](rec))

	assert.True(t, p.Statuses.Remove("hidden"))
	assert.Len(t, eventsOf[event.StatusRemoved](rec), 1)
	assert.False(t, p.Statuses.Remove("hidden"))
}

func TestDamageOverTimeTicks(t *testing.T) {
	svc := newTestServices(t)
	p := newPlayer(svc, "hero", geo.V(0, 0))

	p.Statuses.Add(status(t, svc, "poison", 3, 4))
	svc.Timers.Advance(time.Second)
	assert.Equal(t, 97.0, p.Combat.Health())

	p.Statuses.Add(status(t, svc, "poison", 3, 4))
	svc.Timers.Advance(time.Second)
	assert.Equal(t, 91.0, p.Combat.Health(), "two stacks")
	assert.Equal(t, 9.0, p.Combat.DamageTaken(data.Magic))
}

func TestStunAppliesAndUnapplies(t *testing.T) {
	svc := newTestServices(t)
	rec := record(svc)
	p := newPlayer(svc, "hero", geo.V(0, 0))

	p.Statuses.Add(status(t, svc, "stun", 1, 2))
	assert.True(t, p.Stunned)
	assert.False(t, p.Agent.Moving())

	p.Statuses.Remove("stun")
	assert.False(t, p.Stunned)

	var stunned []bool
	for _, a := range eventsOf[event.Animation](rec) {
		if a.Name == event.CueStunned {
			stunned = append(stunned, a.Value)
		}
	}
	assert.Equal(t, []bool{true, false}, stunned)

	fx := eventsOf[event.Effect](rec)
	require.Len(t, fx, 2)
	assert.Equal(t, event.Effect{Entity: p.ID, Kind: "particle", ID: "stars", Play: true}, fx[0])
	assert.False(t, fx[1].Play)
}

func TestSlowChangesSpeed(t *testing.T) {
	svc := newTestServices(t)
	p := newPlayer(svc, "hero", geo.V(0, 0))
	base := p.Agent.Speed()

	p.Statuses.Add(status(t, svc, "slow", 0.5, 3))
	assert.InDelta(t, base*0.5, p.Agent.Speed(), 1e-9)

	p.Statuses.Remove("slow")
	assert.InDelta(t, base, p.Agent.Speed(), 1e-9)
}

func TestBulkUpdateUsesFilter(t *testing.T) {
	svc := newTestServices(t)
	rec := record(svc)
	p := newPlayer(svc, "hero", geo.V(0, 0))

	p.Statuses.Add(status(t, svc, "mark", 1, 30))
	p.Statuses.Add(status(t, svc, "extend", 1, 101))
	p.Statuses.Add(status(t, svc, "hidden", 1, 5))
	svc.Timers.Advance(time.Second)

	updates := eventsOf[event.StatusesUpdated](rec)
	require.Len(t, updates, 1)
	require.Len(t, updates[0].Statuses, 1)
	assert.Equal(t, "mark", updates[0].Statuses[0].Key)

	p.Statuses.Filter = nil
	svc.Timers.Advance(time.Second)
	updates = eventsOf[event.StatusesUpdated](rec)
	assert.Len(t, updates[len(updates)-1].Statuses, 3)
}

func TestNearExpiry(t *testing.T) {
	visible := &data.StatusEffect{ID: "v"}
	hidden := &data.StatusEffect{ID: "h", Hidden: true}

	cases := []struct {
		cfg      *data.StatusEffect
		duration int
		want     bool
	}{
		{visible, 30, true},
		{visible, 59, true},
		{visible, 60, false},
		{visible, 119, true},
		{visible, 100, false},
		{hidden, 30, false},
		{hidden, 119, false},
	}
	for _, tc := range cases {
		st := NewStatus(tc.cfg, 1, tc.duration)
		assert.Equal(t, tc.want, NearExpiry(st), "%s d=%d", tc.cfg.ID, tc.duration)
	}
}

func TestStatusLiteralKeepsItsDuration(t *testing.T) {
	svc := newTestServices(t)
	p := newPlayer(svc, "hero", geo.V(0, 0))
	cfg, err := svc.Catalog.Status("renew")
	require.NoError(t, err)

	p.Statuses.Add(&Status{Key: cfg.ID, Magnitude: 1, Duration: 4, Stacks: 1, Config: cfg})
	assert.Equal(t, 4, p.Statuses.Get("renew").Duration)

	svc.Timers.Advance(time.Second)
	require.True(t, p.Statuses.HasEffect("renew"))
	assert.Equal(t, 3, p.Statuses.Get("renew").Duration)

	p.Statuses.Add(&Status{Key: cfg.ID, Magnitude: 1, Duration: 7, Stacks: 1, Config: cfg})
	assert.Equal(t, 7, p.Statuses.Get("renew").Duration)
}

func TestStatusExpiresOnTimeWithUnevenTicks(t *testing.T) {
	svc := newTestServices(t)
	p := newPlayer(svc, "hero", geo.V(0, 0))
	p.Statuses.Add(status(t, svc, "mark", 1, 10))

	const step = 150 * time.Millisecond
	var removedAt time.Duration
	for i := 0; i < 100 && removedAt == 0; i++ {
		svc.Timers.Advance(step)
		if !p.Statuses.HasEffect("mark") {
			removedAt = svc.Timers.Now()
		}
	}
	require.NotZero(t, removedAt)
	assert.GreaterOrEqual(t, removedAt, 10*time.Second)
	assert.Less(t, removedAt, 10*time.Second+step)
}

func TestDispatchTablesPopulated(t *testing.T) {
	for _, k := range []string{KindDamageOverTime, KindHealOverTime, KindStun, KindSlow, KindHaste, KindReflect} {
		assert.Contains(t, effectKinds, k)
	}
	for _, b := range []string{"slam", "reflect", "boom", "apply_status"} {
		assert.Contains(t, behaviors, b)
	}
}
