package system

import (
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/l1jgo/combatcore/internal/config"
	"github.com/l1jgo/combatcore/internal/creature"
	"github.com/l1jgo/combatcore/internal/geo"
	"github.com/l1jgo/combatcore/internal/net/feed"
	"github.com/l1jgo/combatcore/internal/persist"
)

type inputFixture struct {
	svc    *creature.Services
	hub    *feed.Hub
	store  *feed.SessionStore
	roster *Roster
	saved  *fakeStore
	input  *InputSystem
	url    string
}

func newInputFixture(t *testing.T) *inputFixture {
	t.Helper()
	svc := newServices(t)
	hub := feed.NewHub(config.Defaults().Feed, svc.Log)
	srv := httptest.NewServer(hub.Handler())
	t.Cleanup(srv.Close)

	f := &inputFixture{
		svc:    svc,
		hub:    hub,
		store:  feed.NewSessionStore(),
		roster: NewRoster(),
		saved:  newFakeStore(),
		url:    "ws" + strings.TrimPrefix(srv.URL, "http"),
	}
	f.input = NewInputSystem(hub, f.store, svc, f.roster, f.saved, geo.V(1, 1), []string{"boom", "reflect"}, 8)
	return f
}

func (f *inputFixture) connect(t *testing.T) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(f.url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, msg string) {
	t.Helper()
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(msg)))
}

// until runs the input system until cond holds.
func (f *inputFixture) until(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		f.input.Update(dt)
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not reached")
}

func TestJoinCreatesPlayerWithStarterAbilities(t *testing.T) {
	f := newInputFixture(t)
	conn := f.connect(t)

	send(t, conn, `{"type":"join","name":"alice"}`)
	f.until(t, func() bool { return f.roster.ByName("alice") != nil })

	alice := f.roster.ByName("alice")
	assert.Equal(t, geo.V(1, 1), alice.Position())
	slots := alice.Abilities.Slots()
	require.NotNil(t, slots[0].Ability)
	assert.Equal(t, "boom", slots[0].Ability.ID)
	assert.Equal(t, "reflect", slots[1].Ability.ID)
	assert.Equal(t, 1, f.store.Count())

	send(t, conn, `{"type":"move","x":6,"y":1}`)
	f.until(t, func() bool { return alice.Tasks.Active() != nil })
	move, ok := alice.Tasks.Active().(*creature.MoveTask)
	require.True(t, ok)
	assert.Equal(t, geo.V(6, 1), move.Destination())
}

func TestJoinRestoresSnapshot(t *testing.T) {
	f := newInputFixture(t)
	f.saved.rows["bob"] = persist.SnapshotRow{
		Name:       "bob",
		MaxHealth:  150,
		Health:     75,
		Damage:     9,
		AbilityIDs: []string{"", "poison_spit", "", "", ""},
	}
	conn := f.connect(t)

	send(t, conn, `{"type":"join","name":"bob"}`)
	f.until(t, func() bool { return f.roster.ByName("bob") != nil })

	bob := f.roster.ByName("bob")
	assert.Equal(t, 75.0, bob.Combat.Health())
	assert.Equal(t, 150.0, bob.Stats.MaxHealth)
	slots := bob.Abilities.Slots()
	assert.Nil(t, slots[0].Ability)
	assert.Equal(t, "poison_spit", slots[1].Ability.ID)
}

func TestCommandsBeforeJoinAreIgnored(t *testing.T) {
	f := newInputFixture(t)
	conn := f.connect(t)

	send(t, conn, `{"type":"move","x":6,"y":1}`)
	send(t, conn, `{"type":"join","name":"carol"}`)
	f.until(t, func() bool { return f.roster.ByName("carol") != nil })
	assert.Nil(t, f.roster.ByName("carol").Tasks.Active())
}

func TestDisconnectSavesAndDespawns(t *testing.T) {
	f := newInputFixture(t)
	conn := f.connect(t)

	send(t, conn, `{"type":"join","name":"dave"}`)
	f.until(t, func() bool { return f.roster.ByName("dave") != nil })
	dave := f.roster.ByName("dave")
	id := dave.ID

	conn.Close()
	f.until(t, func() bool { return f.roster.Count() == 0 })
	f.svc.Entities.Flush()

	assert.Nil(t, f.svc.Lookup(id))
	assert.Zero(t, f.store.Count())
	require.Contains(t, f.saved.rows, "dave")
	assert.Equal(t, []string{"boom", "reflect", "", "", ""}, f.saved.rows["dave"].AbilityIDs)
}

func TestDuplicateNameRefused(t *testing.T) {
	f := newInputFixture(t)
	first := f.connect(t)
	second := f.connect(t)

	send(t, first, `{"type":"join","name":"erin"}`)
	f.until(t, func() bool { return f.roster.ByName("erin") != nil })
	send(t, second, `{"type":"join","name":"erin"}`)
	f.until(t, func() bool { return f.store.Count() == 2 })
	for i := 0; i < 20; i++ {
		f.input.Update(dt)
		time.Sleep(5 * time.Millisecond)
	}
	assert.Equal(t, 1, f.roster.Count())
}

func TestJoinRefusedWhenSnapshotCannotRestore(t *testing.T) {
	f := newInputFixture(t)
	stored := persist.SnapshotRow{
		Name:       "frank",
		MaxHealth:  300,
		Health:     250,
		Damage:     12,
		AbilityIDs: []string{"retired_ability", "", "", "", ""},
	}
	f.saved.rows["frank"] = stored
	conn := f.connect(t)

	send(t, conn, `{"type":"join","name":"frank"}`)
	f.until(t, func() bool { return f.saved.loads == 1 })
	f.svc.Entities.Flush()
	assert.Nil(t, f.roster.ByName("frank"))
	assert.Zero(t, f.svc.Entities.Count(), "half-built player despawned")

	conn.Close()
	f.until(t, func() bool { return f.store.Count() == 0 })
	assert.Zero(t, f.saved.batches)
	assert.Equal(t, stored, f.saved.rows["frank"])
}

func TestJoinRefusedWhenSnapshotLoadFails(t *testing.T) {
	f := newInputFixture(t)
	f.saved.fail = errors.New("connection reset")
	conn := f.connect(t)

	send(t, conn, `{"type":"join","name":"gina"}`)
	f.until(t, func() bool { return f.saved.loads == 1 })
	assert.Zero(t, f.roster.Count())
	assert.Zero(t, f.svc.Entities.Count())

	send(t, conn, `{"type":"move","x":6,"y":1}`)
	f.saved.fail = nil
	send(t, conn, `{"type":"join","name":"gina"}`)
	f.until(t, func() bool { return f.roster.ByName("gina") != nil })
	assert.Nil(t, f.roster.ByName("gina").Tasks.Active(), "move before a successful join is ignored")
}
