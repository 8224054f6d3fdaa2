package system

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/l1jgo/combatcore/internal/core/ecs"
	coresys "github.com/l1jgo/combatcore/internal/core/system"
	"github.com/l1jgo/combatcore/internal/creature"
	"github.com/l1jgo/combatcore/internal/geo"
	"github.com/l1jgo/combatcore/internal/net/feed"
	"github.com/l1jgo/combatcore/internal/persist"
)

// SessionSource is the connection side of the feed.
type SessionSource interface {
	NewSessions() <-chan *feed.Session
	DeadSessions() <-chan uint64
}

// InputSystem accepts feed sessions, drains their command queues and turns
// commands into tasks and ability triggers. Phase 0 (Input).
type InputSystem struct {
	source     SessionSource
	store      *feed.SessionStore
	svc        *creature.Services
	players    *Roster
	snapshots  SnapshotStore // nil disables loading and saving
	spawn      geo.Vec2
	starter    []string
	maxPerTick int
	log        *zap.Logger
}

func NewInputSystem(
	source SessionSource,
	store *feed.SessionStore,
	svc *creature.Services,
	players *Roster,
	snapshots SnapshotStore,
	spawn geo.Vec2,
	starter []string,
	maxPerTick int,
) *InputSystem {
	return &InputSystem{
		source:     source,
		store:      store,
		svc:        svc,
		players:    players,
		snapshots:  snapshots,
		spawn:      spawn,
		starter:    starter,
		maxPerTick: maxPerTick,
		log:        svc.Log,
	}
}

func (s *InputSystem) Phase() coresys.Phase { return coresys.PhaseInput }

func (s *InputSystem) Update(_ time.Duration) {
	// Accept new sessions
	for {
		select {
		case sess := <-s.source.NewSessions():
			s.store.Add(sess)
		default:
			goto doneNew
		}
	}
doneNew:

	// Process dead sessions
	for {
		select {
		case id := <-s.source.DeadSessions():
			if sess := s.store.Get(id); sess != nil {
				s.handleDisconnect(sess)
			}
		default:
			goto doneDead
		}
	}
doneDead:

	s.store.ForEach(func(sess *feed.Session) {
		for i := 0; i < s.maxPerTick; i++ {
			select {
			case cmd := <-sess.InQueue:
				s.dispatch(sess, cmd)
			default:
				return
			}
		}
	})
}

func (s *InputSystem) dispatch(sess *feed.Session, cmd feed.Command) {
	if cmd.Type == feed.CmdJoin {
		s.join(sess, cmd.Name)
		return
	}
	c := s.svc.Lookup(sess.Creature)
	if c == nil {
		s.log.Debug("command before join", zap.Uint64("session", sess.ID), zap.String("type", cmd.Type))
		return
	}
	Apply(s.svc, c, cmd)
}

// Apply executes one command on behalf of c. Unknown targets are ignored.
func Apply(svc *creature.Services, c *creature.Creature, cmd feed.Command) {
	switch cmd.Type {
	case feed.CmdAttack:
		if t := svc.Lookup(ecs.EntityID(cmd.Target)); t != nil {
			c.Tasks.CreateTask(creature.AttackArgs{Target: t}, creature.PriorityNormal)
		}
	case feed.CmdMove:
		c.Tasks.CreateTask(creature.MoveArgs{
			Position: geo.V(cmd.X, cmd.Y),
			Radius:   cmd.Radius,
		}, creature.PriorityNormal)
	case feed.CmdAbility:
		c.Abilities.TriggerAbility(cmd.Slot)
	case feed.CmdInteract:
		t := svc.Lookup(ecs.EntityID(cmd.Target))
		if t == nil || t.Interactable == nil {
			return
		}
		c.Tasks.CreateTask(creature.InteractArgs{
			Target:   t.Interactable,
			Position: t.Position(),
		}, creature.PriorityNormal)
	case feed.CmdCancel:
		c.Tasks.CancelTask()
	}
}

// join binds a session to a player creature, restoring its snapshot when one
// is stored. A snapshot that cannot be loaded or restored refuses the join, so
// the stored state is never overwritten by a fresh character.
func (s *InputSystem) join(sess *feed.Session, name string) {
	if s.svc.Lookup(sess.Creature) != nil {
		return
	}
	if s.players.ByName(name) != nil {
		s.log.Info("name already online", zap.String("name", name))
		return
	}

	var row *persist.SnapshotRow
	if s.snapshots != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		var err error
		row, err = s.snapshots.Load(ctx, name)
		if err != nil {
			s.log.Error("load snapshot, join refused", zap.String("name", name), zap.Error(err))
			return
		}
	}

	c := creature.New(s.svc, name, creature.KindPlayer, creature.DefaultStats(), s.spawn)
	if row != nil {
		if err := c.Restore(FromRow(row)); err != nil {
			s.log.Error("restore snapshot, join refused", zap.String("name", name), zap.Error(err))
			c.Despawn()
			return
		}
	} else {
		s.assignStarter(c)
	}

	s.players.Add(c)
	sess.Creature = c.ID
	s.log.Info("player joined",
		zap.String("name", name),
		zap.Stringer("id", c.ID),
		zap.Bool("restored", row != nil))
}

func (s *InputSystem) assignStarter(c *creature.Creature) {
	for i, id := range s.starter {
		if i >= creature.SlotCount {
			break
		}
		a, err := s.svc.Catalog.Ability(id)
		if err != nil {
			s.log.Error("starter ability", zap.Error(err))
			continue
		}
		c.Abilities.AssignAbilityToSlot(i, a)
	}
}

// handleDisconnect saves the session's player and removes it from the world.
func (s *InputSystem) handleDisconnect(sess *feed.Session) {
	s.store.Remove(sess.ID)
	c := s.players.Get(sess.Creature)
	if c == nil {
		return
	}
	if s.snapshots != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.snapshots.SaveBatch(ctx, []persist.SnapshotRow{ToRow(c.Snapshot())}); err != nil {
			s.log.Error("save on disconnect", zap.String("name", c.Name), zap.Error(err))
		}
	}
	s.players.Remove(c.ID)
	c.Despawn()
	s.log.Info("player left", zap.String("name", c.Name))
}
