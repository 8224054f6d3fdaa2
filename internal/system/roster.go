package system

import (
	"sort"

	"github.com/l1jgo/combatcore/internal/core/ecs"
	"github.com/l1jgo/combatcore/internal/creature"
)

// Roster holds the online player creatures.
// Accessed only from the game loop goroutine; no locks.
type Roster struct {
	byID   map[ecs.EntityID]*creature.Creature
	byName map[string]*creature.Creature
}

func NewRoster() *Roster {
	return &Roster{
		byID:   make(map[ecs.EntityID]*creature.Creature),
		byName: make(map[string]*creature.Creature),
	}
}

func (r *Roster) Add(c *creature.Creature) {
	r.byID[c.ID] = c
	r.byName[c.Name] = c
}

func (r *Roster) Remove(id ecs.EntityID) {
	if c, ok := r.byID[id]; ok {
		delete(r.byName, c.Name)
		delete(r.byID, id)
	}
}

func (r *Roster) Get(id ecs.EntityID) *creature.Creature { return r.byID[id] }

func (r *Roster) ByName(name string) *creature.Creature { return r.byName[name] }

func (r *Roster) Count() int { return len(r.byID) }

// Each visits players in id order.
func (r *Roster) Each(fn func(*creature.Creature)) {
	ids := make([]ecs.EntityID, 0, len(r.byID))
	for id := range r.byID {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		fn(r.byID[id])
	}
}
