// Package world tracks where every positioned entity is and answers radius
// queries for triggers, targeting and wandering.
package world

import (
	"sort"

	"github.com/l1jgo/combatcore/internal/core/ecs"
	"github.com/l1jgo/combatcore/internal/geo"
	"github.com/l1jgo/combatcore/internal/trigger"
)

// State owns entity positions. It implements trigger.Source.
// Accessed only from the game loop goroutine; no locks needed.
type State struct {
	positions map[ecs.EntityID]geo.Vec2
	grid      *AOIGrid
}

func NewState(cellSize float64) *State {
	return &State{
		positions: make(map[ecs.EntityID]geo.Vec2, 256),
		grid:      NewAOIGrid(cellSize),
	}
}

// Place adds an entity, or moves it if already present.
func (s *State) Place(id ecs.EntityID, p geo.Vec2) {
	if old, ok := s.positions[id]; ok {
		s.grid.Move(id, old, p)
	} else {
		s.grid.Add(id, p)
	}
	s.positions[id] = p
}

// Remove drops an entity. Unknown ids are ignored.
func (s *State) Remove(id ecs.EntityID) {
	old, ok := s.positions[id]
	if !ok {
		return
	}
	s.grid.Remove(id, old)
	delete(s.positions, id)
}

// Position returns an entity's position.
func (s *State) Position(id ecs.EntityID) (geo.Vec2, bool) {
	p, ok := s.positions[id]
	return p, ok
}

// Anchor returns a trigger anchor that follows an entity for as long as it is
// positioned.
func (s *State) Anchor(id ecs.EntityID) trigger.Anchor {
	return func() (geo.Vec2, bool) {
		return s.Position(id)
	}
}

func (s *State) Count() int {
	return len(s.positions)
}

// Within returns the bodies within radius of center, ordered by id so callers
// see a stable order every tick.
func (s *State) Within(center geo.Vec2, radius float64) []trigger.Body {
	var out []trigger.Body
	for _, id := range s.grid.Candidates(center, radius) {
		p := s.positions[id]
		if p.Dist(center) <= radius {
			out = append(out, trigger.Body{ID: id, Pos: p})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Nearest returns the closest body within radius that satisfies keep.
func (s *State) Nearest(center geo.Vec2, radius float64, keep func(trigger.Body) bool) (trigger.Body, bool) {
	var (
		best  trigger.Body
		bestD = radius
		found bool
	)
	for _, b := range s.Within(center, radius) {
		if keep != nil && !keep(b) {
			continue
		}
		if d := b.Pos.Dist(center); !found || d < bestD {
			best, bestD, found = b, d, true
		}
	}
	return best, found
}
