package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/l1jgo/combatcore/internal/core/ecs"
	"github.com/l1jgo/combatcore/internal/geo"
	"github.com/l1jgo/combatcore/internal/trigger"
)

func ids(bodies []trigger.Body) []ecs.EntityID {
	out := make([]ecs.EntityID, 0, len(bodies))
	for _, b := range bodies {
		out = append(out, b.ID)
	}
	return out
}

func TestWithinFiltersByDistance(t *testing.T) {
	s := NewState(4)
	s.Place(1, geo.V(0, 0))
	s.Place(2, geo.V(3, 0))
	s.Place(3, geo.V(10, 10))
	s.Place(4, geo.V(-2.5, -2.5))

	assert.Equal(t, []ecs.EntityID{1, 2, 4}, ids(s.Within(geo.V(0, 0), 3.6)))
	assert.Equal(t, []ecs.EntityID{1}, ids(s.Within(geo.V(0, 0), 1)))
}

func TestPlaceMovesAcrossCells(t *testing.T) {
	s := NewState(4)
	s.Place(1, geo.V(0, 0))
	s.Place(1, geo.V(20, 20))

	assert.Empty(t, s.Within(geo.V(0, 0), 2))
	assert.Equal(t, []ecs.EntityID{1}, ids(s.Within(geo.V(20, 20), 1)))
	assert.Equal(t, 1, s.Count())
}

func TestRemove(t *testing.T) {
	s := NewState(4)
	s.Place(1, geo.V(1, 1))
	s.Remove(1)
	s.Remove(99)

	_, ok := s.Position(1)
	assert.False(t, ok)
	assert.Empty(t, s.Within(geo.V(1, 1), 5))
}

func TestNearest(t *testing.T) {
	s := NewState(4)
	s.Place(1, geo.V(5, 0))
	s.Place(2, geo.V(2, 0))
	s.Place(3, geo.V(1, 0))

	b, ok := s.Nearest(geo.V(0, 0), 10, func(b trigger.Body) bool { return b.ID != 3 })
	require.True(t, ok)
	assert.Equal(t, ecs.EntityID(2), b.ID)

	_, ok = s.Nearest(geo.V(100, 100), 10, nil)
	assert.False(t, ok)
}

func TestAnchorFollowsEntity(t *testing.T) {
	s := NewState(4)
	s.Place(7, geo.V(1, 2))
	a := s.Anchor(7)

	p, ok := a()
	require.True(t, ok)
	assert.Equal(t, geo.V(1, 2), p)

	s.Place(7, geo.V(3, 3))
	p, _ = a()
	assert.Equal(t, geo.V(3, 3), p)

	s.Remove(7)
	_, ok = a()
	assert.False(t, ok)
}
