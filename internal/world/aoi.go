package world

import (
	"math"

	"github.com/l1jgo/combatcore/internal/core/ecs"
	"github.com/l1jgo/combatcore/internal/geo"
)

// AOIGrid buckets entities into square cells so radius queries only visit the
// cells overlapping the query circle.
// Accessed only from the game loop goroutine; no locks.
type AOIGrid struct {
	cellSize float64
	cells    map[cellKey]map[ecs.EntityID]struct{}
}

type cellKey struct {
	cx int32
	cy int32
}

func NewAOIGrid(cellSize float64) *AOIGrid {
	if cellSize <= 0 {
		cellSize = 8
	}
	return &AOIGrid{
		cellSize: cellSize,
		cells:    make(map[cellKey]map[ecs.EntityID]struct{}),
	}
}

func (g *AOIGrid) coord(v float64) int32 {
	return int32(math.Floor(v / g.cellSize))
}

func (g *AOIGrid) key(p geo.Vec2) cellKey {
	return cellKey{cx: g.coord(p.X), cy: g.coord(p.Y)}
}

// Add places an entity into the grid.
func (g *AOIGrid) Add(id ecs.EntityID, p geo.Vec2) {
	k := g.key(p)
	cell := g.cells[k]
	if cell == nil {
		cell = make(map[ecs.EntityID]struct{})
		g.cells[k] = cell
	}
	cell[id] = struct{}{}
}

// Remove takes an entity out of the grid.
func (g *AOIGrid) Remove(id ecs.EntityID, p geo.Vec2) {
	k := g.key(p)
	cell := g.cells[k]
	if cell != nil {
		delete(cell, id)
		if len(cell) == 0 {
			delete(g.cells, k)
		}
	}
}

// Move updates an entity's cell when its position changes.
func (g *AOIGrid) Move(id ecs.EntityID, from, to geo.Vec2) {
	if g.key(from) == g.key(to) {
		return
	}
	g.Remove(id, from)
	g.Add(id, to)
}

// Candidates returns every id in cells overlapping the square around center.
// Caller does fine-grained distance filtering.
func (g *AOIGrid) Candidates(center geo.Vec2, radius float64) []ecs.EntityID {
	x0, x1 := g.coord(center.X-radius), g.coord(center.X+radius)
	y0, y1 := g.coord(center.Y-radius), g.coord(center.Y+radius)
	var result []ecs.EntityID
	for cx := x0; cx <= x1; cx++ {
		for cy := y0; cy <= y1; cy++ {
			for id := range g.cells[cellKey{cx: cx, cy: cy}] {
				result = append(result, id)
			}
		}
	}
	return result
}
