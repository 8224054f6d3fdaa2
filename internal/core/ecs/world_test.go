package ecs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPoolReusesSlotsWithNewGeneration(t *testing.T) {
	p := NewPool()
	a := p.Create()
	assert.False(t, a.IsZero())
	assert.True(t, p.Alive(a))

	p.Destroy(a)
	assert.False(t, p.Alive(a))

	b := p.Create()
	assert.Equal(t, a.Index(), b.Index())
	assert.NotEqual(t, a.Generation(), b.Generation())
	assert.False(t, p.Alive(a), "stale id stays dead after reuse")
	assert.True(t, p.Alive(b))
	assert.False(t, p.Alive(NoEntity))
}

func TestWorldFlushRunsHooksAndDropsComponents(t *testing.T) {
	w := NewWorld()
	names := NewStore[string]()
	w.Register(names)

	id := w.CreateEntity()
	name := "goblin"
	names.Set(id, &name)

	var destroyed []EntityID
	w.OnDestroy(func(id EntityID) { destroyed = append(destroyed, id) })

	w.MarkForDestruction(id)
	w.MarkForDestruction(id)
	assert.True(t, w.Alive(id), "destruction is deferred")

	w.Flush()
	assert.False(t, w.Alive(id))
	assert.Equal(t, []EntityID{id}, destroyed)
	_, ok := names.Get(id)
	assert.False(t, ok)
	assert.Zero(t, w.Pending())
}
