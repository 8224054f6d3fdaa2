package ecs

// World owns the id pool, the component stores and a deferred destruction
// queue. Destruction is deferred to the cleanup phase so callbacks running
// mid-tick never see an entity vanish underneath them.
type World struct {
	pool      *Pool
	stores    []Removable
	queue     []EntityID
	onDestroy []func(EntityID)
}

func NewWorld() *World {
	return &World{
		pool:  NewPool(),
		queue: make([]EntityID, 0, 32),
	}
}

func (w *World) CreateEntity() EntityID { return w.pool.Create() }
func (w *World) Alive(id EntityID) bool { return w.pool.Alive(id) }
func (w *World) Count() int             { return w.pool.Count() }

// Register adds a store whose entries are dropped when an entity is destroyed.
func (w *World) Register(store Removable) {
	w.stores = append(w.stores, store)
}

// OnDestroy registers a hook run for each entity just before its data is dropped.
func (w *World) OnDestroy(fn func(EntityID)) {
	w.onDestroy = append(w.onDestroy, fn)
}

// MarkForDestruction queues id for the next Flush.
func (w *World) MarkForDestruction(id EntityID) {
	w.queue = append(w.queue, id)
}

// Pending returns the number of queued destructions.
func (w *World) Pending() int { return len(w.queue) }

// Flush destroys every queued entity. Duplicates and stale ids are ignored.
func (w *World) Flush() {
	for _, id := range w.queue {
		if !w.pool.Alive(id) {
			continue
		}
		for _, fn := range w.onDestroy {
			fn(id)
		}
		for _, s := range w.stores {
			s.Remove(id)
		}
		w.pool.Destroy(id)
	}
	w.queue = w.queue[:0]
}
