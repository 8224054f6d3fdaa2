package event

import (
	"reflect"
	"sync"
)

// Bus is a double-buffered event bus. Events emitted during tick N are
// delivered, in emission order, when Flush runs (the output phase of tick N or
// later). Emit and Flush are game-loop only; Subscribe may be called from
// any goroutine.
type Bus struct {
	mu       sync.RWMutex // guards handlers only
	back     []any
	front    []any
	handlers map[reflect.Type][]func(any)
}

func NewBus() *Bus {
	return &Bus{
		back:     make([]any, 0, 128),
		front:    make([]any, 0, 128),
		handlers: make(map[reflect.Type][]func(any)),
	}
}

// Emit queues an event for the next Flush. Safe on a nil bus.
func Emit[T any](b *Bus, ev T) {
	if b == nil {
		return
	}
	b.back = append(b.back, ev)
}

// Subscribe registers a typed handler for events of type T.
func Subscribe[T any](b *Bus, fn func(T)) {
	t := reflect.TypeOf((*T)(nil)).Elem()
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[t] = append(b.handlers[t], func(ev any) { fn(ev.(T)) })
}

// SubscribeAll registers a handler receiving every event regardless of type.
func (b *Bus) SubscribeAll(fn func(any)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[nil] = append(b.handlers[nil], fn)
}

// Pending returns the number of events waiting for Flush.
func (b *Bus) Pending() int { return len(b.back) }

// Flush swaps the buffers and delivers every queued event. Events emitted by
// handlers during Flush are queued for the following Flush.
func (b *Bus) Flush() {
	b.front, b.back = b.back, b.front[:0]
	b.mu.RLock()
	defer b.mu.RUnlock()
	all := b.handlers[nil]
	for i, ev := range b.front {
		for _, h := range b.handlers[reflect.TypeOf(ev)] {
			h(ev)
		}
		for _, h := range all {
			h(ev)
		}
		b.front[i] = nil
	}
}
