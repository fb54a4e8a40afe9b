package dispatcher

import (
	"sync"
)

// Wildcard subscribes a handler to every topic.
const Wildcard = "*"

// Handler receives events published on a topic.
type Handler[E any] func(topic string, event E)

// Dispatcher is a synchronous topic based publisher. Handlers run on the
// publishing goroutine, in subscription order, after the lock is released.
type Dispatcher[E any] struct {
	mu       sync.RWMutex
	handlers map[string][]*entry[E]
	seq      uint64
}

type entry[E any] struct {
	id uint64
	fn Handler[E]
}

// New returns an empty dispatcher. The zero value is also usable.
func New[E any]() *Dispatcher[E] {
	return &Dispatcher[E]{handlers: make(map[string][]*entry[E])}
}

// Subscribe registers fn for topic. Use Wildcard to receive every event.
func (d *Dispatcher[E]) Subscribe(topic string, fn Handler[E]) Subscription {
	if fn == nil {
		return noopSubscription{}
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.handlers == nil {
		d.handlers = make(map[string][]*entry[E])
	}
	d.seq++
	e := &entry[E]{id: d.seq, fn: fn}
	d.handlers[topic] = append(d.handlers[topic], e)
	return &subs[E]{dispatcher: d, topic: topic, id: e.id}
}

// SubscribeAll is Subscribe(Wildcard, fn).
func (d *Dispatcher[E]) SubscribeAll(fn Handler[E]) Subscription {
	return d.Subscribe(Wildcard, fn)
}

// Publish delivers event to topic handlers and then wildcard handlers.
func (d *Dispatcher[E]) Publish(topic string, event E) {
	for _, e := range d.snapshot(topic) {
		e.fn(topic, event)
	}
}

// Len returns the number of live subscriptions.
func (d *Dispatcher[E]) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	n := 0
	for _, list := range d.handlers {
		n += len(list)
	}
	return n
}

func (d *Dispatcher[E]) snapshot(topic string) []*entry[E] {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]*entry[E], 0, len(d.handlers[topic])+len(d.handlers[Wildcard]))
	out = append(out, d.handlers[topic]...)
	if topic != Wildcard {
		out = append(out, d.handlers[Wildcard]...)
	}
	return out
}
