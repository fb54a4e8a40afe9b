package dispatcher

type Subscription interface {
	Unsubscribe()
}

type subs[E any] struct {
	dispatcher *Dispatcher[E]
	topic      string
	id         uint64
}

func (s *subs[E]) Unsubscribe() {
	d := s.dispatcher
	d.mu.Lock()
	defer d.mu.Unlock()

	handlers := d.handlers[s.topic]
	newList := make([]*entry[E], 0, len(handlers))

	for _, h := range handlers {
		if h.id != s.id {
			newList = append(newList, h)
		}
	}

	if len(newList) == 0 {
		delete(d.handlers, s.topic)
		return
	}
	d.handlers[s.topic] = newList
}

type noopSubscription struct{}

func (noopSubscription) Unsubscribe() {}
