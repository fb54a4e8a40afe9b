package draft

import "github.com/goliatone/go-wizard/dispatcher"

// Change describes one applied field mutation.
type Change struct {
	Field string
	Value any
}

// Observable is the subscription list embedded in every draft. Setters
// publish after the mutation is applied, so subscribers always read the new
// state.
type Observable struct {
	events dispatcher.Dispatcher[Change]
}

// Subscribe registers fn for every change.
func (o *Observable) Subscribe(fn func(Change)) dispatcher.Subscription {
	if fn == nil {
		return o.events.SubscribeAll(nil)
	}
	return o.events.SubscribeAll(func(_ string, c Change) { fn(c) })
}

// SubscribeField registers fn for changes of a single field.
func (o *Observable) SubscribeField(field string, fn func(Change)) dispatcher.Subscription {
	if fn == nil {
		return o.events.Subscribe(field, nil)
	}
	return o.events.Subscribe(field, func(_ string, c Change) { fn(c) })
}

func (o *Observable) notify(field string, value any) {
	o.events.Publish(field, Change{Field: field, Value: value})
}
