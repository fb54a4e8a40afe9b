// Package store holds the cached entity lists a wizard writes through. The
// containers are injected instead of shared globally, and every change is
// published to subscribers.
package store

import (
	"context"
	"sync"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-wizard/api"
	"github.com/goliatone/go-wizard/dispatcher"
	"github.com/goliatone/go-wizard/flow"
)

const (
	ErrCodeInvalidID = "INVALID_ENTITY_ID"
	ErrCodeMissingID = "MISSING_ENTITY_ID"
)

// Event topics published by the stores.
const (
	TopicLoading = "loading"
	TopicError   = "error"
	TopicItems   = "items"
	TopicCurrent = "current"
	TopicUnits   = "units"
)

// Event describes a change to a store.
type Event struct {
	Topic string
	Kind  api.Kind
}

type Option func(*state)

func WithLogger(logger flow.Logger) Option {
	return func(s *state) {
		s.logger = flow.NormalizeLogger(logger)
	}
}

// state carries the loading flag and the last error shared by the stores.
type state struct {
	mu      sync.RWMutex
	kind    api.Kind
	events  dispatcher.Dispatcher[Event]
	logger  flow.Logger
	loading int
	lastErr error
}

func (s *state) init(kind api.Kind, opts []Option) {
	s.kind = kind
	s.logger = flow.NopLogger{}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
}

// Subscribe registers fn for every store event. A nil fn is ignored.
func (s *state) Subscribe(fn func(Event)) dispatcher.Subscription {
	if fn == nil {
		return s.events.SubscribeAll(nil)
	}
	return s.events.SubscribeAll(func(_ string, e Event) { fn(e) })
}

// SubscribeTopic registers fn for a single topic. A nil fn is ignored.
func (s *state) SubscribeTopic(topic string, fn func(Event)) dispatcher.Subscription {
	if fn == nil {
		return s.events.Subscribe(topic, nil)
	}
	return s.events.Subscribe(topic, func(_ string, e Event) { fn(e) })
}

func (s *state) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading > 0
}

// Err returns the error of the last failed call, cleared by the next
// successful one.
func (s *state) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

func (s *state) publish(topics ...string) {
	for _, topic := range topics {
		s.events.Publish(topic, Event{Topic: topic, Kind: s.kind})
	}
}

// track runs fn with the loading flag raised and records its outcome.
func (s *state) track(ctx context.Context, op string, fn func(context.Context) error) error {
	s.mu.Lock()
	s.loading++
	s.mu.Unlock()
	s.publish(TopicLoading)

	err := fn(ctx)

	s.mu.Lock()
	s.loading--
	s.lastErr = err
	s.mu.Unlock()
	if err != nil {
		s.logger.Warn("%s %s failed: %v", s.kind, op, err)
		s.publish(TopicError)
	}
	s.publish(TopicLoading)
	return err
}

func invalidID(kind api.Kind, op string) error {
	return errors.New("invalid "+string(kind)+" id", errors.CategoryBadInput).
		WithTextCode(ErrCodeInvalidID).
		WithMetadata(map[string]any{"operation": op})
}

func missingID(kind api.Kind) error {
	return errors.New("invalid response from server: missing "+string(kind)+" id", errors.CategoryExternal).
		WithTextCode(ErrCodeMissingID)
}

// withID returns rec with an "id" key, falling back to fallback when the
// server omitted one.
func withID(rec api.Record, fallback string) api.Record {
	out := make(api.Record, len(rec)+1)
	for k, v := range rec {
		out[k] = v
	}
	id := rec.ID()
	if id == "" {
		id = fallback
	}
	if id != "" {
		out["id"] = id
	}
	return out
}

func cloneRecords(in []api.Record) []api.Record {
	if in == nil {
		return nil
	}
	return append([]api.Record(nil), in...)
}

func replaceByID(list []api.Record, rec api.Record) []api.Record {
	id := rec.ID()
	for i, item := range list {
		if item.ID() == id {
			list[i] = rec
		}
	}
	return list
}
