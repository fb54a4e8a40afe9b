package store

import (
	"context"
	"strings"

	"github.com/goliatone/go-wizard/api"
)

// PropertyStore caches recently saved listings, the listing being viewed
// and its child units.
type PropertyStore struct {
	state
	api      api.PropertyAPI
	items    []api.Record
	current  api.Record
	children []api.Record
}

func NewPropertyStore(client api.PropertyAPI, opts ...Option) *PropertyStore {
	s := &PropertyStore{api: client}
	s.init(api.KindProperty, opts)
	return s
}

func (s *PropertyStore) Items() []api.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneRecords(s.items)
}

func (s *PropertyStore) Current() api.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

func (s *PropertyStore) Children() []api.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneRecords(s.children)
}

func (s *PropertyStore) FetchByID(ctx context.Context, id string) (api.Record, error) {
	if strings.TrimSpace(id) == "" {
		return nil, invalidID(s.kind, "fetch")
	}
	var out api.Record
	err := s.track(ctx, "fetch", func(ctx context.Context) error {
		rec, err := s.api.Get(ctx, id)
		if err != nil {
			return err
		}
		rec = withID(rec, id)
		s.mu.Lock()
		s.current = rec
		s.mu.Unlock()
		out = rec
		return nil
	})
	if err == nil {
		s.publish(TopicCurrent)
	}
	return out, err
}

// FetchChildren loads the units listed under property id.
func (s *PropertyStore) FetchChildren(ctx context.Context, id string) ([]api.Record, error) {
	if strings.TrimSpace(id) == "" {
		return nil, invalidID(s.kind, "children")
	}
	var out []api.Record
	err := s.track(ctx, "children", func(ctx context.Context) error {
		list, err := s.api.Children(ctx, id)
		if err != nil {
			return err
		}
		s.mu.Lock()
		s.children = cloneRecords(list)
		s.mu.Unlock()
		out = list
		return nil
	})
	if err == nil {
		s.publish(TopicUnits)
	}
	return out, err
}

func (s *PropertyStore) Create(ctx context.Context, body map[string]any) (api.Record, error) {
	var out api.Record
	err := s.track(ctx, "create", func(ctx context.Context) error {
		rec, err := s.api.Create(ctx, body)
		if err != nil {
			return err
		}
		if rec.ID() == "" {
			return missingID(s.kind)
		}
		rec = withID(rec, "")
		s.mu.Lock()
		s.items = append([]api.Record{rec}, s.items...)
		s.mu.Unlock()
		out = rec
		return nil
	})
	if err == nil {
		s.publish(TopicItems)
	}
	return out, err
}

func (s *PropertyStore) Update(ctx context.Context, id string, body map[string]any) (api.Record, error) {
	if strings.TrimSpace(id) == "" {
		return nil, invalidID(s.kind, "update")
	}
	var out api.Record
	err := s.track(ctx, "update", func(ctx context.Context) error {
		rec, err := s.api.Update(ctx, id, body)
		if err != nil {
			return err
		}
		rec = withID(rec, id)
		s.mu.Lock()
		s.items = replaceByID(s.items, rec)
		if s.current != nil && s.current.ID() == id {
			s.current = rec
		}
		s.mu.Unlock()
		out = rec
		return nil
	})
	if err == nil {
		s.publish(TopicItems, TopicCurrent)
	}
	return out, err
}
