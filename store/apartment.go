package store

import (
	"context"
	"strings"

	"github.com/goliatone/go-wizard/api"
)

// ApartmentStore caches the caller's buildings, the building being viewed
// and its units.
type ApartmentStore struct {
	state
	api     api.ApartmentAPI
	mine    []api.Record
	current api.Record
	units   []api.Record
}

func NewApartmentStore(client api.ApartmentAPI, opts ...Option) *ApartmentStore {
	s := &ApartmentStore{api: client}
	s.init(api.KindApartment, opts)
	return s
}

func (s *ApartmentStore) Mine() []api.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneRecords(s.mine)
}

func (s *ApartmentStore) Current() api.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

func (s *ApartmentStore) Units() []api.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneRecords(s.units)
}

// FetchMine loads the buildings owned by the caller.
func (s *ApartmentStore) FetchMine(ctx context.Context) ([]api.Record, error) {
	var out []api.Record
	err := s.track(ctx, "fetch mine", func(ctx context.Context) error {
		list, err := s.api.Mine(ctx)
		if err != nil {
			return err
		}
		s.mu.Lock()
		s.mine = cloneRecords(list)
		s.mu.Unlock()
		out = list
		return nil
	})
	if err == nil {
		s.publish(TopicItems)
	}
	return out, err
}

// FetchByID loads one building and makes it current. A response without
// an id leaves current empty.
func (s *ApartmentStore) FetchByID(ctx context.Context, id string) (api.Record, error) {
	if strings.TrimSpace(id) == "" {
		return nil, invalidID(s.kind, "fetch")
	}
	var out api.Record
	err := s.track(ctx, "fetch", func(ctx context.Context) error {
		rec, err := s.api.Get(ctx, id)
		if err != nil {
			return err
		}
		if rec.ID() == "" {
			s.logger.Warn("apartment %s: fetched record has no id", id)
			rec = nil
		} else {
			rec = withID(rec, "")
		}
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

// FetchUnits loads the units of building id.
func (s *ApartmentStore) FetchUnits(ctx context.Context, id string) ([]api.Record, error) {
	if strings.TrimSpace(id) == "" {
		return nil, invalidID(s.kind, "units")
	}
	var out []api.Record
	err := s.track(ctx, "units", func(ctx context.Context) error {
		list, err := s.api.Units(ctx, id)
		if err != nil {
			return err
		}
		s.mu.Lock()
		s.units = cloneRecords(list)
		s.mu.Unlock()
		out = list
		return nil
	})
	if err == nil {
		s.publish(TopicUnits)
	}
	return out, err
}

// Create persists a new building and prepends it to Mine.
func (s *ApartmentStore) Create(ctx context.Context, body map[string]any) (api.Record, error) {
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
		s.mine = append([]api.Record{rec}, s.mine...)
		s.mu.Unlock()
		out = rec
		return nil
	})
	if err == nil {
		s.publish(TopicItems)
	}
	return out, err
}

// Update persists changes to building id and refreshes the cached copies.
func (s *ApartmentStore) Update(ctx context.Context, id string, body map[string]any) (api.Record, error) {
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
		s.mine = replaceByID(s.mine, rec)
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
