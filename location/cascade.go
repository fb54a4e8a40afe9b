// Package location keeps the province, district and area option lists in
// step with a draft's selection.
package location

import (
	"context"
	"sync"

	"github.com/goliatone/go-wizard/api"
	"github.com/goliatone/go-wizard/dispatcher"
	"github.com/goliatone/go-wizard/draft"
	"github.com/goliatone/go-wizard/flow"
)

// Source is anything that publishes field changes, such as a draft.
type Source interface {
	SubscribeField(field string, fn func(draft.Change)) dispatcher.Subscription
}

type Option func(*Cascade)

func WithLogger(logger flow.Logger) Option {
	return func(c *Cascade) {
		c.logger = flow.NormalizeLogger(logger)
	}
}

// Cascade loads dependent option lists. A failed lookup is logged and
// leaves an empty list.
type Cascade struct {
	lookup api.LocationLookup
	logger flow.Logger

	mu         sync.RWMutex
	provinces  []api.Place
	districts  []api.Place
	areas      []api.Place
	provinceID string
	districtID string
}

func NewCascade(lookup api.LocationLookup, opts ...Option) *Cascade {
	c := &Cascade{lookup: lookup, logger: flow.NopLogger{}}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

func (c *Cascade) Provinces() []api.Place {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]api.Place(nil), c.provinces...)
}

func (c *Cascade) Districts() []api.Place {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]api.Place(nil), c.districts...)
}

func (c *Cascade) Areas() []api.Place {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]api.Place(nil), c.areas...)
}

func (c *Cascade) LoadProvinces(ctx context.Context) []api.Place {
	list, err := c.lookup.Provinces(ctx)
	if err != nil {
		c.logger.Error("load provinces: %v", err)
		list = nil
	}
	c.mu.Lock()
	c.provinces = list
	c.mu.Unlock()
	return list
}

// SelectProvince clears districts and areas, then loads the districts of
// id. An empty id only clears.
func (c *Cascade) SelectProvince(ctx context.Context, id string) []api.Place {
	c.mu.Lock()
	c.provinceID, c.districtID = id, ""
	c.districts, c.areas = nil, nil
	c.mu.Unlock()
	if id == "" {
		return nil
	}

	list, err := c.lookup.Districts(ctx, id)
	if err != nil {
		c.logger.Error("load districts of province %s: %v", id, err)
		list = nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.provinceID != id {
		return nil
	}
	c.districts = list
	return list
}

// SelectDistrict clears areas, then loads the areas of id.
func (c *Cascade) SelectDistrict(ctx context.Context, id string) []api.Place {
	c.mu.Lock()
	c.districtID = id
	c.areas = nil
	c.mu.Unlock()
	if id == "" {
		return nil
	}

	list, err := c.lookup.Areas(ctx, id)
	if err != nil {
		c.logger.Error("load areas of district %s: %v", id, err)
		list = nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.districtID != id {
		return nil
	}
	c.areas = list
	return list
}

// Sync loads every list needed to display loc, as when opening a draft
// for editing.
func (c *Cascade) Sync(ctx context.Context, loc draft.Location) {
	c.LoadProvinces(ctx)
	c.SelectProvince(ctx, loc.ProvinceID)
	if loc.ProvinceID != "" {
		c.SelectDistrict(ctx, loc.DistrictID)
	}
}

// Bind reloads the dependent lists whenever src changes its province or
// district. Loading happens on the notifying goroutine.
func (c *Cascade) Bind(ctx context.Context, src Source) dispatcher.Subscription {
	province := src.SubscribeField("province_id", func(ch draft.Change) {
		id, _ := ch.Value.(string)
		c.SelectProvince(ctx, id)
	})
	district := src.SubscribeField("district_id", func(ch draft.Change) {
		id, _ := ch.Value.(string)
		c.SelectDistrict(ctx, id)
	})
	return subscriptions{province, district}
}

type subscriptions []dispatcher.Subscription

func (s subscriptions) Unsubscribe() {
	for _, sub := range s {
		sub.Unsubscribe()
	}
}
