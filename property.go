package wizard

import (
	"context"

	"github.com/goliatone/go-wizard/api"
	"github.com/goliatone/go-wizard/draft"
	"github.com/goliatone/go-wizard/payload"
	"github.com/goliatone/go-wizard/schema"
	"github.com/goliatone/go-wizard/submit"
)

// PropertySession is a wizard over a property draft.
type PropertySession = Session[*draft.Property]

// NewPropertySession starts a property wizard on an empty draft, or on the
// draft given with WithPropertyDraft. ctx scopes the location lookups made
// during the session.
func NewPropertySession(ctx context.Context, client api.PropertyAPI, opts ...Option) (*PropertySession, error) {
	o := newOptions(opts)
	p := o.property
	if p == nil {
		p = draft.NewProperty()
	}
	return newPropertySession(ctx, client, p, o)
}

// OpenPropertyForEdit fetches property id and starts a wizard over it.
func OpenPropertyForEdit(ctx context.Context, client api.PropertyAPI, id string, opts ...Option) (*PropertySession, error) {
	o := newOptions(opts)
	var (
		rec api.Record
		err error
	)
	if o.properties != nil {
		rec, err = o.properties.FetchByID(ctx, id)
	} else {
		rec, err = client.Get(ctx, id)
	}
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, entityNotFound(api.KindProperty, id)
	}
	p := draft.PropertyFromRecord(rec)
	if p.ID == "" {
		p.ID = id
	}
	return newPropertySession(ctx, client, p, o)
}

func newPropertySession(ctx context.Context, client api.PropertyAPI, p *draft.Property, o options) (*PropertySession, error) {
	return newSession(ctx, sessionConfig[*draft.Property]{
		kind:      api.KindProperty,
		draft:     p,
		source:    schema.PropertyRegistry(),
		inherited: (*draft.Property).Inherited,
		assemble:  payload.Property,
		locate:    func(p *draft.Property) draft.Location { return p.Location },
		target:    submit.PropertyTarget{API: client, Store: o.properties},
	}, o)
}
