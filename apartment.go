package wizard

import (
	"context"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-wizard/api"
	"github.com/goliatone/go-wizard/draft"
	"github.com/goliatone/go-wizard/payload"
	"github.com/goliatone/go-wizard/schema"
	"github.com/goliatone/go-wizard/submit"
)

// ApartmentSession is a wizard over an apartment building draft.
type ApartmentSession = Session[*draft.Apartment]

func NewApartmentSession(ctx context.Context, client api.ApartmentAPI, opts ...Option) (*ApartmentSession, error) {
	o := newOptions(opts)
	a := o.apartment
	if a == nil {
		a = draft.NewApartment()
	}
	return newApartmentSession(ctx, client, a, o)
}

// OpenApartmentForEdit fetches building id and starts a wizard over it.
func OpenApartmentForEdit(ctx context.Context, client api.ApartmentAPI, id string, opts ...Option) (*ApartmentSession, error) {
	o := newOptions(opts)
	var (
		rec api.Record
		err error
	)
	if o.apartments != nil {
		rec, err = o.apartments.FetchByID(ctx, id)
	} else {
		rec, err = client.Get(ctx, id)
	}
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, entityNotFound(api.KindApartment, id)
	}
	a := draft.ApartmentFromRecord(rec)
	if a.ID == "" {
		a.ID = id
	}
	return newApartmentSession(ctx, client, a, o)
}

func newApartmentSession(ctx context.Context, client api.ApartmentAPI, a *draft.Apartment, o options) (*ApartmentSession, error) {
	return newSession(ctx, sessionConfig[*draft.Apartment]{
		kind:     api.KindApartment,
		draft:    a,
		source:   schema.ApartmentRegistry(),
		assemble: payload.Apartment,
		locate:   func(a *draft.Apartment) draft.Location { return a.Location },
		target:   submit.ApartmentTarget{API: client, Store: o.apartments},
	}, o)
}

func entityNotFound(kind api.Kind, id string) error {
	return errors.New(string(kind)+" not found", errors.CategoryNotFound).
		WithTextCode(ErrCodeEntityNotFound).
		WithMetadata(map[string]any{"id": id})
}
