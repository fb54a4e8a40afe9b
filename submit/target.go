package submit

import (
	"context"

	"github.com/goliatone/go-wizard/api"
	"github.com/goliatone/go-wizard/draft"
	"github.com/goliatone/go-wizard/store"
)

// Target is the persistence side of one entity kind.
type Target interface {
	Kind() api.Kind
	// Save creates the entity when id is empty and updates it otherwise.
	Save(ctx context.Context, id string, body map[string]any) (api.Record, error)
	Upload(ctx context.Context, id string, files []draft.NewMedia) error
	Delete(ctx context.Context, id string, item draft.ExistingMedia) error
}

// PropertyTarget saves through Store when set, otherwise straight to API.
type PropertyTarget struct {
	API   api.PropertyAPI
	Store *store.PropertyStore
}

func (PropertyTarget) Kind() api.Kind { return api.KindProperty }

func (t PropertyTarget) Save(ctx context.Context, id string, body map[string]any) (api.Record, error) {
	switch {
	case t.Store != nil && id == "":
		return t.Store.Create(ctx, body)
	case t.Store != nil:
		return t.Store.Update(ctx, id, body)
	case id == "":
		return t.API.Create(ctx, body)
	default:
		return t.API.Update(ctx, id, body)
	}
}

func (t PropertyTarget) Upload(ctx context.Context, id string, files []draft.NewMedia) error {
	return t.API.Upload(ctx, id, files)
}

func (t PropertyTarget) Delete(ctx context.Context, id string, item draft.ExistingMedia) error {
	return t.API.DeleteFile(ctx, id, item.URL, item.Type)
}

// ApartmentTarget saves through Store when set, otherwise straight to API.
type ApartmentTarget struct {
	API   api.ApartmentAPI
	Store *store.ApartmentStore
}

func (ApartmentTarget) Kind() api.Kind { return api.KindApartment }

func (t ApartmentTarget) Save(ctx context.Context, id string, body map[string]any) (api.Record, error) {
	switch {
	case t.Store != nil && id == "":
		return t.Store.Create(ctx, body)
	case t.Store != nil:
		return t.Store.Update(ctx, id, body)
	case id == "":
		return t.API.Create(ctx, body)
	default:
		return t.API.Update(ctx, id, body)
	}
}

func (t ApartmentTarget) Upload(ctx context.Context, id string, files []draft.NewMedia) error {
	return t.API.Upload(ctx, id, files)
}

func (t ApartmentTarget) Delete(ctx context.Context, id string, item draft.ExistingMedia) error {
	return t.API.DeleteFile(ctx, id, item.URL)
}

var (
	_ Target = PropertyTarget{}
	_ Target = ApartmentTarget{}
)
