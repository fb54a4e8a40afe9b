// Package api declares the collaborators the wizard engine depends on: the
// persistence API, the location lookup and the navigation router.
package api

import (
	"context"

	"github.com/goliatone/go-wizard/draft"
)

// MetaServerMessage is the error metadata key transports use for the
// message the server reported.
const MetaServerMessage = "server_message"

// Kind names the entity a wizard produces.
type Kind string

const (
	KindProperty  Kind = "property"
	KindApartment Kind = "apartment"
)

// PropertyAPI persists properties.
type PropertyAPI interface {
	Create(ctx context.Context, body map[string]any) (Record, error)
	Update(ctx context.Context, id string, body map[string]any) (Record, error)
	Get(ctx context.Context, id string) (Record, error)
	Upload(ctx context.Context, id string, files []draft.NewMedia) error
	DeleteFile(ctx context.Context, id, url, mediaType string) error
	Children(ctx context.Context, id string) ([]Record, error)
}

// ApartmentAPI persists apartment buildings.
type ApartmentAPI interface {
	Create(ctx context.Context, body map[string]any) (Record, error)
	Update(ctx context.Context, id string, body map[string]any) (Record, error)
	Get(ctx context.Context, id string) (Record, error)
	Units(ctx context.Context, id string) ([]Record, error)
	Upload(ctx context.Context, id string, files []draft.NewMedia) error
	DeleteFile(ctx context.Context, id, url string) error
	Mine(ctx context.Context) ([]Record, error)
}

// LocationLookup resolves the province, district and area hierarchy.
type LocationLookup interface {
	Provinces(ctx context.Context) ([]Place, error)
	Districts(ctx context.Context, provinceID string) ([]Place, error)
	Areas(ctx context.Context, districtID string) ([]Place, error)
}

// Router is the navigation capability. It is only invoked on terminal
// success or cancel.
type Router interface {
	Close()
	ShowDetail(kind Kind, id string)
}

// RouterFuncs adapts plain functions to Router.
type RouterFuncs struct {
	OnClose  func()
	OnDetail func(kind Kind, id string)
}

func (r RouterFuncs) Close() {
	if r.OnClose != nil {
		r.OnClose()
	}
}

func (r RouterFuncs) ShowDetail(kind Kind, id string) {
	if r.OnDetail != nil {
		r.OnDetail(kind, id)
	}
}

// NopRouter ignores navigation.
type NopRouter struct{}

func (NopRouter) Close()                  {}
func (NopRouter) ShowDetail(Kind, string) {}
