package rest

import (
	"context"
	"net/http"

	"github.com/goliatone/go-wizard/api"
	"github.com/goliatone/go-wizard/draft"
)

// Apartments implements api.ApartmentAPI.
type Apartments struct {
	c *Client
}

var _ api.ApartmentAPI = (*Apartments)(nil)

func (a *Apartments) Create(ctx context.Context, body map[string]any) (api.Record, error) {
	var out map[string]any
	if err := a.c.doJSON(ctx, http.MethodPost, a.c.endpoint("apartments"), body, &out); err != nil {
		return nil, err
	}
	return decodeRecord(out), nil
}

func (a *Apartments) Update(ctx context.Context, id string, body map[string]any) (api.Record, error) {
	var out map[string]any
	if err := a.c.doJSON(ctx, http.MethodPut, a.c.endpoint("apartments", id), body, &out); err != nil {
		return nil, err
	}
	return decodeRecord(out), nil
}

func (a *Apartments) Get(ctx context.Context, id string) (api.Record, error) {
	var out map[string]any
	if err := a.c.doJSON(ctx, http.MethodGet, a.c.endpoint("public", "apartments", id), nil, &out); err != nil {
		return nil, err
	}
	return decodeRecord(out), nil
}

func (a *Apartments) Units(ctx context.Context, id string) ([]api.Record, error) {
	var out listEnvelope
	if err := a.c.doJSON(ctx, http.MethodGet, a.c.endpoint("public", "apartments", id, "properties"), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (a *Apartments) Upload(ctx context.Context, id string, files []draft.NewMedia) error {
	return a.c.upload(ctx, a.c.endpoint("apartments", id, "upload"), files)
}

// DeleteFile sends {fileUrl}.
func (a *Apartments) DeleteFile(ctx context.Context, id, url string) error {
	body := map[string]any{"fileUrl": url}
	return a.c.doJSON(ctx, http.MethodDelete, a.c.endpoint("apartments", id, "file"), body, nil)
}

func (a *Apartments) Mine(ctx context.Context) ([]api.Record, error) {
	var out listEnvelope
	if err := a.c.doJSON(ctx, http.MethodGet, a.c.endpoint("apartments", "my"), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
