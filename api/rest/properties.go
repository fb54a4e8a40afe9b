package rest

import (
	"context"
	"net/http"

	"github.com/goliatone/go-wizard/api"
	"github.com/goliatone/go-wizard/draft"
)

// Properties implements api.PropertyAPI.
type Properties struct {
	c *Client
}

var _ api.PropertyAPI = (*Properties)(nil)

func (p *Properties) Create(ctx context.Context, body map[string]any) (api.Record, error) {
	var out map[string]any
	if err := p.c.doJSON(ctx, http.MethodPost, p.c.endpoint("properties"), body, &out); err != nil {
		return nil, err
	}
	return decodeRecord(out), nil
}

func (p *Properties) Update(ctx context.Context, id string, body map[string]any) (api.Record, error) {
	var out map[string]any
	if err := p.c.doJSON(ctx, http.MethodPut, p.c.endpoint("properties", id), body, &out); err != nil {
		return nil, err
	}
	return decodeRecord(out), nil
}

func (p *Properties) Get(ctx context.Context, id string) (api.Record, error) {
	var out map[string]any
	if err := p.c.doJSON(ctx, http.MethodGet, p.c.endpoint("properties", id), nil, &out); err != nil {
		return nil, err
	}
	return decodeRecord(out), nil
}

func (p *Properties) Upload(ctx context.Context, id string, files []draft.NewMedia) error {
	return p.c.upload(ctx, p.c.endpoint("properties", id, "upload"), files)
}

// DeleteFile sends {fileUrl, type}; type defaults to photo.
func (p *Properties) DeleteFile(ctx context.Context, id, url, mediaType string) error {
	if mediaType == "" {
		mediaType = draft.MediaTypePhoto
	}
	body := map[string]any{"fileUrl": url, "type": mediaType}
	return p.c.doJSON(ctx, http.MethodDelete, p.c.endpoint("properties", id, "file"), body, nil)
}

func (p *Properties) Children(ctx context.Context, id string) ([]api.Record, error) {
	var out listEnvelope
	if err := p.c.doJSON(ctx, http.MethodGet, p.c.endpoint("properties", id, "children"), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
