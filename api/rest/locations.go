package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"github.com/goliatone/go-wizard/api"
)

// Locations implements api.LocationLookup.
type Locations struct {
	c *Client
}

var _ api.LocationLookup = (*Locations)(nil)

func (l *Locations) Provinces(ctx context.Context) ([]api.Place, error) {
	return l.list(ctx, l.c.endpoint("locations", "provinces"))
}

func (l *Locations) Districts(ctx context.Context, provinceID string) ([]api.Place, error) {
	return l.list(ctx, l.c.endpoint("locations", "provinces", provinceID, "districts"))
}

func (l *Locations) Areas(ctx context.Context, districtID string) ([]api.Place, error) {
	return l.list(ctx, l.c.endpoint("locations", "districts", districtID, "areas"))
}

func (l *Locations) list(ctx context.Context, target string) ([]api.Place, error) {
	var out placeList
	if err := l.c.doJSON(ctx, http.MethodGet, target, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

type placeList []api.Place

func (p *placeList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var items []api.Place
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		*p = items
		return nil
	}
	var env struct {
		Data []api.Place `json:"data"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}
	*p = env.Data
	return nil
}
