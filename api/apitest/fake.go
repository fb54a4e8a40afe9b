// Package apitest provides in-memory api collaborators for tests and
// dry runs.
package apitest

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/goliatone/go-wizard/api"
	"github.com/goliatone/go-wizard/draft"
)

// Call is one recorded invocation.
type Call struct {
	Method string
	ID     string
	Body   map[string]any
	Files  []draft.NewMedia
	URL    string
	Type   string
	Key    string
}

// recorder keeps calls and injected failures.
type recorder struct {
	mu    sync.Mutex
	calls []Call
	fail  map[string]error
	seq   int
}

func (r *recorder) record(c Call) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, c)
	if err, ok := r.fail[c.Method]; ok {
		return err
	}
	return nil
}

// FailOn makes every call to method return err.
func (r *recorder) FailOn(method string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail == nil {
		r.fail = map[string]error{}
	}
	r.fail[method] = err
}

// Clear removes an injected failure.
func (r *recorder) Clear(method string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.fail, method)
}

// Calls returns a copy of the recorded calls.
func (r *recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Call(nil), r.calls...)
}

// Methods returns the recorded method names in order.
func (r *recorder) Methods() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.calls))
	for i, c := range r.calls {
		out[i] = c.Method
	}
	return out
}

func (r *recorder) nextID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	return strconv.Itoa(100 + r.seq)
}

// Properties is an in-memory api.PropertyAPI.
type Properties struct {
	recorder
	Records    map[string]api.Record
	ChildrenOf map[string][]api.Record
}

func NewProperties() *Properties {
	return &Properties{Records: map[string]api.Record{}, ChildrenOf: map[string][]api.Record{}}
}

func (p *Properties) Create(ctx context.Context, body map[string]any) (api.Record, error) {
	if err := p.record(Call{Method: "Create", Body: body, Key: api.IdempotencyKey(ctx)}); err != nil {
		return nil, err
	}
	id := p.nextID()
	rec := api.Record{"property_id": id}
	p.store(id, body)
	return rec, nil
}

func (p *Properties) Update(ctx context.Context, id string, body map[string]any) (api.Record, error) {
	if err := p.record(Call{Method: "Update", ID: id, Body: body, Key: api.IdempotencyKey(ctx)}); err != nil {
		return nil, err
	}
	p.store(id, body)
	return api.Record{"id": id}, nil
}

func (p *Properties) Get(ctx context.Context, id string) (api.Record, error) {
	if err := p.record(Call{Method: "Get", ID: id}); err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	rec, ok := p.Records[id]
	if !ok {
		return nil, fmt.Errorf("property %s not found", id)
	}
	return rec, nil
}

func (p *Properties) Upload(ctx context.Context, id string, files []draft.NewMedia) error {
	return p.record(Call{Method: "Upload", ID: id, Files: files, Key: api.IdempotencyKey(ctx)})
}

func (p *Properties) DeleteFile(ctx context.Context, id, url, mediaType string) error {
	return p.record(Call{Method: "DeleteFile", ID: id, URL: url, Type: mediaType, Key: api.IdempotencyKey(ctx)})
}

func (p *Properties) Children(ctx context.Context, id string) ([]api.Record, error) {
	if err := p.record(Call{Method: "Children", ID: id}); err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]api.Record(nil), p.ChildrenOf[id]...), nil
}

func (p *Properties) store(id string, body map[string]any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	rec := api.Record{"id": id}
	for k, v := range body {
		rec[k] = v
	}
	p.Records[id] = rec
}

// Apartments is an in-memory api.ApartmentAPI.
type Apartments struct {
	recorder
	Records map[string]api.Record
	UnitsOf map[string][]api.Record
}

func NewApartments() *Apartments {
	return &Apartments{Records: map[string]api.Record{}, UnitsOf: map[string][]api.Record{}}
}

func (a *Apartments) Create(ctx context.Context, body map[string]any) (api.Record, error) {
	if err := a.record(Call{Method: "Create", Body: body, Key: api.IdempotencyKey(ctx)}); err != nil {
		return nil, err
	}
	id := a.nextID()
	a.store(id, body)
	return api.Record{"id": id}, nil
}

func (a *Apartments) Update(ctx context.Context, id string, body map[string]any) (api.Record, error) {
	if err := a.record(Call{Method: "Update", ID: id, Body: body, Key: api.IdempotencyKey(ctx)}); err != nil {
		return nil, err
	}
	a.store(id, body)
	return api.Record{"id": id}, nil
}

func (a *Apartments) Get(ctx context.Context, id string) (api.Record, error) {
	if err := a.record(Call{Method: "Get", ID: id}); err != nil {
		return nil, err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	rec, ok := a.Records[id]
	if !ok {
		return nil, fmt.Errorf("apartment %s not found", id)
	}
	return rec, nil
}

func (a *Apartments) Units(ctx context.Context, id string) ([]api.Record, error) {
	if err := a.record(Call{Method: "Units", ID: id}); err != nil {
		return nil, err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]api.Record(nil), a.UnitsOf[id]...), nil
}

func (a *Apartments) Upload(ctx context.Context, id string, files []draft.NewMedia) error {
	return a.record(Call{Method: "Upload", ID: id, Files: files, Key: api.IdempotencyKey(ctx)})
}

func (a *Apartments) DeleteFile(ctx context.Context, id, url string) error {
	return a.record(Call{Method: "DeleteFile", ID: id, URL: url, Key: api.IdempotencyKey(ctx)})
}

func (a *Apartments) Mine(ctx context.Context) ([]api.Record, error) {
	if err := a.record(Call{Method: "Mine"}); err != nil {
		return nil, err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]api.Record, 0, len(a.Records))
	for _, rec := range a.Records {
		out = append(out, rec)
	}
	return out, nil
}

func (a *Apartments) store(id string, body map[string]any) {
	a.mu.Lock()
	defer a.mu.Unlock()
	rec := api.Record{"id": id}
	for k, v := range body {
		rec[k] = v
	}
	a.Records[id] = rec
}

// Locations is an in-memory api.LocationLookup.
type Locations struct {
	recorder
	ProvinceList []api.Place
	DistrictsOf  map[string][]api.Place
	AreasOf      map[string][]api.Place
}

func (l *Locations) Provinces(context.Context) ([]api.Place, error) {
	if err := l.record(Call{Method: "Provinces"}); err != nil {
		return nil, err
	}
	return append([]api.Place(nil), l.ProvinceList...), nil
}

func (l *Locations) Districts(_ context.Context, provinceID string) ([]api.Place, error) {
	if err := l.record(Call{Method: "Districts", ID: provinceID}); err != nil {
		return nil, err
	}
	return append([]api.Place(nil), l.DistrictsOf[provinceID]...), nil
}

func (l *Locations) Areas(_ context.Context, districtID string) ([]api.Place, error) {
	if err := l.record(Call{Method: "Areas", ID: districtID}); err != nil {
		return nil, err
	}
	return append([]api.Place(nil), l.AreasOf[districtID]...), nil
}

// Router records navigation.
type Router struct {
	mu      sync.Mutex
	Closed  int
	Details []string
}

func (r *Router) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Closed++
}

func (r *Router) ShowDetail(kind api.Kind, id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Details = append(r.Details, string(kind)+":"+id)
}

var (
	_ api.PropertyAPI    = (*Properties)(nil)
	_ api.ApartmentAPI   = (*Apartments)(nil)
	_ api.LocationLookup = (*Locations)(nil)
	_ api.Router         = (*Router)(nil)
)
