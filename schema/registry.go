package schema

import (
	"sort"
	"sync"

	"github.com/goliatone/go-wizard/flow"
)

// Step ids shared by the property and apartment wizards.
const (
	StepOwnership  flow.StepID = "ownership"
	StepDetails    flow.StepID = "details"
	StepLocation   flow.StepID = "location"
	StepPricing    flow.StepID = "pricing"
	StepMedia      flow.StepID = "media"
	StepAmenities  flow.StepID = "amenities"
	StepReview     flow.StepID = "review"
	StepBuilding   flow.StepID = "building"
	StepFacilities flow.StepID = "facilities"
)

// Registry maps stable step ids to schemas. It never relies on the position
// of a step in the active list.
type Registry[D any] struct {
	mu      sync.RWMutex
	schemas map[flow.StepID]flow.Schema[D]
}

func NewRegistry[D any]() *Registry[D] {
	return &Registry[D]{schemas: make(map[flow.StepID]flow.Schema[D])}
}

// Register binds schema to id, replacing any previous binding.
func (r *Registry[D]) Register(id flow.StepID, schema flow.Schema[D]) *Registry[D] {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.schemas[id] = schema
	return r
}

// RegisterFunc is Register for plain functions.
func (r *Registry[D]) RegisterFunc(id flow.StepID, fn func(D) error) *Registry[D] {
	return r.Register(id, flow.SchemaFunc[D](fn))
}

func (r *Registry[D]) Lookup(id flow.StepID) (flow.Schema[D], bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.schemas[id]
	return s, ok
}

// Steps returns the registered ids in lexical order.
func (r *Registry[D]) Steps() []flow.StepID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]flow.StepID, 0, len(r.schemas))
	for id := range r.schemas {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
