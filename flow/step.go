package flow

import (
	"sort"
	"strings"
)

// StepID is the stable identifier of a wizard step. Schemas and review links
// address steps by id, never by position in the active list.
type StepID string

func (id StepID) String() string { return string(id) }

// Step describes one wizard screen.
type Step struct {
	ID        StepID   `yaml:"id" json:"id"`
	Title     string   `yaml:"title" json:"title"`
	Renderer  string   `yaml:"renderer,omitempty" json:"renderer,omitempty"`
	Fields    []string `yaml:"fields,omitempty" json:"fields,omitempty"`
	Skippable bool     `yaml:"skippable,omitempty" json:"skippable,omitempty"`
	// OmitWhenInherited drops the step for entities that inherit from a parent.
	OmitWhenInherited bool `yaml:"omit_when_inherited,omitempty" json:"omit_when_inherited,omitempty"`
}

// HasField reports whether field (a dotted wire path) belongs to the step.
func (s Step) HasField(field string) bool {
	field = strings.TrimSpace(field)
	if field == "" {
		return false
	}
	for _, f := range s.Fields {
		if f == field || strings.HasPrefix(field, f+".") {
			return true
		}
	}
	return false
}

// Steps is an ordered step list.
type Steps []Step

// Active returns the steps shown for an entity, dropping inherited ones.
func (s Steps) Active(inherited bool) Steps {
	out := make(Steps, 0, len(s))
	for _, step := range s {
		if inherited && step.OmitWhenInherited {
			continue
		}
		out = append(out, step)
	}
	return out
}

// Index returns the position of id or -1.
func (s Steps) Index(id StepID) int {
	for i, step := range s {
		if step.ID == id {
			return i
		}
	}
	return -1
}

// Lookup returns the step with the given id.
func (s Steps) Lookup(id StepID) (Step, bool) {
	if i := s.Index(id); i >= 0 {
		return s[i], true
	}
	return Step{}, false
}

func (s Steps) IDs() []StepID {
	out := make([]StepID, len(s))
	for i, step := range s {
		out[i] = step.ID
	}
	return out
}

// OwnerOf returns the step that declares field.
func (s Steps) OwnerOf(field string) (Step, bool) {
	for _, step := range s {
		if step.HasField(field) {
			return step, true
		}
	}
	return Step{}, false
}

// SortFields orders fields by owning step, then by declaration order within
// that step, so parent selections are applied before their dependents.
// Fields no step owns go last, by name.
func (s Steps) SortFields(fields []string) []string {
	type rank struct{ step, pos int }
	unowned := rank{len(s), 0}
	ranks := make(map[string]rank, len(fields))
	for _, field := range fields {
		ranks[field] = unowned
	owner:
		for i, step := range s {
			for j, f := range step.Fields {
				if f == field || strings.HasPrefix(field, f+".") {
					ranks[field] = rank{i, j}
					break owner
				}
			}
		}
	}

	out := append([]string(nil), fields...)
	sort.SliceStable(out, func(a, b int) bool {
		ra, rb := ranks[out[a]], ranks[out[b]]
		if ra.step != rb.step {
			return ra.step < rb.step
		}
		if ra.pos != rb.pos {
			return ra.pos < rb.pos
		}
		return out[a] < out[b]
	})
	return out
}
