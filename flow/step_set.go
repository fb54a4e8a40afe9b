package flow

import (
	"strings"

	"github.com/goliatone/go-errors"
	"gopkg.in/yaml.v3"
)

// WizardDefinition is the declarative step list of one wizard.
type WizardDefinition struct {
	ID    string `yaml:"id" json:"id"`
	Title string `yaml:"title,omitempty" json:"title,omitempty"`
	Steps Steps  `yaml:"steps" json:"steps"`
}

// StepSet groups wizard definitions loaded from config.
type StepSet struct {
	Version int                `yaml:"version" json:"version"`
	Wizards []WizardDefinition `yaml:"wizards" json:"wizards"`
}

// ParseStepSet parses YAML (or JSON) into a validated StepSet.
func ParseStepSet(data []byte) (StepSet, error) {
	var set StepSet
	if err := yaml.Unmarshal(data, &set); err != nil {
		return set, errors.Wrap(err, errors.CategoryBadInput, "parse step set").
			WithTextCode("STEP_SET_INVALID")
	}
	return set, set.Validate()
}

// Validate checks ids are present and unique.
func (s StepSet) Validate() error {
	if len(s.Wizards) == 0 {
		return errors.New("step set requires at least one wizard", errors.CategoryBadInput).
			WithTextCode("STEP_SET_INVALID")
	}
	seen := make(map[string]struct{}, len(s.Wizards))
	for _, w := range s.Wizards {
		id := strings.TrimSpace(w.ID)
		if id == "" {
			return errors.New("wizard id required", errors.CategoryBadInput).
				WithTextCode("STEP_SET_INVALID")
		}
		if _, dup := seen[id]; dup {
			return errors.New("duplicate wizard id", errors.CategoryConflict).
				WithTextCode("STEP_SET_INVALID").
				WithMetadata(map[string]any{"wizard": id})
		}
		seen[id] = struct{}{}
		if len(w.Steps) == 0 {
			return errors.New("wizard requires at least one step", errors.CategoryBadInput).
				WithTextCode("STEP_SET_INVALID").
				WithMetadata(map[string]any{"wizard": id})
		}
		steps := make(map[StepID]struct{}, len(w.Steps))
		for _, step := range w.Steps {
			if strings.TrimSpace(string(step.ID)) == "" {
				return errors.New("step id required", errors.CategoryBadInput).
					WithTextCode("STEP_SET_INVALID").
					WithMetadata(map[string]any{"wizard": id})
			}
			if _, dup := steps[step.ID]; dup {
				return errors.New("duplicate step id", errors.CategoryConflict).
					WithTextCode("STEP_SET_INVALID").
					WithMetadata(map[string]any{"wizard": id, "step": string(step.ID)})
			}
			steps[step.ID] = struct{}{}
		}
	}
	return nil
}

// Wizard returns a copy of the steps of the named wizard.
func (s StepSet) Wizard(id string) (Steps, bool) {
	for _, w := range s.Wizards {
		if w.ID == id {
			out := make(Steps, len(w.Steps))
			copy(out, w.Steps)
			return out, true
		}
	}
	return nil, false
}
