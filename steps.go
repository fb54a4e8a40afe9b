package wizard

import (
	"sync"

	"github.com/goliatone/go-wizard/api"
	"github.com/goliatone/go-wizard/data"
	"github.com/goliatone/go-wizard/flow"
)

var defaultSteps = sync.OnceValues(func() (flow.StepSet, error) {
	return flow.ParseStepSet(data.Steps())
})

// DefaultStepSet returns the embedded step definitions.
func DefaultStepSet() (flow.StepSet, error) {
	return defaultSteps()
}

// wizardSteps returns the full step list of kind from set.
func wizardSteps(set flow.StepSet, kind api.Kind) (flow.Steps, error) {
	steps, ok := set.Wizard(string(kind))
	if !ok {
		return nil, withMeta(flow.ErrStepNotFound, map[string]any{"wizard": string(kind)}).
			WithTextCode(ErrCodeUnknownWizard)
	}
	return steps, nil
}

func (o options) stepSet() (flow.StepSet, error) {
	if o.steps != nil {
		return *o.steps, nil
	}
	return DefaultStepSet()
}
