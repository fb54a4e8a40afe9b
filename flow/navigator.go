package flow

// Navigator is the step controller of one wizard session. It holds the step
// index, the displayed errors and the touched set. Navigation never mutates
// the draft.
type Navigator[D any] struct {
	steps     Steps
	index     int
	validator *Validator[D]
	errors    map[string]string
	touched   Touched
	logger    Logger
}

// NavigatorOption configures a Navigator.
type NavigatorOption func(*navigatorConfig)

type navigatorConfig struct {
	logger Logger
	start  StepID
}

func WithNavigatorLogger(logger Logger) NavigatorOption {
	return func(c *navigatorConfig) {
		c.logger = logger
	}
}

// WithStartStep opens the navigator on the given step instead of the first.
func WithStartStep(id StepID) NavigatorOption {
	return func(c *navigatorConfig) {
		c.start = id
	}
}

func NewNavigator[D any](steps Steps, validator *Validator[D], opts ...NavigatorOption) (*Navigator[D], error) {
	if len(steps) == 0 {
		return nil, ErrNoSteps.Clone()
	}
	cfg := navigatorConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	n := &Navigator[D]{
		steps:     append(Steps(nil), steps...),
		validator: validator,
		errors:    map[string]string{},
		touched:   Touched{},
		logger:    NormalizeLogger(cfg.logger),
	}
	if cfg.start != "" {
		if err := n.JumpToStep(cfg.start); err != nil {
			return nil, err
		}
	}
	return n, nil
}

func (n *Navigator[D]) Steps() Steps { return append(Steps(nil), n.steps...) }
func (n *Navigator[D]) Len() int     { return len(n.steps) }
func (n *Navigator[D]) Index() int   { return n.index }
func (n *Navigator[D]) Current() Step {
	return n.steps[n.index]
}

func (n *Navigator[D]) IsFirst() bool { return n.index == 0 }
func (n *Navigator[D]) IsLast() bool  { return n.index == len(n.steps)-1 }

// Progress is the completion percentage of the current position.
func (n *Navigator[D]) Progress() float64 {
	return float64(n.index+1) / float64(len(n.steps)) * 100
}

// Advance validates the current step against the whole draft. On success it
// moves forward unless already on the last step. On failure every erroring
// field is marked touched and the index stays put.
func (n *Navigator[D]) Advance(d D) (Result, bool) {
	step := n.Current()
	res := n.validator.Validate(step.ID, d)
	n.replaceStepErrors(step, res)
	if !res.Valid() {
		n.touched.Mark(res.Fields()...)
		n.logger.Debug("advance blocked at step %s", step.ID)
		return res, false
	}
	if n.IsLast() {
		return res, false
	}
	n.index++
	n.logger.Trace("advanced to step %s", n.Current().ID)
	return res, true
}

// Retreat moves back one step without validating.
func (n *Navigator[D]) Retreat() bool {
	if n.IsFirst() {
		return false
	}
	n.index--
	return true
}

// JumpTo moves to index without validating.
func (n *Navigator[D]) JumpTo(index int) error {
	if index < 0 || index >= len(n.steps) {
		return cloneError(ErrStepOutOfRange, "", map[string]any{
			"index": index,
			"steps": len(n.steps),
		})
	}
	n.index = index
	return nil
}

// JumpToStep moves to the step with id without validating.
func (n *Navigator[D]) JumpToStep(id StepID) error {
	i := n.steps.Index(id)
	if i < 0 {
		return cloneError(ErrStepNotFound, "", map[string]any{"step": string(id)})
	}
	n.index = i
	return nil
}

// Skip moves past a skippable step without validating.
func (n *Navigator[D]) Skip() (bool, error) {
	step := n.Current()
	if !step.Skippable {
		return false, cloneError(ErrStepNotSkippable, "", map[string]any{"step": string(step.ID)})
	}
	if n.IsLast() {
		return false, nil
	}
	for field := range n.errors {
		if step.HasField(field) {
			delete(n.errors, field)
		}
	}
	n.index++
	return true, nil
}

// Revalidate refreshes the displayed error of field after it changed. The
// error disappears as soon as the field passes.
func (n *Navigator[D]) Revalidate(d D, field string) {
	step, ok := n.steps.OwnerOf(field)
	if !ok {
		step = n.Current()
	}
	res := n.validator.Validate(step.ID, d)
	for f := range n.errors {
		if _, still := res.Errors[f]; !still && (f == field || step.HasField(f)) {
			delete(n.errors, f)
		}
	}
	if msg, failing := res.Errors[field]; failing && n.touched.Has(field) {
		n.errors[field] = msg
	}
	for f, msg := range res.Errors {
		if !step.HasField(f) && n.touched.Has(f) {
			n.errors[f] = msg
		}
	}
}

// ValidateAll validates every active step and marks erroring fields touched.
// The index does not change.
func (n *Navigator[D]) ValidateAll(d D) Result {
	res := n.validator.ValidateSteps(n.steps, d)
	n.errors = map[string]string{}
	for f, msg := range res.Errors {
		n.errors[f] = msg
	}
	n.touched.Mark(res.Fields()...)
	return res
}

// SetSteps swaps the active step list and reports whether the current step
// is still listed. When it is not, the navigator moves to the closest earlier
// step that is, or the first step. The touched set carries over; errors of
// fields no listed step owns are dropped.
func (n *Navigator[D]) SetSteps(steps Steps) (bool, error) {
	if len(steps) == 0 {
		return false, ErrNoSteps.Clone()
	}
	prev, at := n.steps, n.index
	n.steps = append(Steps(nil), steps...)
	n.index = 0

	kept := false
	if i := n.steps.Index(prev[at].ID); i >= 0 {
		n.index, kept = i, true
	} else {
		for j := at - 1; j >= 0; j-- {
			if i := n.steps.Index(prev[j].ID); i >= 0 {
				n.index = i
				break
			}
		}
	}

	for f := range n.errors {
		if f == FormField {
			continue
		}
		if _, owned := n.steps.OwnerOf(f); !owned {
			delete(n.errors, f)
		}
	}
	return kept, nil
}

// Errors returns a copy of the displayed errors.
func (n *Navigator[D]) Errors() map[string]string {
	out := make(map[string]string, len(n.errors))
	for k, v := range n.errors {
		out[k] = v
	}
	return out
}

// Touched returns a copy of the touched set.
func (n *Navigator[D]) Touched() Touched {
	return n.touched.clone()
}

func (n *Navigator[D]) replaceStepErrors(step Step, res Result) {
	for f := range n.errors {
		if step.HasField(f) || f == FormField {
			delete(n.errors, f)
		}
	}
	for f, msg := range res.Errors {
		n.errors[f] = msg
	}
}
