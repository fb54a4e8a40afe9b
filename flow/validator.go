package flow

import (
	stderrors "errors"
	"sort"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-errors"
)

// FormField keys errors that do not belong to a single field.
const FormField = "_form"

// Schema validates a draft and returns nil, an ozzo validation.Errors map,
// or a go-errors validation error.
type Schema[D any] interface {
	Validate(D) error
}

// SchemaFunc adapts a plain function to Schema.
type SchemaFunc[D any] func(D) error

func (f SchemaFunc[D]) Validate(d D) error {
	if f == nil {
		return nil
	}
	return f(d)
}

// SchemaSource resolves the schema for a step id.
type SchemaSource[D any] interface {
	Lookup(StepID) (Schema[D], bool)
}

// Result is the outcome of validating one or more steps. An empty Errors map
// means valid.
type Result struct {
	Steps  []StepID          `json:"steps"`
	Errors map[string]string `json:"errors"`
}

func (r Result) Valid() bool {
	return len(r.Errors) == 0
}

// Fields returns the erroring fields in stable order.
func (r Result) Fields() []string {
	out := make([]string, 0, len(r.Errors))
	for field := range r.Errors {
		out = append(out, field)
	}
	sort.Strings(out)
	return out
}

// Err converts a failed result into a go-errors validation error.
func (r Result) Err() error {
	if r.Valid() {
		return nil
	}
	fields := make([]errors.FieldError, 0, len(r.Errors))
	for _, field := range r.Fields() {
		fields = append(fields, errors.FieldError{Field: field, Message: r.Errors[field]})
	}
	return errors.NewValidation("validation failed", fields...).
		WithTextCode(ErrCodeValidationFailed)
}

// Touched is the set of fields whose errors should be displayed.
type Touched map[string]bool

func (t Touched) Mark(fields ...string) {
	for _, f := range fields {
		t[f] = true
	}
}

func (t Touched) Has(field string) bool {
	return t[field]
}

func (t Touched) clone() Touched {
	out := make(Touched, len(t))
	for k, v := range t {
		out[k] = v
	}
	return out
}

// Validator runs step schemas against a draft.
type Validator[D any] struct {
	source SchemaSource[D]
	logger Logger
}

// ValidatorOption configures a Validator.
type ValidatorOption func(*validatorConfig)

type validatorConfig struct {
	logger Logger
}

func WithValidatorLogger(logger Logger) ValidatorOption {
	return func(c *validatorConfig) {
		c.logger = logger
	}
}

func NewValidator[D any](source SchemaSource[D], opts ...ValidatorOption) *Validator[D] {
	cfg := validatorConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return &Validator[D]{
		source: source,
		logger: NormalizeLogger(cfg.logger),
	}
}

// Validate runs the schema registered for step. Steps without a schema are
// always valid.
func (v *Validator[D]) Validate(step StepID, d D) Result {
	res := Result{Steps: []StepID{step}, Errors: map[string]string{}}
	if v == nil || v.source == nil {
		return res
	}
	schema, ok := v.source.Lookup(step)
	if !ok || schema == nil {
		v.logger.Trace("no schema for step %s", step)
		return res
	}
	res.Errors = FieldErrors(schema.Validate(d))
	if !res.Valid() {
		v.logger.Debug("step %s validation failed fields=%v", step, res.Fields())
	}
	return res
}

// ValidateSteps merges the results of every step, keeping the first message
// reported for a field.
func (v *Validator[D]) ValidateSteps(steps Steps, d D) Result {
	res := Result{Steps: steps.IDs(), Errors: map[string]string{}}
	for _, step := range steps {
		for field, msg := range v.Validate(step.ID, d).Errors {
			if _, seen := res.Errors[field]; !seen {
				res.Errors[field] = msg
			}
		}
	}
	return res
}

// FieldErrors flattens a schema error into a field keyed message map.
func FieldErrors(err error) map[string]string {
	out := map[string]string{}
	if err == nil {
		return out
	}

	var ozzoErrs validation.Errors
	if stderrors.As(err, &ozzoErrs) {
		err = errors.FromOzzoValidation(ozzoErrs, "validation failed")
	}

	if fields, ok := errors.GetValidationErrors(err); ok {
		for _, fe := range fields {
			key := strings.TrimSpace(fe.Field)
			if key == "" {
				key = FormField
			}
			if _, seen := out[key]; !seen {
				out[key] = fe.Message
			}
		}
		return out
	}

	out[FormField] = err.Error()
	return out
}
