package wizard

import (
	"github.com/goliatone/go-wizard/api"
	"github.com/goliatone/go-wizard/draft"
	"github.com/goliatone/go-wizard/flow"
	"github.com/goliatone/go-wizard/runner"
	"github.com/goliatone/go-wizard/store"
	"github.com/goliatone/go-wizard/submit"
)

type Option func(*options)

type options struct {
	router     api.Router
	logger     flow.Logger
	steps      *flow.StepSet
	start      flow.StepID
	locations  api.LocationLookup
	properties *store.PropertyStore
	apartments *store.ApartmentStore
	recorder   submit.Recorder
	retries    int
	strategy   runner.RetryStrategy
	keyFunc    func() string
	property   *draft.Property
	apartment  *draft.Apartment
}

func newOptions(opts []Option) options {
	cfg := options{
		router: api.NopRouter{},
		logger: flow.NopLogger{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// WithRouter sets the navigation target for close and success.
func WithRouter(r api.Router) Option {
	return func(o *options) {
		if r != nil {
			o.router = r
		}
	}
}

func WithLogger(logger flow.Logger) Option {
	return func(o *options) {
		o.logger = flow.NormalizeLogger(logger)
	}
}

// WithStepSet replaces the embedded step definitions.
func WithStepSet(set flow.StepSet) Option {
	return func(o *options) {
		o.steps = &set
	}
}

// WithStartStep opens the session on step id instead of the first step.
func WithStartStep(id flow.StepID) Option {
	return func(o *options) {
		o.start = id
	}
}

// WithLocations enables the province, district and area cascade.
func WithLocations(lookup api.LocationLookup) Option {
	return func(o *options) {
		o.locations = lookup
	}
}

// WithPropertyStore makes property submissions write through s.
func WithPropertyStore(s *store.PropertyStore) Option {
	return func(o *options) {
		o.properties = s
	}
}

// WithApartmentStore makes apartment submissions write through s.
func WithApartmentStore(s *store.ApartmentStore) Option {
	return func(o *options) {
		o.apartments = s
	}
}

// WithRecorder receives every partial submission.
func WithRecorder(r submit.Recorder) Option {
	return func(o *options) {
		o.recorder = r
	}
}

// WithRetries retries transient upload and delete failures n times.
func WithRetries(n int) Option {
	return func(o *options) {
		o.retries = n
	}
}

func WithRetryStrategy(s runner.RetryStrategy) Option {
	return func(o *options) {
		o.strategy = s
	}
}

// WithKeyFunc replaces the idempotency key generator.
func WithKeyFunc(fn func() string) Option {
	return func(o *options) {
		o.keyFunc = fn
	}
}

// WithPropertyDraft starts a property session from p instead of an empty
// draft, for example a unit pre-linked to its building.
func WithPropertyDraft(p *draft.Property) Option {
	return func(o *options) {
		o.property = p
	}
}

// WithApartmentDraft starts an apartment session from a.
func WithApartmentDraft(a *draft.Apartment) Option {
	return func(o *options) {
		o.apartment = a
	}
}

func (o options) submitOptions(extra ...submit.Option) []submit.Option {
	out := []submit.Option{
		submit.WithLogger(o.logger),
		submit.WithRetries(o.retries),
		submit.WithRetryStrategy(o.strategy),
		submit.WithKeyFunc(o.keyFunc),
	}
	return append(out, extra...)
}
