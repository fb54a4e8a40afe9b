// Package wizard drives the property and apartment listing wizards: a draft,
// its active steps, per-step validation, payload assembly and submission.
package wizard

import (
	"context"
	"sync"

	"github.com/goliatone/go-wizard/api"
	"github.com/goliatone/go-wizard/draft"
	"github.com/goliatone/go-wizard/flow"
	"github.com/goliatone/go-wizard/location"
	"github.com/goliatone/go-wizard/payload"
	"github.com/goliatone/go-wizard/submit"
)

// Draft is the editable entity behind a session.
type Draft interface {
	Set(field string, value any) error
	Editing() bool
}

// Session is one run of a wizard. Methods are safe for concurrent use; a
// pending submission makes every mutating call fail with ErrBusy.
type Session[D Draft] struct {
	mu      sync.Mutex
	busy    bool
	closed  bool
	pending *pendingWork

	kind      api.Kind
	draft     D
	id        string
	all       flow.Steps
	inherited func(D) bool
	wasInh    bool
	validator *flow.Validator[D]
	nav       *flow.Navigator[D]
	assemble  func(D, bool) payload.Result
	orch      *submit.Orchestrator
	router    api.Router
	cascade   *location.Cascade
	logger    flow.Logger
	outcome   submit.Outcome
}

type sessionConfig[D Draft] struct {
	kind      api.Kind
	draft     D
	source    flow.SchemaSource[D]
	inherited func(D) bool
	assemble  func(D, bool) payload.Result
	locate    func(D) draft.Location
	target    submit.Target
}

func newSession[D Draft](ctx context.Context, sc sessionConfig[D], o options) (*Session[D], error) {
	set, err := o.stepSet()
	if err != nil {
		return nil, err
	}
	all, err := wizardSteps(set, sc.kind)
	if err != nil {
		return nil, err
	}
	if sc.inherited == nil {
		sc.inherited = func(D) bool { return false }
	}

	logger := flow.WithLoggerFields(o.logger, map[string]any{"wizard": string(sc.kind)})
	s := &Session[D]{
		kind:      sc.kind,
		draft:     sc.draft,
		all:       all,
		inherited: sc.inherited,
		wasInh:    sc.inherited(sc.draft),
		validator: flow.NewValidator(sc.source, flow.WithValidatorLogger(logger)),
		assemble:  sc.assemble,
		router:    o.router,
		logger:    logger,
	}
	if sc.draft.Editing() {
		s.id = entityID(sc.draft)
	}

	navOpts := []flow.NavigatorOption{flow.WithNavigatorLogger(logger)}
	if o.start != "" {
		navOpts = append(navOpts, flow.WithStartStep(o.start))
	}
	s.nav, err = flow.NewNavigator(all.Active(s.wasInh), s.validator, navOpts...)
	if err != nil {
		return nil, err
	}

	recorder := submit.RecorderFunc(func(ctx context.Context, p submit.Partial, work payload.Result) error {
		s.mu.Lock()
		if s.pending == nil {
			s.pending = newPendingWork()
		}
		s.pending.partial = p
		s.pending.work = work
		s.mu.Unlock()
		if o.recorder != nil {
			return o.recorder.RecordPartial(ctx, p, work)
		}
		return nil
	})
	s.orch = submit.New(sc.target, o.submitOptions(submit.WithRecorder(recorder))...)

	if o.locations != nil {
		s.cascade = location.NewCascade(o.locations, location.WithLogger(logger))
		if src, ok := any(sc.draft).(location.Source); ok {
			s.cascade.Bind(ctx, src)
		}
		if sc.locate != nil {
			s.cascade.Sync(ctx, sc.locate(sc.draft))
		}
	}
	return s, nil
}

func entityID(d any) string {
	switch v := d.(type) {
	case *draft.Property:
		return v.ID
	case *draft.Apartment:
		return v.ID
	}
	return ""
}

func (s *Session[D]) Kind() api.Kind { return s.kind }

// Draft returns the live draft. Mutate it through Set or Update so the
// step ownership and error display stay consistent.
func (s *Session[D]) Draft() D { return s.draft }

// ID returns the entity id, known when editing or after a save.
func (s *Session[D]) ID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id
}

// Locations returns the location cascade, nil unless WithLocations was set.
func (s *Session[D]) Locations() *location.Cascade { return s.cascade }

func (s *Session[D]) Current() flow.Step {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nav.Current()
}

func (s *Session[D]) Steps() flow.Steps {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nav.Steps()
}

func (s *Session[D]) Progress() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nav.Progress()
}

func (s *Session[D]) IsFirst() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nav.IsFirst()
}

func (s *Session[D]) IsLast() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nav.IsLast()
}

// Errors returns the field errors currently displayed.
func (s *Session[D]) Errors() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nav.Errors()
}

func (s *Session[D]) Touched() flow.Touched {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nav.Touched()
}

func (s *Session[D]) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy
}

// Outcome returns the result of the last successful submission.
func (s *Session[D]) Outcome() submit.Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.outcome
}

// Pending returns the partial submission awaiting a retry, if any.
func (s *Session[D]) Pending() (submit.Partial, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == nil {
		return submit.Partial{}, false
	}
	return s.pending.partial, true
}

// Set assigns a field owned by the current step.
func (s *Session[D]) Set(field string, value any) error {
	return s.Update(field, func(d D) error { return d.Set(field, value) })
}

// Update applies fn to the draft as an edit of field, which must belong to
// the current step.
func (s *Session[D]) Update(field string, fn func(D) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.usable(); err != nil {
		return err
	}
	step := s.nav.Current()
	if !step.HasField(field) {
		return withMeta(ErrFieldOutOfStep, map[string]any{"field": field, "step": string(step.ID)})
	}
	if err := fn(s.draft); err != nil {
		return err
	}
	s.refreshSteps()
	s.nav.Revalidate(s.draft, field)
	return nil
}

// Apply runs fn on the draft without the current-step check, for bulk
// imports, then refreshes the active steps.
func (s *Session[D]) Apply(fn func(D) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.usable(); err != nil {
		return err
	}
	err := fn(s.draft)
	s.refreshSteps()
	return err
}

// Fill sets every field in values, in step order, without the current-step
// check.
func (s *Session[D]) Fill(values map[string]any) error {
	fields := make([]string, 0, len(values))
	for field := range values {
		fields = append(fields, field)
	}
	return s.Apply(func(d D) error {
		for _, field := range s.all.SortFields(fields) {
			if err := d.Set(field, values[field]); err != nil {
				return err
			}
		}
		return nil
	})
}

// ImportMedia stages new files and removes persisted ones by URL, without
// the current-step check.
func (s *Session[D]) ImportMedia(add []draft.NewMedia, remove ...string) error {
	return s.Apply(func(d D) error {
		if m, ok := any(d).(interface{ AddMedia(...draft.NewMedia) }); ok && len(add) > 0 {
			m.AddMedia(add...)
		}
		if m, ok := any(d).(interface{ RemoveExistingMedia(string) bool }); ok {
			for _, url := range remove {
				m.RemoveExistingMedia(url)
			}
		}
		return nil
	})
}

// Validate checks every active step and displays the errors, without
// moving or submitting.
func (s *Session[D]) Validate() flow.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nav.ValidateAll(s.draft)
}

// Payload assembles the request the draft would submit now.
func (s *Session[D]) Payload() payload.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.assemble(s.draft, s.draft.Editing())
}

// AddMedia stages new files on the media step.
func (s *Session[D]) AddMedia(items ...draft.NewMedia) error {
	return s.Update("media", func(d D) error {
		if m, ok := any(d).(interface{ AddMedia(...draft.NewMedia) }); ok {
			m.AddMedia(items...)
		}
		return nil
	})
}

// RemoveExistingMedia marks a persisted file for deletion on submit.
func (s *Session[D]) RemoveExistingMedia(url string) error {
	return s.Update("media", func(d D) error {
		if m, ok := any(d).(interface{ RemoveExistingMedia(string) bool }); ok {
			m.RemoveExistingMedia(url)
		}
		return nil
	})
}

// RemoveNewMedia drops a staged file by index.
func (s *Session[D]) RemoveNewMedia(index int) error {
	return s.Update("media", func(d D) error {
		if m, ok := any(d).(interface{ RemoveNewMedia(int) bool }); ok {
			m.RemoveNewMedia(index)
		}
		return nil
	})
}

// Next validates the current step and advances. On the last step it
// submits instead. A failed validation is reported in the result, not as an
// error.
func (s *Session[D]) Next(ctx context.Context) (flow.Result, error) {
	s.mu.Lock()
	if err := s.usable(); err != nil {
		s.mu.Unlock()
		return flow.Result{}, err
	}
	if !s.nav.IsLast() {
		res, _ := s.nav.Advance(s.draft)
		s.mu.Unlock()
		return res, nil
	}
	s.mu.Unlock()

	res, _, err := s.submit(ctx)
	return res, err
}

// Back moves to the previous step and reports whether it moved. On the
// first step it closes the wizard instead. It does nothing while busy.
func (s *Session[D]) Back() bool {
	s.mu.Lock()
	if s.busy || s.closed {
		s.mu.Unlock()
		return false
	}
	if s.nav.Retreat() {
		s.mu.Unlock()
		return true
	}
	s.mu.Unlock()
	s.Close()
	return false
}

// JumpTo moves to step id without validating, as review links do.
func (s *Session[D]) JumpTo(id flow.StepID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.usable(); err != nil {
		return err
	}
	return s.nav.JumpToStep(id)
}

// Skip passes over a skippable step without validating.
func (s *Session[D]) Skip() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.usable(); err != nil {
		return err
	}
	_, err := s.nav.Skip()
	return err
}

// Close cancels the wizard and routes away. It does nothing while a
// submission is pending, so the outcome still routes to the detail view.
func (s *Session[D]) Close() {
	s.mu.Lock()
	if s.closed || s.busy {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()
	s.router.Close()
}

// Submit validates every active step and persists the draft. After a
// partial submission the next call sends only what the server does not hold
// yet: the pending stages, plus an update of the saved entity and any media
// changes when the draft was edited in between.
func (s *Session[D]) Submit(ctx context.Context) (submit.Outcome, error) {
	res, out, err := s.submit(ctx)
	if err == nil && !res.Valid() {
		err = res.Err()
	}
	return out, err
}

func (s *Session[D]) submit(ctx context.Context) (res flow.Result, out submit.Outcome, err error) {
	s.mu.Lock()
	if err := s.usable(); err != nil {
		s.mu.Unlock()
		return flow.Result{}, submit.Outcome{}, err
	}
	res = s.nav.ValidateAll(s.draft)
	if !res.Valid() {
		s.jumpToFirstError(res)
		s.mu.Unlock()
		return res, submit.Outcome{}, nil
	}
	s.busy = true
	req := submit.Request{ID: s.id, Payload: s.assemble(s.draft, s.draft.Editing())}
	var resume *submit.Partial
	if s.pending != nil {
		p, work := s.pending.plan(req.Payload)
		resume, req.Payload = &p, work
	}
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.busy = false
		s.mu.Unlock()
	}()

	out, err = s.run(ctx, req, resume)
	if err != nil {
		if p, ok := submit.AsPartial(err); ok {
			s.mu.Lock()
			s.id = p.EntityID
			if s.pending != nil {
				s.pending.track(req.Payload)
			}
			s.mu.Unlock()
		}
		s.logger.Warn("submit failed: %v", err)
		return res, out, err
	}

	s.mu.Lock()
	s.id = out.ID
	s.outcome = out
	s.pending = nil
	s.closed = true
	s.mu.Unlock()

	s.logger.Info("submitted %s %s", s.kind, out.ID)
	s.router.ShowDetail(s.kind, out.ID)
	return res, out, nil
}

func (s *Session[D]) run(ctx context.Context, req submit.Request, resume *submit.Partial) (out submit.Outcome, err error) {
	defer recoverPanic(s.logger, "submit", &err)
	if resume != nil {
		return s.orch.Resume(ctx, *resume, req.Payload)
	}
	return s.orch.Submit(ctx, req)
}

// usable must be called with mu held.
func (s *Session[D]) usable() error {
	if s.busy {
		return ErrBusy.Clone()
	}
	if s.closed {
		return ErrSessionClosed.Clone()
	}
	return nil
}

// refreshSteps swaps the active list when inheritance changed. The current
// step, touched set and displayed errors carry over; a dropped current step
// falls back to the closest earlier one. Must be called with mu held.
func (s *Session[D]) refreshSteps() {
	inherited := s.inherited(s.draft)
	if inherited == s.wasInh {
		return
	}
	current := s.nav.Current().ID
	kept, err := s.nav.SetSteps(s.all.Active(inherited))
	if err != nil {
		s.logger.Warn("rebuild steps: %v", err)
		return
	}
	s.wasInh = inherited
	if !kept {
		s.logger.Info("step %s no longer applies, moved to %s", current, s.nav.Current().ID)
	}
	s.logger.Debug("active steps changed inherited=%t steps=%v", inherited, s.nav.Steps().IDs())
}

// jumpToFirstError moves to the first active step owning an error. Must be
// called with mu held.
func (s *Session[D]) jumpToFirstError(res flow.Result) {
	for _, step := range s.nav.Steps() {
		for _, field := range res.Fields() {
			if step.HasField(field) {
				_ = s.nav.JumpToStep(step.ID)
				return
			}
		}
	}
	if len(res.Steps) > 0 {
		_ = s.nav.JumpToStep(res.Steps[0])
	}
}
