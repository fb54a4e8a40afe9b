// Package submit persists a finished wizard: save the entity, upload new
// media, then delete removed media. The first failure stops the run and
// nothing is rolled back.
package submit

import (
	"context"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-wizard/api"
	"github.com/goliatone/go-wizard/draft"
	"github.com/goliatone/go-wizard/flow"
	"github.com/goliatone/go-wizard/payload"
	"github.com/goliatone/go-wizard/runner"
	"github.com/goliatone/go-wizard/store"
	"github.com/google/uuid"
)

// Stage names one step of a submission.
type Stage string

const (
	StageSave   Stage = "save"
	StageUpload Stage = "upload"
	StageDelete Stage = "delete"
)

// Stages returns the full submission order.
func Stages() []Stage {
	return []Stage{StageSave, StageUpload, StageDelete}
}

// Request is one submission. ID is empty when creating.
type Request struct {
	ID      string
	Payload payload.Result
}

// Outcome reports what a submission did.
type Outcome struct {
	Kind     api.Kind `json:"kind"`
	ID       string   `json:"id"`
	Key      string   `json:"idempotency_key"`
	Created  bool     `json:"created"`
	Uploaded int      `json:"uploaded"`
	Deleted  int      `json:"deleted"`
}

// Recorder is told about every partial submission so it can be reconciled
// later. Work holds the uploads and deletions that did not happen.
type Recorder interface {
	RecordPartial(ctx context.Context, p Partial, work payload.Result) error
}

// RecorderFunc adapts a function to Recorder.
type RecorderFunc func(ctx context.Context, p Partial, work payload.Result) error

func (f RecorderFunc) RecordPartial(ctx context.Context, p Partial, work payload.Result) error {
	return f(ctx, p, work)
}

type Option func(*Orchestrator)

func WithLogger(logger flow.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = flow.NormalizeLogger(logger)
	}
}

// WithRetries sets how many times a failed upload or delete call is
// retried. Permanent errors are never retried.
func WithRetries(n int) Option {
	return func(o *Orchestrator) {
		if n < 0 {
			n = 0
		}
		o.retries = n
	}
}

func WithRetryStrategy(s runner.RetryStrategy) Option {
	return func(o *Orchestrator) {
		if s != nil {
			o.strategy = s
		}
	}
}

func WithRecorder(r Recorder) Option {
	return func(o *Orchestrator) {
		o.recorder = r
	}
}

// WithKeyFunc replaces the idempotency key generator.
func WithKeyFunc(fn func() string) Option {
	return func(o *Orchestrator) {
		if fn != nil {
			o.newKey = fn
		}
	}
}

// Orchestrator runs submissions against a Target.
type Orchestrator struct {
	target   Target
	logger   flow.Logger
	retries  int
	strategy runner.RetryStrategy
	recorder Recorder
	newKey   func() string
}

func New(target Target, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		target:   target,
		logger:   flow.NopLogger{},
		strategy: runner.NoDelayStrategy{},
		newKey:   uuid.NewString,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	o.logger = flow.WithLoggerFields(o.logger, map[string]any{"kind": string(target.Kind())})
	return o
}

func (o *Orchestrator) Kind() api.Kind { return o.target.Kind() }

// Submit runs every stage with a fresh idempotency key.
func (o *Orchestrator) Submit(ctx context.Context, req Request) (Outcome, error) {
	return o.run(ctx, o.newKey(), req, Stages())
}

// Resume runs the pending stages of a partial submission forward, reusing
// its idempotency key. A pending save updates p.EntityID with work.Body and
// is dropped when work carries no body.
func (o *Orchestrator) Resume(ctx context.Context, p Partial, work payload.Result) (Outcome, error) {
	key := p.Key
	if key == "" {
		key = o.newKey()
	}
	stages := make([]Stage, 0, len(p.Pending))
	for _, s := range p.Pending {
		if s == StageSave && work.Body == nil {
			continue
		}
		stages = append(stages, s)
	}
	return o.run(ctx, key, Request{ID: p.EntityID, Payload: work}, stages)
}

type submission struct {
	req     Request
	out     Outcome
	cause   error
	deleted int
}

func (o *Orchestrator) run(ctx context.Context, key string, req Request, stages []Stage) (Outcome, error) {
	ctx = api.WithIdempotencyKey(ctx, key)
	sub := &submission{
		req: req,
		out: Outcome{Kind: o.target.Kind(), ID: req.ID, Key: key},
	}

	steps := make([]flow.SequenceStep[*submission], 0, len(stages))
	for _, stage := range stages {
		steps = append(steps, flow.SequenceStep[*submission]{
			Name:    string(stage),
			Execute: o.stage(stage),
		})
	}

	err := flow.NewSequence(o.logger, steps...).Execute(ctx, sub)
	if err == nil {
		o.logger.Info("submitted %s id=%s uploaded=%d deleted=%d", sub.out.Kind, sub.out.ID, sub.out.Uploaded, sub.out.Deleted)
		return sub.out, nil
	}

	cause := sub.cause
	if cause == nil {
		if cerr := ctx.Err(); cerr != nil {
			cause = cerr
		} else {
			cause = err
		}
	}

	name, index, _ := flow.FailedStep(err)
	stage := Stage(name)
	if stage == StageSave || sub.out.ID == "" {
		return sub.out, cause
	}

	completed := make([]Stage, 0, index)
	for _, s := range flow.CompletedSteps(err) {
		completed = append(completed, Stage(s))
	}
	p := Partial{
		Kind:      sub.out.Kind,
		EntityID:  sub.out.ID,
		Stage:     stage,
		Completed: completed,
		Pending:   append([]Stage(nil), stages[index:]...),
		Key:       key,
		Cause:     UserMessage(cause),
	}
	o.logger.Error("partial submission id=%s stage=%s: %v", p.EntityID, p.Stage, cause)

	if o.recorder != nil {
		if rerr := o.recorder.RecordPartial(context.WithoutCancel(ctx), p, sub.remaining(p.Pending)); rerr != nil {
			o.logger.Warn("record partial submission %s: %v", p.EntityID, rerr)
		}
	}
	return sub.out, partialError(p, cause)
}

func (o *Orchestrator) stage(stage Stage) func(context.Context, *submission) error {
	var fn func(context.Context, *submission) error
	switch stage {
	case StageSave:
		fn = o.save
	case StageUpload:
		fn = o.upload
	case StageDelete:
		fn = o.delete
	default:
		fn = func(context.Context, *submission) error {
			return errors.New("unknown submission stage "+string(stage), errors.CategoryBadInput)
		}
	}
	return func(ctx context.Context, sub *submission) error {
		if err := fn(ctx, sub); err != nil {
			sub.cause = err
			return err
		}
		return nil
	}
}

func (o *Orchestrator) save(ctx context.Context, sub *submission) error {
	rec, err := o.target.Save(ctx, sub.req.ID, sub.req.Payload.Body)
	if err != nil {
		return err
	}
	id := rec.ID()
	if id == "" {
		id = sub.req.ID
	}
	if id == "" {
		return errors.New("invalid response from server: missing "+string(o.target.Kind())+" id", errors.CategoryExternal).
			WithTextCode(store.ErrCodeMissingID)
	}
	sub.out.ID = id
	sub.out.Created = sub.req.ID == ""
	return nil
}

func (o *Orchestrator) upload(ctx context.Context, sub *submission) error {
	files := sub.req.Payload.Upload
	if len(files) == 0 {
		return nil
	}
	err := o.retry(ctx, "upload", func(ctx context.Context) error {
		return o.target.Upload(ctx, sub.out.ID, files)
	})
	if err != nil {
		return err
	}
	sub.out.Uploaded = len(files)
	return nil
}

// delete removes each media item the payload lists. The assembler only
// lists deletions when editing.
func (o *Orchestrator) delete(ctx context.Context, sub *submission) error {
	for _, item := range sub.req.Payload.Delete[sub.deleted:] {
		err := o.retry(ctx, "delete", func(ctx context.Context) error {
			return o.target.Delete(ctx, sub.out.ID, item)
		})
		if err != nil {
			return err
		}
		sub.deleted++
		sub.out.Deleted++
	}
	return nil
}

func (o *Orchestrator) retry(ctx context.Context, name string, fn func(context.Context) error) error {
	h := runner.NewHandler(
		runner.WithName(string(o.target.Kind())+" "+name),
		runner.WithMaxRetries(o.retries),
		runner.WithRetryStrategy(runner.TransientOnly{Strategy: o.strategy}),
		runner.WithLogger(o.logger),
	)
	return h.Run(ctx, fn)
}

// remaining returns the uploads and deletions the pending stages still owe.
func (s *submission) remaining(pending []Stage) payload.Result {
	var out payload.Result
	for _, stage := range pending {
		switch stage {
		case StageUpload:
			out.Upload = append([]draft.NewMedia(nil), s.req.Payload.Upload...)
		case StageDelete:
			out.Delete = append([]draft.ExistingMedia(nil), s.req.Payload.Delete[s.deleted:]...)
		}
	}
	return out
}
