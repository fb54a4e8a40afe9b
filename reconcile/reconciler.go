package reconcile

import (
	"context"
	"fmt"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-wizard/api"
	"github.com/goliatone/go-wizard/flow"
	"github.com/goliatone/go-wizard/payload"
	"github.com/goliatone/go-wizard/submit"
)

const (
	ErrCodeEntryClosed = "LEDGER_ENTRY_CLOSED"
	ErrCodeNoResumer   = "NO_RESUMER_FOR_KIND"
)

// Resumer runs the pending stages of a partial submission forward.
// *submit.Orchestrator implements it.
type Resumer interface {
	Resume(ctx context.Context, p submit.Partial, work payload.Result) (submit.Outcome, error)
}

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithResumer registers the resumer used for entries of kind.
func WithResumer(kind api.Kind, r Resumer) Option {
	return func(rc *Reconciler) {
		rc.resumers[kind] = r
	}
}

// WithMaxAttempts marks an entry failed once it has been retried n times.
// Zero retries forever.
func WithMaxAttempts(n int) Option {
	return func(rc *Reconciler) {
		if n < 0 {
			n = 0
		}
		rc.maxAttempts = n
	}
}

func WithLogger(logger flow.Logger) Option {
	return func(rc *Reconciler) {
		rc.logger = logger
	}
}

// Reconciler retries ledger entries forward. It never deletes the saved
// entity.
//
// Resumers should record into the same ledger, so a retry that fails again
// updates the entry with the work it still owes.
type Reconciler struct {
	ledger      *Ledger
	resumers    map[api.Kind]Resumer
	maxAttempts int
	logger      flow.Logger
}

// Report summarises a sweep.
type Report struct {
	Attempted int
	Resolved  []string
	Failed    map[string]string
	Skipped   []string
}

func NewReconciler(ledger *Ledger, opts ...Option) *Reconciler {
	rc := &Reconciler{
		ledger:   ledger,
		resumers: make(map[api.Kind]Resumer),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(rc)
		}
	}
	rc.logger = flow.WithLoggerFields(flow.NormalizeLogger(rc.logger), map[string]any{"component": "reconcile"})
	return rc
}

// Ledger returns the ledger the reconciler works on.
func (rc *Reconciler) Ledger() *Ledger { return rc.ledger }

// Retry resumes one pending entry. The returned entry reflects the
// attempt, whether it resolved or not.
func (rc *Reconciler) Retry(ctx context.Context, id string) (Entry, error) {
	entry, ok := rc.ledger.Get(id)
	if !ok {
		return Entry{}, entryNotFound(id)
	}
	if entry.Status != StatusPending {
		return entry, errors.New(fmt.Sprintf("ledger entry %s is %s", id, entry.Status), errors.CategoryConflict).
			WithTextCode(ErrCodeEntryClosed).
			WithMetadata(map[string]any{"entry_id": id, "status": string(entry.Status)})
	}
	res, ok := rc.resumers[entry.Kind]
	if !ok || res == nil {
		return entry, errors.New(fmt.Sprintf("no resumer for %s entries", entry.Kind), errors.CategoryBadInput).
			WithTextCode(ErrCodeNoResumer).
			WithMetadata(map[string]any{"entry_id": id, "kind": string(entry.Kind)})
	}

	rc.logger.Info("resuming %s %s stages=%v attempt=%d", entry.Kind, entry.EntityID, entry.Pending, entry.Attempts+1)
	out, runErr := res.Resume(ctx, entry.Partial(), entry.Work())

	updated, err := rc.ledger.Update(id, func(e *Entry) {
		e.Attempts++
		if runErr == nil {
			e.Status = StatusResolved
			e.Pending = nil
			e.Upload = nil
			e.Delete = nil
			e.LastError = ""
			return
		}
		e.LastError = submit.UserMessage(runErr)
		if p, ok := submit.AsPartial(runErr); ok {
			e.Stage = p.Stage
			e.Pending = p.Pending
		}
		if rc.maxAttempts > 0 && e.Attempts >= rc.maxAttempts {
			e.Status = StatusFailed
		}
	})
	if runErr != nil {
		rc.logger.Warn("resume %s %s failed: %v", entry.Kind, entry.EntityID, runErr)
		return updated, runErr
	}
	if err != nil {
		return updated, err
	}
	rc.logger.Info("resolved %s %s uploaded=%d deleted=%d", out.Kind, out.ID, out.Uploaded, out.Deleted)
	return updated, nil
}

// Sweep retries every pending entry once. Entry failures land in the
// report. The error is non-nil only when ctx ends.
func (rc *Reconciler) Sweep(ctx context.Context) (Report, error) {
	report := Report{Failed: map[string]string{}}
	for _, entry := range rc.ledger.Entries(StatusPending) {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if _, ok := rc.resumers[entry.Kind]; !ok {
			report.Skipped = append(report.Skipped, entry.ID)
			continue
		}
		report.Attempted++
		if _, err := rc.Retry(ctx, entry.ID); err != nil {
			report.Failed[entry.ID] = submit.UserMessage(err)
			continue
		}
		report.Resolved = append(report.Resolved, entry.ID)
	}
	rc.logger.Info("sweep attempted=%d resolved=%d failed=%d skipped=%d",
		report.Attempted, len(report.Resolved), len(report.Failed), len(report.Skipped))
	return report, nil
}

// Watch schedules Sweep on a cron expression.
func (rc *Reconciler) Watch(s *Scheduler, expr string) (Handle, error) {
	return s.ScheduleCron(JobConfig{Name: "reconcile sweep", Expression: expr}, func(ctx context.Context) error {
		_, err := rc.Sweep(ctx)
		return err
	})
}
