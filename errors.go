package wizard

import (
	"github.com/goliatone/go-errors"
)

const (
	ErrCodeBusy           = "SESSION_BUSY"
	ErrCodeFieldOutOfStep = "FIELD_OUT_OF_STEP"
	ErrCodeSessionClosed  = "SESSION_CLOSED"
	ErrCodeUnknownWizard  = "UNKNOWN_WIZARD"
	ErrCodeEntityNotFound = "ENTITY_NOT_FOUND"
	ErrCodePanicRecovered = "PANIC_RECOVERED"
)

var (
	// ErrBusy rejects Next, Submit and edits while a submission is pending.
	ErrBusy = errors.New("a submission is already in progress", errors.CategoryConflict).
		WithTextCode(ErrCodeBusy)
	// ErrFieldOutOfStep rejects edits to fields the current step does not
	// own.
	ErrFieldOutOfStep = errors.New("field does not belong to the current step", errors.CategoryBadInput).
				WithTextCode(ErrCodeFieldOutOfStep)
	// ErrSessionClosed rejects work after the session closed or submitted.
	ErrSessionClosed = errors.New("wizard session is closed", errors.CategoryOperation).
				WithTextCode(ErrCodeSessionClosed)
)

func withMeta(base *errors.Error, meta map[string]any) *errors.Error {
	return base.Clone().WithMetadata(meta)
}
