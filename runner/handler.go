package runner

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/goliatone/go-errors"
)

type Logger interface {
	Info(msg string, args ...any)
	Error(msg string, args ...any)
}

const ErrCodeRetriesExhausted = "RETRIES_EXHAUSTED"

// Handler runs a function with retries, backoff and an optional timeout.
type Handler struct {
	mu sync.Mutex

	name          string
	logger        Logger
	errorHandler  func(error)
	retryStrategy RetryStrategy

	runs           int
	successfulRuns int

	maxRetries int
	timeout    time.Duration
	deadline   time.Time
}

// NewHandler constructs a Handler, applying defaults if unset. The default
// is a single attempt.
func NewHandler(opts ...Option) *Handler {
	h := &Handler{
		name:          "runner",
		errorHandler:  func(error) {},
		retryStrategy: NoDelayStrategy{},
	}
	for _, o := range opts {
		if o != nil {
			o(h)
		}
	}
	return h
}

// Run calls fn until it succeeds, the retries are spent, the strategy
// refuses, or ctx ends. It returns the last error.
func (h *Handler) Run(ctx context.Context, fn func(context.Context) error) error {
	h.mu.Lock()
	maxRetries := h.maxRetries
	strategy := h.retryStrategy
	h.mu.Unlock()

	ctx, cancel := h.contextWithSettings(ctx)
	defer cancel()

	var err error
	attempts := 0
	for attempt := 0; attempt <= maxRetries; attempt++ {
		attempts++
		err = fn(ctx)
		if err == nil {
			break
		}
		if attempt == maxRetries {
			break
		}

		decision := DecideRetry(strategy, attempt, err)
		if !decision.ShouldRetry {
			break
		}
		h.handleError(errors.Wrap(err, errors.CategoryOperation,
			fmt.Sprintf("%s failed, attempt %d of %d", h.name, attempt+1, maxRetries+1)))
		h.logInfo("%s retrying in %s", h.name, decision.Delay)

		if werr := wait(ctx, decision.Delay); werr != nil {
			err = werr
			break
		}
	}

	h.mu.Lock()
	h.runs++
	if err == nil {
		h.successfulRuns++
	}
	h.mu.Unlock()

	if err == nil {
		return nil
	}
	if attempts == 1 {
		return err
	}
	wrapped := errors.Wrap(err, errors.CategoryOperation,
		fmt.Sprintf("%s failed after %d attempts", h.name, attempts))
	if wrapped.TextCode == "" {
		wrapped = wrapped.WithTextCode(ErrCodeRetriesExhausted)
	}
	wrapped = wrapped.WithMetadata(map[string]any{"attempts": attempts})
	h.handleError(wrapped)
	h.logError("%s failed after %d attempts: %v", h.name, attempts, err)
	return wrapped
}

// Stats returns the number of runs and successful runs.
func (h *Handler) Stats() (runs, successful int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.runs, h.successfulRuns
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (h *Handler) handleError(err error) {
	h.errorHandler(err)
}

func (h *Handler) logInfo(format string, args ...any) {
	if h.logger != nil {
		h.logger.Info(format, args...)
	}
}

func (h *Handler) logError(format string, args ...any) {
	if h.logger != nil {
		h.logger.Error(format, args...)
	}
}

func (h *Handler) contextWithSettings(parent context.Context) (context.Context, context.CancelFunc) {
	switch {
	case h.timeout != 0 && !h.deadline.IsZero():
		ctx, cancelTimeout := context.WithTimeout(parent, h.timeout)
		ctxDeadline, cancelDeadline := context.WithDeadline(ctx, h.deadline)
		return ctxDeadline, func() {
			cancelDeadline()
			cancelTimeout()
		}
	case h.timeout != 0:
		return context.WithTimeout(parent, h.timeout)
	case !h.deadline.IsZero():
		return context.WithDeadline(parent, h.deadline)
	default:
		return parent, func() {}
	}
}
