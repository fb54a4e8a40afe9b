package runner

import "time"

// Option configures a Handler.
type Option func(*Handler)

// WithName labels log lines and errors of the handler.
func WithName(name string) Option {
	return func(h *Handler) {
		if name != "" {
			h.name = name
		}
	}
}

// WithMaxRetries sets how many times a failed call is repeated. Negative
// values mean no retries.
func WithMaxRetries(n int) Option {
	return func(h *Handler) {
		h.maxRetries = max(n, 0)
	}
}

// WithRetryStrategy decides delays and which errors are retried. A nil
// strategy keeps the default.
func WithRetryStrategy(s RetryStrategy) Option {
	return func(h *Handler) {
		if s != nil {
			h.retryStrategy = s
		}
	}
}

// WithTimeout bounds a whole Run, retries and waits included.
func WithTimeout(d time.Duration) Option {
	return func(h *Handler) {
		if d > 0 {
			h.timeout = d
		}
	}
}

// WithDeadline stops Run at t.
func WithDeadline(t time.Time) Option {
	return func(h *Handler) { h.deadline = t }
}

// WithErrorHandler observes each failed attempt that will be retried and the
// final error once retries are spent.
func WithErrorHandler(fn func(error)) Option {
	return func(h *Handler) {
		if fn != nil {
			h.errorHandler = fn
		}
	}
}

func WithLogger(l Logger) Option {
	return func(h *Handler) { h.logger = l }
}
