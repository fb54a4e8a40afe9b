package runner

import (
	"math"
	"time"

	"github.com/goliatone/go-errors"
)

// RetryStrategy encapsulates the delay between retries.
type RetryStrategy interface {
	// SleepDuration returns how long to wait before the next retry attempt.
	// The attempt index starts at 0, incrementing after each failure.
	SleepDuration(attempt int, err error) time.Duration
}

// RetryDecision is the outcome of asking a strategy whether to retry.
type RetryDecision struct {
	ShouldRetry bool
	Delay       time.Duration
	Metadata    map[string]any
}

// RetryDecider is implemented by strategies that can refuse a retry.
type RetryDecider interface {
	DecideRetry(attempt int, err error) RetryDecision
}

// DecideRetry asks s for a decision, falling back to SleepDuration.
func DecideRetry(s RetryStrategy, attempt int, err error) RetryDecision {
	if d, ok := s.(RetryDecider); ok {
		return d.DecideRetry(attempt, err)
	}
	if s == nil {
		return RetryDecision{ShouldRetry: true}
	}
	return RetryDecision{ShouldRetry: true, Delay: s.SleepDuration(attempt, err)}
}

// NoDelayStrategy performs all retries immediately.
type NoDelayStrategy struct{}

func (NoDelayStrategy) SleepDuration(_ int, _ error) time.Duration {
	return 0
}

// ExponentialBackoffStrategy implements a capped backoff.
//
//	WithRetryStrategy(ExponentialBackoffStrategy{
//	    Base:   100 * time.Millisecond,
//	    Factor: 2,
//	    Max:    5 * time.Second,
//	})
type ExponentialBackoffStrategy struct {
	// Base is the starting delay (e.g., 100ms)
	Base time.Duration
	// Factor is multiplied each iteration (e.g., 2 => 100ms, 200ms, 400ms, ...)
	Factor float64
	// Max caps the exponential growth
	Max time.Duration
}

func (e ExponentialBackoffStrategy) SleepDuration(attempt int, _ error) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	delay := float64(e.Base) * math.Pow(e.Factor, float64(attempt))
	if time.Duration(delay) > e.Max && e.Max > 0 {
		return e.Max
	}
	return time.Duration(delay)
}

// TransientOnly wraps a strategy and refuses to retry errors that cannot
// succeed on a second attempt (validation, bad input, auth, not found,
// conflict).
type TransientOnly struct {
	Strategy RetryStrategy
}

func (t TransientOnly) SleepDuration(attempt int, err error) time.Duration {
	if t.Strategy == nil {
		return 0
	}
	return t.Strategy.SleepDuration(attempt, err)
}

func (t TransientOnly) DecideRetry(attempt int, err error) RetryDecision {
	if !IsTransient(err) {
		return RetryDecision{ShouldRetry: false, Metadata: map[string]any{"reason": "permanent"}}
	}
	return RetryDecision{ShouldRetry: true, Delay: t.SleepDuration(attempt, err)}
}

// IsTransient reports whether err may succeed when retried.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	var ge *errors.Error
	if !errors.As(err, &ge) {
		return true
	}
	switch ge.Category {
	case errors.CategoryValidation,
		errors.CategoryBadInput,
		errors.CategoryAuth,
		errors.CategoryAuthz,
		errors.CategoryNotFound,
		errors.CategoryConflict:
		return false
	}
	return true
}
