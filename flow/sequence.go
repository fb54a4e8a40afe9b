package flow

import (
	"context"
	"fmt"

	"github.com/goliatone/go-errors"
)

// Sequence runs named steps in order and stops at the first failure. There
// is no compensation: steps that already ran stay applied.
type Sequence[T any] struct {
	steps  []SequenceStep[T]
	logger Logger
}

type SequenceStep[T any] struct {
	Name    string
	Execute func(context.Context, T) error
}

func NewSequence[T any](logger Logger, steps ...SequenceStep[T]) *Sequence[T] {
	return &Sequence[T]{
		steps:  steps,
		logger: NormalizeLogger(logger),
	}
}

func (s *Sequence[T]) Execute(ctx context.Context, msg T) error {
	completed := make([]string, 0, len(s.steps))
	for i, step := range s.steps {
		if step.Execute == nil {
			continue
		}
		if err := ctx.Err(); err != nil {
			return s.failure(err, i, step.Name, completed)
		}
		s.logger.Trace("sequence step %d (%s) started", i, step.Name)
		if err := step.Execute(ctx, msg); err != nil {
			s.logger.Warn("sequence step %d (%s) failed: %v", i, step.Name, err)
			return s.failure(err, i, step.Name, completed)
		}
		completed = append(completed, step.Name)
	}
	return nil
}

func (s *Sequence[T]) failure(err error, index int, name string, completed []string) error {
	meta := map[string]any{
		"step_index": index,
		"step_name":  name,
		"completed":  append([]string(nil), completed...),
	}
	if code := ErrorCode(err); code != "" {
		meta["cause_code"] = code
	}
	category := errors.CategoryHandler
	var ge *errors.Error
	if errors.As(err, &ge) {
		category = ge.Category
	}
	return errors.Wrap(err, category, fmt.Sprintf("sequence failed at step %d (%s)", index, name)).
		WithTextCode(ErrCodeSequenceFailed).
		WithMetadata(meta)
}

// FailedStep reports the step name and index recorded on a Sequence failure.
func FailedStep(err error) (string, int, bool) {
	var ge *errors.Error
	if !errors.As(err, &ge) || ge.TextCode != ErrCodeSequenceFailed {
		return "", 0, false
	}
	name, _ := ge.Metadata["step_name"].(string)
	index, _ := ge.Metadata["step_index"].(int)
	return name, index, true
}

// CompletedSteps returns the names of the steps that ran before a failure.
func CompletedSteps(err error) []string {
	var ge *errors.Error
	if !errors.As(err, &ge) || ge.TextCode != ErrCodeSequenceFailed {
		return nil
	}
	done, _ := ge.Metadata["completed"].([]string)
	return done
}
