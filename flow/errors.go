package flow

import (
	stderrors "errors"
	"strings"

	apperrors "github.com/goliatone/go-errors"
)

const (
	ErrCodeValidationFailed = "VALIDATION_FAILED"
	ErrCodeStepNotFound     = "STEP_NOT_FOUND"
	ErrCodeStepOutOfRange   = "STEP_OUT_OF_RANGE"
	ErrCodeStepNotSkippable = "STEP_NOT_SKIPPABLE"
	ErrCodeNoSteps          = "NO_STEPS"
	ErrCodeSequenceFailed   = "SEQUENCE_STEP_FAILED"
)

var (
	ErrStepNotFound = apperrors.New("step not found", apperrors.CategoryNotFound).
			WithTextCode(ErrCodeStepNotFound)
	ErrStepOutOfRange = apperrors.New("step index out of range", apperrors.CategoryBadInput).
				WithTextCode(ErrCodeStepOutOfRange)
	ErrStepNotSkippable = apperrors.New("step cannot be skipped", apperrors.CategoryBadInput).
				WithTextCode(ErrCodeStepNotSkippable)
	ErrNoSteps = apperrors.New("wizard has no active steps", apperrors.CategoryBadInput).
			WithTextCode(ErrCodeNoSteps)
)

func cloneError(base *apperrors.Error, message string, metadata map[string]any) *apperrors.Error {
	err := base.Clone()
	if text := strings.TrimSpace(message); text != "" {
		err.Message = text
	}
	if len(metadata) > 0 {
		err = err.WithMetadata(metadata)
	}
	return err
}

// ErrorCode returns the text code of a go-errors error, or "".
func ErrorCode(err error) string {
	var ge *apperrors.Error
	if stderrors.As(err, &ge) {
		return ge.TextCode
	}
	return ""
}

// HasCode reports whether err carries the given text code.
func HasCode(err error, code string) bool {
	return code != "" && ErrorCode(err) == code
}
