package wizard

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-wizard/flow"
)

// recoverPanic turns a panic raised by a collaborator into an error stored
// in errp. It must be deferred directly.
func recoverPanic(logger flow.Logger, op string, errp *error) {
	r := recover()
	if r == nil {
		return
	}
	stack := make([]byte, 8096)
	stack = cleanStackTrace(stack[:runtime.Stack(stack, false)])

	logger.Error("recovered from panic in %s: %v\n%s", op, r, stack)

	err := errors.New(fmt.Sprintf("%s panicked: %v", op, r), errors.CategoryInternal).
		WithTextCode(ErrCodePanicRecovered).
		WithMetadata(map[string]any{"operation": op})
	if cause, ok := r.(error); ok {
		err.Source = cause
	}
	*errp = err
}

func cleanStackTrace(stack []byte) []byte {
	lines := strings.Split(string(stack), "\n")

	// drop the frames up to and including the panic() call and its file line
	panicLineIndex := -1
	for i, line := range lines {
		if strings.Contains(line, "panic(") {
			panicLineIndex = i
			break
		}
	}
	if panicLineIndex >= 0 && panicLineIndex+2 < len(lines) {
		lines = lines[panicLineIndex+2:]
	}
	return []byte(strings.Join(lines, "\n"))
}
