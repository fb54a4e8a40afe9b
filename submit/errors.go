package submit

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-wizard/api"
	"github.com/goliatone/go-wizard/flow"
)

const ErrCodePartialSubmission = "PARTIAL_SUBMISSION"

// Metadata keys carried by a partial submission error.
const (
	MetaEntityID  = "entity_id"
	MetaKind      = "kind"
	MetaStage     = "stage"
	MetaCompleted = "completed"
	MetaPending   = "pending"
	MetaKey       = "idempotency_key"
)

// DefaultUserMessage is shown when an error carries nothing better.
const DefaultUserMessage = "Something went wrong. Please try again."

// Partial describes a submission that saved the entity but failed a later
// stage.
type Partial struct {
	Kind      api.Kind
	EntityID  string
	Stage     Stage
	Completed []Stage
	Pending   []Stage
	Key       string
	Cause     string
}

func partialError(p Partial, cause error) error {
	meta := map[string]any{
		MetaEntityID:  p.EntityID,
		MetaKind:      string(p.Kind),
		MetaStage:     string(p.Stage),
		MetaCompleted: stageNames(p.Completed),
		MetaPending:   stageNames(p.Pending),
		MetaKey:       p.Key,
	}
	category := errors.CategoryExternal
	var ge *errors.Error
	if errors.As(cause, &ge) {
		category = ge.Category
	}
	return errors.Wrap(cause, category, fmt.Sprintf("%s %s saved but %s failed", p.Kind, p.EntityID, p.Stage)).
		WithTextCode(ErrCodePartialSubmission).
		WithMetadata(meta)
}

// AsPartial extracts the partial submission details from err.
func AsPartial(err error) (Partial, bool) {
	var ge *errors.Error
	if !errors.As(err, &ge) || ge.TextCode != ErrCodePartialSubmission {
		return Partial{}, false
	}
	p := Partial{Cause: UserMessage(err)}
	p.EntityID, _ = ge.Metadata[MetaEntityID].(string)
	p.Key, _ = ge.Metadata[MetaKey].(string)
	if kind, ok := ge.Metadata[MetaKind].(string); ok {
		p.Kind = api.Kind(kind)
	}
	if stage, ok := ge.Metadata[MetaStage].(string); ok {
		p.Stage = Stage(stage)
	}
	p.Completed = stagesFrom(ge.Metadata[MetaCompleted])
	p.Pending = stagesFrom(ge.Metadata[MetaPending])
	return p, true
}

// IsPartial reports whether err is a partial submission.
func IsPartial(err error) bool {
	return flow.HasCode(err, ErrCodePartialSubmission)
}

// UserMessage reduces err to the single string shown to the user. The
// server's own message wins, then the first field error, then the error
// message itself.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var ge *errors.Error
	if errors.As(err, &ge) {
		if msg, ok := ge.Metadata[api.MetaServerMessage].(string); ok && strings.TrimSpace(msg) != "" {
			return msg
		}
		if len(ge.ValidationErrors) > 0 && ge.ValidationErrors[0].Message != "" {
			return ge.ValidationErrors[0].Message
		}
		if strings.TrimSpace(ge.Message) != "" {
			return ge.Message
		}
	}
	if msg := strings.TrimSpace(err.Error()); msg != "" {
		return msg
	}
	return DefaultUserMessage
}

func stageNames(stages []Stage) []string {
	out := make([]string, len(stages))
	for i, s := range stages {
		out[i] = string(s)
	}
	return out
}

func stagesFrom(v any) []Stage {
	switch list := v.(type) {
	case []string:
		out := make([]Stage, len(list))
		for i, s := range list {
			out[i] = Stage(s)
		}
		return out
	case []Stage:
		return append([]Stage(nil), list...)
	}
	return nil
}
