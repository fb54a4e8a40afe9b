package rest

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-wizard/api"
)

// MetaServerMessage is the metadata key holding the message reported by the
// server, when it sent one.
const MetaServerMessage = api.MetaServerMessage

// statusError maps a non 2xx response to a go-errors error. The message
// prefers the body's "error" field, then "message".
func statusError(req *http.Request, status int, body []byte) error {
	msg := serverMessage(body)
	category := errors.HTTPStatusToCategory(status)
	if status >= 500 {
		category = errors.CategoryExternal
	}
	text := msg
	if text == "" {
		text = http.StatusText(status)
	}
	meta := map[string]any{
		"status": status,
		"method": req.Method,
		"path":   req.URL.Path,
	}
	if msg != "" {
		meta[MetaServerMessage] = msg
	}
	return errors.New(text, category).
		WithCode(status).
		WithTextCode(errors.HTTPStatusToTextCode(status)).
		WithMetadata(meta)
}

func serverMessage(body []byte) string {
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	for _, key := range []string{"error", "message"} {
		switch v := payload[key].(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return s
			}
		case map[string]any:
			if s, ok := v["message"].(string); ok && strings.TrimSpace(s) != "" {
				return strings.TrimSpace(s)
			}
		}
	}
	return ""
}
