package api

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Record is a loosely typed entity as returned by the server.
type Record map[string]any

// ID returns the first non empty id found under id, property_id or
// apartment_id, looking into a "data" envelope when present.
func (r Record) ID() string {
	for _, key := range []string{"id", "property_id", "apartment_id"} {
		if s := scalarString(r[key]); s != "" && s != "0" {
			return s
		}
	}
	if nested, ok := r["data"].(map[string]any); ok {
		return Record(nested).ID()
	}
	return ""
}

// Place is one entry of the location hierarchy.
type Place struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// UnmarshalJSON accepts numeric or string ids.
func (p *Place) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID   json.RawMessage `json:"id"`
		Name string          `json:"name"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	p.Name = raw.Name
	p.ID = strings.Trim(string(bytes.TrimSpace(raw.ID)), `"`)
	if p.ID == "null" {
		p.ID = ""
	}
	return nil
}

func scalarString(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case json.Number:
		return t.String()
	}
	return ""
}
