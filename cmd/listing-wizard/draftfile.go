package main

import (
	"os"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-wizard/draft"
	"gopkg.in/yaml.v3"
)

const ErrCodeDraftFile = "DRAFT_FILE_INVALID"

// draftFile is a draft written by hand. Fields uses wire names, and nested
// maps become dotted paths (facilities.lift). YAML and JSON files both
// decode.
//
//	fields:
//	  property_category: Normal
//	  property_type: House
//	media:
//	  - uri: ./photos/front.jpg
//	    mimeType: image/jpeg
//	remove_media:
//	  - https://cdn.example.com/old.jpg
type draftFile struct {
	Fields      map[string]any   `yaml:"fields"`
	Media       []draft.NewMedia `yaml:"media"`
	RemoveMedia []string         `yaml:"remove_media"`
}

func readDraftFile(path string) (draftFile, error) {
	var f draftFile
	raw, err := os.ReadFile(path)
	if err != nil {
		return f, errors.Wrap(err, errors.CategoryBadInput, "read draft "+path).
			WithTextCode(ErrCodeDraftFile)
	}
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return f, errors.Wrap(err, errors.CategoryBadInput, "parse draft "+path).
			WithTextCode(ErrCodeDraftFile)
	}
	f.Fields = flatten("", f.Fields, map[string]any{})
	return f, nil
}

// flatten turns nested maps into dotted wire paths, so facilities can be
// written as a block.
func flatten(prefix string, in, out map[string]any) map[string]any {
	for k, v := range in {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if nested, ok := v.(map[string]any); ok {
			flatten(key, nested, out)
			continue
		}
		out[key] = v
	}
	return out
}
