package main

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-wizard/draft"
	"github.com/goliatone/go-wizard/submit"
)

type StepsCmd struct {
	Wizard    string `arg:"" enum:"property,apartment" help:"Wizard to list (property, apartment)."`
	Inherited bool   `help:"Show the steps of a property that inherits from a parent."`
}

func (c *StepsCmd) Run(a *app) error {
	kind, err := parseKind(c.Wizard)
	if err != nil {
		return err
	}
	steps, ok := a.steps.Wizard(string(kind))
	if !ok {
		return errors.New("step set has no "+string(kind)+" wizard", errors.CategoryBadInput).
			WithTextCode(ErrCodeUnknownWizard)
	}
	for i, step := range steps.Active(c.Inherited) {
		flags := ""
		if step.Skippable {
			flags = " (skippable)"
		}
		fmt.Fprintf(a.out, "%d. %s: %s%s\n", i+1, step.ID, step.Title, flags)
		if len(step.Fields) > 0 {
			fmt.Fprintf(a.out, "   fields: %s\n", strings.Join(step.Fields, ", "))
		}
	}
	return nil
}

type ValidateCmd struct {
	Wizard string `arg:"" enum:"property,apartment" help:"Wizard the draft belongs to."`
	File   string `arg:"" type:"existingfile" help:"Draft file (YAML or JSON)."`
}

func (c *ValidateCmd) Run(a *app) error {
	kind, err := parseKind(c.Wizard)
	if err != nil {
		return err
	}
	file, err := readDraftFile(c.File)
	if err != nil {
		return err
	}
	s, err := a.openSession(kind, file, "", nil)
	if err != nil {
		return err
	}

	res := s.Validate()
	if res.Valid() {
		fmt.Fprintln(a.out, "valid")
		return nil
	}
	for _, step := range s.Steps() {
		var lines []string
		for _, field := range res.Fields() {
			if step.HasField(field) {
				lines = append(lines, fmt.Sprintf("  %s: %s", field, res.Errors[field]))
			}
		}
		if len(lines) == 0 {
			continue
		}
		fmt.Fprintf(a.out, "%s\n%s\n", step.ID, strings.Join(lines, "\n"))
	}
	return res.Err()
}

type PayloadCmd struct {
	Wizard string `arg:"" enum:"property,apartment" help:"Wizard the draft belongs to."`
	File   string `arg:"" type:"existingfile" help:"Draft file (YAML or JSON)."`
}

type payloadView struct {
	Body   map[string]any        `json:"body"`
	Upload []draft.NewMedia      `json:"upload"`
	Delete []draft.ExistingMedia `json:"delete"`
}

func (c *PayloadCmd) Run(a *app) error {
	kind, err := parseKind(c.Wizard)
	if err != nil {
		return err
	}
	file, err := readDraftFile(c.File)
	if err != nil {
		return err
	}
	s, err := a.openSession(kind, file, "", nil)
	if err != nil {
		return err
	}

	p := s.Payload()
	view := payloadView{Body: p.Body, Upload: p.Upload, Delete: p.Delete}
	if view.Upload == nil {
		view.Upload = []draft.NewMedia{}
	}
	if view.Delete == nil {
		view.Delete = []draft.ExistingMedia{}
	}
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(view)
}

type SubmitCmd struct {
	Wizard string `arg:"" enum:"property,apartment" help:"Wizard the draft belongs to."`
	File   string `arg:"" type:"existingfile" help:"Draft file (YAML or JSON)."`
	ID     string `help:"Edit this entity instead of creating a new one."`
}

func (c *SubmitCmd) Run(a *app) error {
	kind, err := parseKind(c.Wizard)
	if err != nil {
		return err
	}
	file, err := readDraftFile(c.File)
	if err != nil {
		return err
	}
	ledger, err := a.openLedger()
	if err != nil {
		return err
	}
	s, err := a.openSession(kind, file, c.ID, ledger)
	if err != nil {
		return err
	}

	out, err := s.Submit(a.ctx)
	if err != nil {
		if p, ok := submit.AsPartial(err); ok {
			fmt.Fprintf(a.out, "%s %s saved, %s failed: %s\n", p.Kind, p.EntityID, p.Stage, submit.UserMessage(err))
			fmt.Fprintf(a.out, "pending stages %v recorded; run `reconcile retry` to finish\n", p.Pending)
			return err
		}
		fmt.Fprintln(a.out, submit.UserMessage(err))
		return err
	}

	verb := "updated"
	if out.Created {
		verb = "created"
	}
	fmt.Fprintf(a.out, "%s %s %s (uploaded %d, deleted %d)\n", out.Kind, out.ID, verb, out.Uploaded, out.Deleted)
	return nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
