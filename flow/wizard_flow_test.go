package flow

import (
	"context"
	"errors"
	"strings"
	"testing"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	goerrors "github.com/goliatone/go-errors"
)

type testDraft struct {
	Name     string
	Email    string
	Lat      string
	Accepted bool
}

type mapSource map[StepID]Schema[*testDraft]

func (m mapSource) Lookup(id StepID) (Schema[*testDraft], bool) {
	s, ok := m[id]
	return s, ok
}

func testSteps() Steps {
	return Steps{
		{ID: "profile", Title: "Profile", Fields: []string{"name", "email"}},
		{ID: "geo", Title: "Geo", Fields: []string{"lat"}, Skippable: true, OmitWhenInherited: true},
		{ID: "terms", Title: "Terms", Fields: []string{"accepted"}},
		{ID: "review", Title: "Review"},
	}
}

func testSource() mapSource {
	return mapSource{
		"profile": SchemaFunc[*testDraft](func(d *testDraft) error {
			return validation.Errors{
				"name":  validation.Validate(d.Name, validation.Required.Error("Name is required")),
				"email": validation.Validate(d.Email, validation.Required.Error("Email is required")),
			}.Filter()
		}),
		"geo": SchemaFunc[*testDraft](func(d *testDraft) error {
			return validation.Errors{
				"lat": validation.Validate(d.Lat, validation.Required),
			}.Filter()
		}),
		"terms": SchemaFunc[*testDraft](func(d *testDraft) error {
			if !d.Accepted {
				return goerrors.NewValidation("terms", goerrors.FieldError{Field: "accepted", Message: "Must accept"})
			}
			return nil
		}),
	}
}

func newTestNavigator(t *testing.T) *Navigator[*testDraft] {
	t.Helper()
	nav, err := NewNavigator(testSteps(), NewValidator[*testDraft](testSource()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return nav
}

func TestStepsActiveDropsInheritedSteps(t *testing.T) {
	active := testSteps().Active(true)
	if len(active) != 3 {
		t.Fatalf("expected 3 active steps, got %d", len(active))
	}
	if active.Index("geo") != -1 {
		t.Fatalf("expected geo to be dropped")
	}
	if active.Index("terms") != 1 {
		t.Fatalf("expected terms to move to index 1, got %d", active.Index("terms"))
	}
	if len(testSteps().Active(false)) != 4 {
		t.Fatalf("expected all steps when not inherited")
	}
}

func TestStepHasFieldMatchesPrefix(t *testing.T) {
	step := Step{ID: "facilities", Fields: []string{"facilities"}}
	if !step.HasField("facilities.lift") {
		t.Fatalf("expected nested field to match")
	}
	if step.HasField("facilitiesx") {
		t.Fatalf("expected unrelated field not to match")
	}
}

func TestSortFieldsFollowsStepOrder(t *testing.T) {
	got := testSteps().SortFields([]string{"zeta", "accepted", "email", "lat", "name", "alpha"})
	want := []string{"name", "email", "lat", "accepted", "alpha", "zeta"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestParseStepSet(t *testing.T) {
	raw := []byte(`
version: 1
wizards:
  - id: demo
    steps:
      - id: one
        title: One
        fields: [a, b]
      - id: two
        title: Two
        skippable: true
`)
	set, err := ParseStepSet(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	steps, ok := set.Wizard("demo")
	if !ok || len(steps) != 2 {
		t.Fatalf("expected demo wizard with 2 steps, got %v", steps)
	}
	if !steps[1].Skippable {
		t.Fatalf("expected skippable flag")
	}
}

func TestParseStepSetRejectsDuplicateSteps(t *testing.T) {
	raw := []byte(`
wizards:
  - id: demo
    steps:
      - id: one
      - id: one
`)
	_, err := ParseStepSet(raw)
	if err == nil {
		t.Fatalf("expected error")
	}
	if ErrorCode(err) != "STEP_SET_INVALID" {
		t.Fatalf("unexpected code %q", ErrorCode(err))
	}
}

func TestValidatorCollectsFieldErrors(t *testing.T) {
	v := NewValidator[*testDraft](testSource())
	res := v.Validate("profile", &testDraft{})
	if res.Valid() {
		t.Fatalf("expected invalid result")
	}
	if res.Errors["name"] != "Name is required" {
		t.Fatalf("unexpected name error %q", res.Errors["name"])
	}
	if got := strings.Join(res.Fields(), ","); got != "email,name" {
		t.Fatalf("unexpected fields %s", got)
	}

	res = v.Validate("terms", &testDraft{})
	if res.Errors["accepted"] != "Must accept" {
		t.Fatalf("expected go-errors field error, got %v", res.Errors)
	}

	if !v.Validate("review", &testDraft{}).Valid() {
		t.Fatalf("steps without schema must be valid")
	}
}

func TestFieldErrorsFallsBackToFormKey(t *testing.T) {
	errs := FieldErrors(errors.New("boom"))
	if errs[FormField] != "boom" {
		t.Fatalf("expected form error, got %v", errs)
	}
	if len(FieldErrors(nil)) != 0 {
		t.Fatalf("expected no errors for nil")
	}
}

func TestResultErrCarriesValidationErrors(t *testing.T) {
	res := Result{Errors: map[string]string{"name": "Name is required"}}
	err := res.Err()
	if !goerrors.IsValidation(err) {
		t.Fatalf("expected validation category, got %v", err)
	}
	fields, ok := goerrors.GetValidationErrors(err)
	if !ok || len(fields) != 1 || fields[0].Field != "name" {
		t.Fatalf("unexpected field errors %v", fields)
	}
}

func TestAdvanceBlocksOnFailureAndMarksTouched(t *testing.T) {
	nav := newTestNavigator(t)
	res, moved := nav.Advance(&testDraft{Name: "x"})
	if moved {
		t.Fatalf("advance must not move on failure")
	}
	if nav.Index() != 0 {
		t.Fatalf("index changed to %d", nav.Index())
	}
	if res.Valid() {
		t.Fatalf("expected failure result")
	}
	if !nav.Touched().Has("email") {
		t.Fatalf("expected email touched")
	}
	if nav.Touched().Has("name") {
		t.Fatalf("name passed and must not be touched")
	}
	if nav.Errors()["email"] == "" {
		t.Fatalf("expected displayed email error")
	}
}

func TestAdvanceMovesOnSuccessAndStopsAtLast(t *testing.T) {
	nav := newTestNavigator(t)
	d := &testDraft{Name: "x", Email: "e", Lat: "1", Accepted: true}
	for i := 1; i < nav.Len(); i++ {
		if _, moved := nav.Advance(d); !moved {
			t.Fatalf("expected move at %d", i)
		}
		if nav.Index() != i {
			t.Fatalf("expected index %d, got %d", i, nav.Index())
		}
	}
	if !nav.IsLast() {
		t.Fatalf("expected last step")
	}
	if _, moved := nav.Advance(d); moved {
		t.Fatalf("advance on last step must be a no-op")
	}
	if nav.Index() != nav.Len()-1 {
		t.Fatalf("index moved past last step")
	}
}

func TestRetreatIgnoresValidation(t *testing.T) {
	nav := newTestNavigator(t)
	if nav.Retreat() {
		t.Fatalf("retreat on first step must fail")
	}
	if err := nav.JumpTo(2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !nav.Retreat() || nav.Index() != 1 {
		t.Fatalf("expected retreat to index 1, got %d", nav.Index())
	}
	if !nav.Retreat() || nav.Index() != 0 {
		t.Fatalf("expected retreat to index 0, got %d", nav.Index())
	}
}

func TestJumpToValidatesRange(t *testing.T) {
	nav := newTestNavigator(t)
	err := nav.JumpTo(10)
	if !HasCode(err, ErrCodeStepOutOfRange) {
		t.Fatalf("expected out of range, got %v", err)
	}
	err = nav.JumpToStep("missing")
	if !HasCode(err, ErrCodeStepNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := nav.JumpToStep("terms"); err != nil || nav.Current().ID != "terms" {
		t.Fatalf("expected jump to terms, got %v", err)
	}
}

func TestSkipOnlySkippableSteps(t *testing.T) {
	nav := newTestNavigator(t)
	if _, err := nav.Skip(); !HasCode(err, ErrCodeStepNotSkippable) {
		t.Fatalf("expected not skippable error, got %v", err)
	}
	_ = nav.JumpToStep("geo")
	moved, err := nav.Skip()
	if err != nil || !moved {
		t.Fatalf("expected skip, got %v", err)
	}
	if nav.Current().ID != "terms" {
		t.Fatalf("expected terms after skip, got %s", nav.Current().ID)
	}
}

func TestProgressIsDerived(t *testing.T) {
	nav := newTestNavigator(t)
	if nav.Progress() != 25 {
		t.Fatalf("expected 25, got %v", nav.Progress())
	}
	_ = nav.JumpTo(3)
	if nav.Progress() != 100 {
		t.Fatalf("expected 100, got %v", nav.Progress())
	}
}

func TestRevalidateClearsPassingField(t *testing.T) {
	nav := newTestNavigator(t)
	d := &testDraft{}
	nav.Advance(d)
	d.Name = "x"
	nav.Revalidate(d, "name")
	errs := nav.Errors()
	if _, ok := errs["name"]; ok {
		t.Fatalf("expected name error cleared")
	}
	if errs["email"] == "" {
		t.Fatalf("expected email error kept")
	}
}

func TestValidateAllKeepsIndex(t *testing.T) {
	nav := newTestNavigator(t)
	_ = nav.JumpTo(3)
	res := nav.ValidateAll(&testDraft{Name: "x", Email: "y", Lat: "1"})
	if nav.Index() != 3 {
		t.Fatalf("validate all must not move")
	}
	if res.Errors["accepted"] == "" {
		t.Fatalf("expected accepted error, got %v", res.Errors)
	}
}

func TestNewNavigatorRequiresSteps(t *testing.T) {
	_, err := NewNavigator[*testDraft](nil, nil)
	if !HasCode(err, ErrCodeNoSteps) {
		t.Fatalf("expected no steps error, got %v", err)
	}
}

func TestSetStepsFallsBackAndKeepsDisplayState(t *testing.T) {
	nav := newTestNavigator(t)
	if err := nav.JumpToStep("geo"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	nav.ValidateAll(&testDraft{})

	kept, err := nav.SetSteps(testSteps().Active(true))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if kept || nav.Current().ID != "profile" {
		t.Fatalf("expected fallback to profile, got %s kept=%t", nav.Current().ID, kept)
	}
	errs := nav.Errors()
	if _, ok := errs["lat"]; ok {
		t.Fatalf("expected lat error to go with its step: %v", errs)
	}
	if errs["name"] != "Name is required" || errs["accepted"] != "Must accept" {
		t.Fatalf("expected remaining errors to carry over: %v", errs)
	}
	if !nav.Touched().Has("name") {
		t.Fatalf("expected touched set to carry over")
	}

	if err := nav.JumpToStep("terms"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	kept, err = nav.SetSteps(testSteps())
	if err != nil || !kept || nav.Current().ID != "terms" {
		t.Fatalf("expected to stay on terms, got %s kept=%t err=%v", nav.Current().ID, kept, err)
	}

	if _, err := nav.SetSteps(nil); !HasCode(err, ErrCodeNoSteps) {
		t.Fatalf("expected no steps error, got %v", err)
	}
	if nav.Len() != 4 {
		t.Fatalf("expected steps unchanged after a rejected swap, got %d", nav.Len())
	}
}

func TestSequenceStopsAtFirstFailure(t *testing.T) {
	var ran []string
	seq := NewSequence[*testDraft](nil,
		SequenceStep[*testDraft]{Name: "one", Execute: func(context.Context, *testDraft) error {
			ran = append(ran, "one")
			return nil
		}},
		SequenceStep[*testDraft]{Name: "two", Execute: func(context.Context, *testDraft) error {
			ran = append(ran, "two")
			return goerrors.New("upstream", goerrors.CategoryExternal).WithTextCode("HTTP_502")
		}},
		SequenceStep[*testDraft]{Name: "three", Execute: func(context.Context, *testDraft) error {
			ran = append(ran, "three")
			return nil
		}},
	)
	err := seq.Execute(context.Background(), &testDraft{})
	if err == nil {
		t.Fatalf("expected error")
	}
	if strings.Join(ran, ",") != "one,two" {
		t.Fatalf("unexpected steps ran: %v", ran)
	}
	name, index, ok := FailedStep(err)
	if !ok || name != "two" || index != 1 {
		t.Fatalf("unexpected failed step %s %d %v", name, index, ok)
	}
	if got := CompletedSteps(err); len(got) != 1 || got[0] != "one" {
		t.Fatalf("unexpected completed steps %v", got)
	}
	if !goerrors.IsCategory(err, goerrors.CategoryExternal) {
		t.Fatalf("expected original category to be kept, got %v", err)
	}
}

func TestSequenceHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	called := false
	seq := NewSequence[*testDraft](nil, SequenceStep[*testDraft]{Name: "one", Execute: func(context.Context, *testDraft) error {
		called = true
		return nil
	}})
	if err := seq.Execute(ctx, &testDraft{}); err == nil {
		t.Fatalf("expected context error")
	}
	if called {
		t.Fatalf("step must not run after cancel")
	}
}
