package data

import (
	"io/fs"
	"testing"
)

func TestWizardsFSIncludesSteps(t *testing.T) {
	content, err := fs.ReadFile(WizardsFS(), StepsFile)
	if err != nil {
		t.Fatalf("read %s from embedded fs: %v", StepsFile, err)
	}
	if len(content) == 0 {
		t.Fatalf("embedded %s is empty", StepsFile)
	}
}

func TestWizardsFSIsSubRooted(t *testing.T) {
	if _, err := fs.ReadFile(WizardsFS(), "wizards/"+StepsFile); err == nil {
		t.Fatal("wizards fs should be rooted at data/wizards (unexpected nested wizards/ path)")
	}
}

func TestStepsMatchesEmbeddedFile(t *testing.T) {
	if len(Steps()) == 0 {
		t.Fatal("Steps returned no content")
	}
}
