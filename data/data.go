// Package data embeds the default wizard step definitions.
package data

import (
	"embed"
	"io/fs"
)

//go:embed wizards
var embeddedFS embed.FS

// StepsFile is the name of the step definition file inside WizardsFS.
const StepsFile = "steps.yaml"

// WizardsFS returns the embedded definitions rooted at `data/wizards`.
func WizardsFS() fs.FS {
	sub, err := fs.Sub(embeddedFS, "wizards")
	if err != nil {
		return embeddedFS
	}
	return sub
}

// Steps returns the raw default step definitions.
func Steps() []byte {
	content, err := fs.ReadFile(WizardsFS(), StepsFile)
	if err != nil {
		return nil
	}
	return content
}
