package project

import (
	"slices"

	"shaderpp/internal/preproc"
)

// Unit is one top-level shader to preprocess.
type Unit struct {
	Input       string
	Output      string
	Version     string
	Defines     []preproc.Define
	IncludeDirs []string
}

// NewUnit builds a unit the way the command line does: user defines first,
// then the stage marker derived from input.
func NewUnit(input, output, version string, defines []preproc.Define, includeDirs []string) Unit {
	all := make([]preproc.Define, 0, len(defines)+1)
	all = append(all, defines...)
	all = append(all, StageDefines(input)...)
	return Unit{
		Input:       input,
		Output:      output,
		Version:     version,
		Defines:     all,
		IncludeDirs: slices.Clone(includeDirs),
	}
}

// Key identifies the unit configuration in the build cache.
func (u *Unit) Key() Digest {
	parts := make([]string, 0, 4+len(u.Defines)+len(u.IncludeDirs))
	parts = append(parts, "unit", u.Input, u.Output, u.Version)
	for _, d := range u.Defines {
		parts = append(parts, "D", d.Name, d.Value)
	}
	for _, dir := range u.IncludeDirs {
		parts = append(parts, "I", dir)
	}
	return HashStrings(parts...)
}
