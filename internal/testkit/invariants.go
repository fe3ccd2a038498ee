// Package testkit holds fixtures and invariant checks shared by package tests.
package testkit

import (
	"fmt"
	"strings"

	"shaderpp/internal/preproc"
	"shaderpp/internal/source"
)

// CheckAssembled runs the output invariants of an assembled shader:
// 1) the first line is exactly "#version <version>\n"
// 2) the next len(defines) lines are the define lines in order
// 3) no directive handled by the preprocessor survives in the body
func CheckAssembled(content, version string, defines []preproc.Define) error {
	lines := source.SplitLines([]byte(content))
	want := 1 + len(defines)
	if len(lines) < want {
		return fmt.Errorf("output has %d lines, need at least %d for the header", len(lines), want)
	}

	// 1) version line
	if got, exp := lines[0], "#version "+version+"\n"; got != exp {
		return fmt.Errorf("line 1 = %q, want %q", got, exp)
	}

	// 2) defines in order
	for i, d := range defines {
		if got := lines[1+i]; got != d.Line() {
			return fmt.Errorf("line %d = %q, want %q", i+2, got, d.Line())
		}
	}

	// 3) body carries no include or pragma once
	for i, line := range lines[want:] {
		if kind := preproc.Classify(line); kind != preproc.DirectiveNone {
			return fmt.Errorf("line %d still holds %s directive: %q", want+i+1, kind, strings.TrimSpace(line))
		}
	}
	return nil
}
