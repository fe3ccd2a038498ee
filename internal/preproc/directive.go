package preproc

import "strings"

const (
	includeDirective    = "#include"
	pragmaOnceDirective = "#pragma once"
)

// DirectiveKind classifies one source line.
type DirectiveKind uint8

const (
	// DirectiveNone is an opaque payload line.
	DirectiveNone DirectiveKind = iota
	DirectiveInclude
	DirectivePragmaOnce
)

func (k DirectiveKind) String() string {
	switch k {
	case DirectiveInclude:
		return "include"
	case DirectivePragmaOnce:
		return "pragma once"
	default:
		return "none"
	}
}

// Classify looks at the whitespace-trimmed line. Anything starting with
// #include counts as an include, #pragma once must match exactly.
func Classify(line string) DirectiveKind {
	trimmed := strings.TrimSpace(line)
	switch {
	case strings.HasPrefix(trimmed, includeDirective):
		return DirectiveInclude
	case trimmed == pragmaOnceDirective:
		return DirectivePragmaOnce
	default:
		return DirectiveNone
	}
}

// IncludeTarget returns the text between the first two double quotes of
// line, trimmed. ok is false when there is no closing quote or the name is
// empty.
func IncludeTarget(line string) (name string, ok bool) {
	_, rest, found := strings.Cut(line, `"`)
	if !found {
		return "", false
	}
	name, _, found = strings.Cut(rest, `"`)
	if !found {
		return "", false
	}
	name = strings.TrimSpace(name)
	return name, name != ""
}
