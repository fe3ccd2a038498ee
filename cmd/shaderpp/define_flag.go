package main

import (
	"strings"

	"github.com/spf13/pflag"

	"shaderpp/internal/preproc"
	"shaderpp/internal/project"
)

// defineListValue collects repeated -D NAME[=VALUE] flags in order.
type defineListValue struct {
	defines []preproc.Define
}

var _ pflag.Value = (*defineListValue)(nil)

func (v *defineListValue) String() string {
	parts := make([]string, len(v.defines))
	for i, d := range v.defines {
		parts[i] = d.String()
	}
	return "[" + strings.Join(parts, ",") + "]"
}

func (v *defineListValue) Set(s string) error {
	d, err := project.ParseDefine(s)
	if err != nil {
		return err
	}
	v.defines = append(v.defines, d)
	return nil
}

func (v *defineListValue) Type() string { return "NAME[=VALUE]" }

// Defines returns a copy of the collected defines.
func (v *defineListValue) Defines() []preproc.Define {
	out := make([]preproc.Define, len(v.defines))
	copy(out, v.defines)
	return out
}
