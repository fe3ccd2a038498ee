package project

import (
	"errors"
	"fmt"
	"strings"

	"shaderpp/internal/preproc"
)

// ErrInvalidOption marks malformed command-line or manifest options.
var ErrInvalidOption = errors.New("invalid option")

// Stage markers appended for shader stages recognized by file suffix.
const (
	VertexShaderDefine   = "SVE2_VERTEX_SHADER"
	FragmentShaderDefine = "SVE2_FRAGMENT_SHADER"
)

// ParseDefine parses NAME or NAME=VALUE. With more than one '=' the name is
// the text before the first '=' and the value is empty.
func ParseDefine(spec string) (preproc.Define, error) {
	parts := strings.Split(spec, "=")
	name := parts[0]
	if strings.TrimSpace(name) == "" {
		return preproc.Define{}, fmt.Errorf("%w: define %q has no name", ErrInvalidOption, spec)
	}
	if len(parts) == 2 {
		return preproc.Define{Name: name, Value: parts[1]}, nil
	}
	return preproc.Define{Name: name}, nil
}

// ParseDefines parses every entry, keeping order.
func ParseDefines(specs []string) ([]preproc.Define, error) {
	out := make([]preproc.Define, 0, len(specs))
	for _, s := range specs {
		d, err := ParseDefine(s)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

// StageDefines returns the stage marker for an input path, if any.
func StageDefines(inputPath string) []preproc.Define {
	var out []preproc.Define
	if strings.HasSuffix(inputPath, ".vert.glsl") {
		out = append(out, preproc.Define{Name: VertexShaderDefine})
	}
	if strings.HasSuffix(inputPath, ".frag.glsl") {
		out = append(out, preproc.Define{Name: FragmentShaderDefine})
	}
	return out
}
