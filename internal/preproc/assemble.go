package preproc

import (
	"strings"

	"shaderpp/internal/diag"
)

// Define is one #define emitted ahead of the body.
type Define struct {
	Name  string
	Value string
}

// Line renders the define; the space is kept even for an empty value.
func (d Define) Line() string {
	return "#define " + d.Name + " " + d.Value + "\n"
}

func (d Define) String() string {
	if d.Value == "" {
		return d.Name
	}
	return d.Name + "=" + d.Value
}

// Assemble returns the version line, one line per define in order, then
// body unchanged.
func Assemble(version string, defines []Define, body []string) ([]string, error) {
	if strings.TrimSpace(version) == "" {
		return nil, &Error{Code: diag.PPMissingVersion, Kind: ErrMissingVersion}
	}
	out := make([]string, 0, 1+len(defines)+len(body))
	out = append(out, "#version "+version+"\n")
	for _, d := range defines {
		out = append(out, d.Line())
	}
	return append(out, body...), nil
}

// Join concatenates lines into the bytes written to disk.
func Join(lines []string) []byte {
	n := 0
	for _, l := range lines {
		n += len(l)
	}
	buf := make([]byte, 0, n)
	for _, l := range lines {
		buf = append(buf, l...)
	}
	return buf
}
