// Package diagfmt renders diagnostics for terminals and tools.
package diagfmt

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"shaderpp/internal/diag"
)

// Pretty форматирует диагностики в человекочитаемый вид:
//
//	<path>: <SEV> <CODE>: <Message>
//	  note: <path>: <msg>
//
// Ожидается bag.Sort() заранее, если нужен стабильный порядок.
func Pretty(w io.Writer, bag *diag.Bag, opts PrettyOpts) error {
	if bag == nil {
		return nil
	}
	p := newPalette(opts.Color)
	for _, d := range bag.Items() {
		if d.Severity == diag.SevInfo && !opts.ShowInfo {
			continue
		}
		if err := prettyOne(w, &d, opts, p); err != nil {
			return err
		}
	}
	return nil
}

// PrettyDiagnostic renders one diagnostic.
func PrettyDiagnostic(w io.Writer, d *diag.Diagnostic, opts PrettyOpts) error {
	return prettyOne(w, d, opts, newPalette(opts.Color))
}

func prettyOne(w io.Writer, d *diag.Diagnostic, opts PrettyOpts, p palette) error {
	prefix := ""
	if d.Path != "" {
		prefix = p.path.Sprint(formatPath(d.Path, opts.PathMode, opts.BaseDir)) + ": "
	}
	head := p.severity(d.Severity).Sprint(d.Severity.String())
	if d.Code != diag.UnknownCode {
		head += " " + p.code.Sprint(d.Code.ID())
	}
	if _, err := fmt.Fprintf(w, "%s%s: %s\n", prefix, head, d.Message); err != nil {
		return err
	}
	if !opts.ShowNotes {
		return nil
	}
	for _, n := range d.Notes {
		path := formatPath(n.Path, opts.PathMode, opts.BaseDir)
		if _, err := fmt.Fprintf(w, "  %s %s: %s\n", p.note.Sprint("note:"), p.path.Sprint(path), n.Msg); err != nil {
			return err
		}
	}
	return nil
}

type palette struct {
	path  *color.Color
	code  *color.Color
	note  *color.Color
	err   *color.Color
	warn  *color.Color
	info  *color.Color
	plain *color.Color
}

func newPalette(enabled bool) palette {
	mk := func(attrs ...color.Attribute) *color.Color {
		c := color.New(attrs...)
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
		return c
	}
	return palette{
		path:  mk(color.Bold),
		code:  mk(color.FgHiBlack),
		note:  mk(color.FgCyan, color.Bold),
		err:   mk(color.FgRed, color.Bold),
		warn:  mk(color.FgYellow, color.Bold),
		info:  mk(color.FgBlue),
		plain: mk(),
	}
}

func (p palette) severity(s diag.Severity) *color.Color {
	switch s {
	case diag.SevError:
		return p.err
	case diag.SevWarning:
		return p.warn
	case diag.SevInfo:
		return p.info
	}
	return p.plain
}
