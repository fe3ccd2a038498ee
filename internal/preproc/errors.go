package preproc

import (
	"errors"
	"fmt"
	"strings"

	"shaderpp/internal/diag"
)

var (
	// ErrMissingVersion is returned by Assemble for an empty version.
	ErrMissingVersion = errors.New("version not specified")
	// ErrIncludeNotFound means no candidate directory holds the include.
	ErrIncludeNotFound = errors.New("include file not found")
	// ErrMalformedInclude means an #include line has no quoted filename.
	ErrMalformedInclude = errors.New("malformed #include directive")
	// ErrUnreadableFile wraps the I/O failure of a file read.
	ErrUnreadableFile = errors.New("unreadable file")
	// ErrCyclicInclude means a file includes itself without #pragma once.
	ErrCyclicInclude = errors.New("cyclic include")
)

// Error is a fatal preprocessing failure.
type Error struct {
	Code   diag.Code
	Kind   error    // one of the Err* sentinels
	Path   string   // file being scanned when the failure was detected
	Target string   // include name as written, when relevant
	Chain  []string // top-level file first, Path last
	Err    error    // underlying cause, if any
}

func (e *Error) Error() string {
	var sb strings.Builder
	if e.Path != "" {
		sb.WriteString(e.Path)
		sb.WriteString(": ")
	}
	sb.WriteString(e.Kind.Error())
	if e.Target != "" {
		fmt.Fprintf(&sb, " %q", e.Target)
	}
	if e.Kind == ErrCyclicInclude && len(e.Chain) > 0 {
		sb.WriteString(": ")
		sb.WriteString(strings.Join(e.Chain, " -> "))
	}
	if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}
	return sb.String()
}

// Unwrap exposes both the sentinel and the cause to errors.Is/As.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// Diagnostic converts e into a diag.Diagnostic with one note per include
// step leading to the failing file.
func (e *Error) Diagnostic() diag.Diagnostic {
	msg := e.Kind.Error()
	if e.Target != "" {
		msg = fmt.Sprintf("%s %q", msg, e.Target)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	d := diag.New(diag.SevError, e.Code, e.Path, msg)
	if len(e.Chain) < 2 {
		return d
	}
	for i := len(e.Chain) - 2; i >= 0; i-- {
		d = d.WithNote(e.Chain[i], "included from here")
	}
	return d
}

// AsDiagnostic converts any error into a diagnostic.
func AsDiagnostic(err error) diag.Diagnostic {
	var perr *Error
	if errors.As(err, &perr) {
		return perr.Diagnostic()
	}
	return diag.New(diag.SevError, diag.UnknownCode, "", err.Error())
}
