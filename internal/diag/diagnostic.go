package diag

// Note adds context to a diagnostic, usually one step of an include chain.
type Note struct {
	Path string
	Msg  string
}

// Diagnostic is a file-level finding. Positions inside files are not tracked.
type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Path     string
	Notes    []Note
}

// New builds a diagnostic without notes.
func New(sev Severity, code Code, path, msg string) Diagnostic {
	return Diagnostic{Severity: sev, Code: code, Path: path, Message: msg}
}

// WithNote returns a copy of d with an extra note appended.
func (d Diagnostic) WithNote(path, msg string) Diagnostic {
	notes := make([]Note, 0, len(d.Notes)+1)
	notes = append(notes, d.Notes...)
	d.Notes = append(notes, Note{Path: path, Msg: msg})
	return d
}
