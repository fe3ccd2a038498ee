// Package diag defines the diagnostic model shared by the preprocessor, the
// pipeline and the CLI.
//
// A Diagnostic names a file, a Code and a message. Include chains are
// attached as Notes ("included from ..."). Diagnostics carry no line or
// column positions: the preprocessor treats shader bodies as opaque lines.
//
// Rendering lives in internal/diagfmt.
package diag
