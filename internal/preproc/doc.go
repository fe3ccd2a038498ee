// Package preproc resolves #include directives in shader sources and
// assembles the final text of a compilation unit.
//
// The resolver reads a file into raw lines and walks them once:
//
//   - a line whose trimmed form starts with #include is replaced by the
//     resolved content of the quoted file; the including file's directory is
//     searched first, then the configured search paths in order;
//   - a line whose trimmed form is exactly #pragma once is dropped and marks
//     the file in the OnceSet, so later visits contribute nothing;
//   - every other line is copied verbatim, terminator included.
//
// One OnceSet and one include stack belong to one top-level unit. A file
// that reappears on the stack without having declared #pragma once fails
// with ErrCyclicInclude.
//
// Nothing in this package writes files or looks at file name suffixes.
package preproc
