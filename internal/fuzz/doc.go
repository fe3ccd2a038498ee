
// Package fuzztests houses Go fuzz harnesses for the preprocessor: directive
// classification, define parsing and include resolution. Their goal is to
// guard against panics and to check the byte-exact pass-through of payload
// lines on arbitrary input.
//
// Назначение: прогонять произвольные байты через preproc и project.
//
// Не делает: генерацию корпусов, выполнение CLI.
//
// Зависимости: internal/preproc, internal/project, internal/source.

package fuzztests
