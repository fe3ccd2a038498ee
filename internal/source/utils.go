package source

import (
	"encoding/hex"
	"path/filepath"
)

// SplitLines splits content after every '\n'. Terminators stay attached to
// their line; a final line without '\n' is kept as is.
func SplitLines(content []byte) []string {
	if len(content) == 0 {
		return nil
	}
	out := make([]string, 0, countLines(content))
	start := 0
	for i, b := range content {
		if b == '\n' {
			out = append(out, string(content[start:i+1]))
			start = i + 1
		}
	}
	if start < len(content) {
		out = append(out, string(content[start:]))
	}
	return out
}

func countLines(content []byte) int {
	n := 1
	for _, b := range content {
		if b == '\n' {
			n++
		}
	}
	return n
}

// NormalizePath returns the key form of a path used across a run.
func NormalizePath(p string) string {
	return filepath.ToSlash(filepath.Clean(p))
}

// String returns the hex form of the digest.
func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// IsZero reports whether the digest was never computed.
func (d Digest) IsZero() bool {
	return d == Digest{}
}
