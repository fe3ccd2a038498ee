package diagfmt

import (
	"path/filepath"
	"strings"
)

func formatPath(p string, mode PathMode, baseDir string) string {
	if p == "" {
		return p
	}
	switch mode {
	case PathModeAbsolute:
		if abs, err := filepath.Abs(p); err == nil {
			return filepath.ToSlash(abs)
		}
	case PathModeBasename:
		return filepath.Base(p)
	case PathModeRelative, PathModeAuto:
		if baseDir == "" {
			return filepath.ToSlash(p)
		}
		abs, err := filepath.Abs(p)
		if err != nil {
			return filepath.ToSlash(p)
		}
		rel, err := filepath.Rel(baseDir, abs)
		if err != nil {
			return filepath.ToSlash(p)
		}
		if mode == PathModeAuto && strings.HasPrefix(rel, "..") {
			return filepath.ToSlash(p)
		}
		return filepath.ToSlash(rel)
	}
	return filepath.ToSlash(p)
}
