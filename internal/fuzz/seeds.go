package fuzztests

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

const (
	maxSeedBytes = 64 << 10 // 64 KiB, ограничение для тестового корпуса
)

var lineSeeds = []string{
	"",
	"#include \"common.glsl\"\n",
	"  #include   \"  spaced.glsl  \"  // trailing\n",
	"#include <system.glsl>\n",
	"#include \"\"\n",
	"#include \"unterminated\n",
	"#includes \"x\"\n",
	"#pragma once\n",
	"\t#pragma once \r\n",
	"#pragma  once\n",
	"precision mediump float;\n",
	"no newline at end",
}

var defineSeeds = []string{"A", "A=1", "A=", "=1", "A=B=C", " ", "FOO_BAR=vec3(1.0)"}

func addLineSeeds(f *testing.F) {
	for _, s := range lineSeeds {
		f.Add(s)
	}
}

func addShaderSeeds(f *testing.F) {
	for _, s := range lineSeeds {
		f.Add([]byte("void main() {}\n" + s))
	}
	root := filepath.Join("..", "..", "testdata")
	if _, err := os.Stat(root); err != nil {
		return
	}
	// проходим по дереву testdata, добавляем все *.glsl файлы
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil || d.IsDir() || filepath.Ext(path) != ".glsl" {
			return nil
		}
		// #nosec G304 -- path comes from repository testdata walk
		src, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		f.Add(clampSeed(src))
		return nil
	})
}

func clampSeed(src []byte) []byte {
	if len(src) > maxSeedBytes {
		return append([]byte(nil), src[:maxSeedBytes]...)
	}
	return src
}
