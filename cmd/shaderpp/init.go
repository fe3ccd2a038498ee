package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"shaderpp/internal/project"
)

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init [dir]",
		Short: "Create a starter " + project.ManifestName,
		Long: `Create ` + project.ManifestName + ` in dir (default: current directory) together
with a vertex and a fragment shader sharing one include. Existing shader
files are left untouched; an existing manifest is an error.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runInit,
	}
}

type starterFile struct {
	path    string
	content string
}

var starterFiles = []starterFile{
	{"shaders/include/common.glsl", `#pragma once
precision mediump float;
`},
	{"shaders/main.vert.glsl", `#include "common.glsl"

layout(location = 0) in vec2 a_position;

void main() {
    gl_Position = vec4(a_position, 0.0, 1.0);
}
`},
	{"shaders/main.frag.glsl", `#include "common.glsl"

out vec4 frag_color;

void main() {
#ifdef SVE2_FRAGMENT_SHADER
    frag_color = vec4(1.0);
#endif
}
`},
}

const starterManifest = `# shaderpp project manifest
version = "300 es"
include = ["shaders/include"]
defines = []
out_dir = "build/shaders"

[[shader]]
input = "shaders/main.vert.glsl"

[[shader]]
input = "shaders/main.frag.glsl"
`

func runInit(cmd *cobra.Command, args []string) error {
	target := "."
	if len(args) > 0 && args[0] != "" {
		target = args[0]
	}
	target, err := filepath.Abs(target)
	if err != nil {
		return err
	}
	if st, err := os.Stat(target); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return err
		}
		if err := os.MkdirAll(target, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %q: %w", target, err)
		}
	} else if !st.IsDir() {
		return fmt.Errorf("%w: %q is not a directory", errInvalidFlag, target)
	}

	manifestPath := filepath.Join(target, project.ManifestName)
	if _, err := os.Stat(manifestPath); err == nil {
		return fmt.Errorf("project already initialized: %s exists", manifestPath)
	}
	if err := os.WriteFile(manifestPath, []byte(starterManifest), 0o644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}

	out := cmd.OutOrStdout()
	if !quiet(cmd) {
		fmt.Fprintf(out, "Initialized shaderpp project in %s\n", target)
		fmt.Fprintf(out, "  - %s\n", project.ManifestName)
	}
	for _, f := range starterFiles {
		path := filepath.Join(target, filepath.FromSlash(f.path))
		note := ""
		if _, err := os.Stat(path); err == nil {
			note = " (existing)"
		} else {
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return fmt.Errorf("failed to create directory for %s: %w", f.path, err)
			}
			if err := os.WriteFile(path, []byte(f.content), 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", f.path, err)
			}
		}
		if !quiet(cmd) {
			fmt.Fprintf(out, "  - %s%s\n", f.path, note)
		}
	}
	return nil
}
