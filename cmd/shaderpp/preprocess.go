package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"shaderpp/internal/buildpipeline"
	"shaderpp/internal/diag"
	"shaderpp/internal/observ"
	"shaderpp/internal/project"
)

type preprocessOptions struct {
	defines     defineListValue
	includeDirs []string
	version     string
	showInfo    bool
}

func newPreprocessCmd() *cobra.Command {
	opts := &preprocessOptions{}
	cmd := &cobra.Command{
		Use:     "preprocess [flags] INPUT OUTPUT",
		Aliases: []string{"pp"},
		Short:   "Preprocess a single shader file",
		Long: `Preprocess INPUT and write the result to OUTPUT.

The output starts with "#version VERSION", followed by one "#define" line per
-D flag in order. Inputs ending in .vert.glsl or .frag.glsl additionally get
SVE2_VERTEX_SHADER or SVE2_FRAGMENT_SHADER defined. Includes are searched in
the including file's directory first, then in every -I directory in order.`,
		Example: `  shaderpp pp -DUSE_FOG=1 -I shaders/include -V "300 es" blit.vert.glsl out/blit.vert.glsl`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPreprocess(cmd, opts, args[0], args[1])
		},
	}
	cmd.Flags().VarP(&opts.defines, "define", "D", "add a define NAME or NAME=VALUE (repeatable)")
	cmd.Flags().StringArrayVarP(&opts.includeDirs, "include", "I", nil, "add an include search directory (repeatable)")
	cmd.Flags().StringVarP(&opts.version, "glsl-version", "V", "", "version string for the #version line, e.g. \"300 es\"")
	cmd.Flags().BoolVar(&opts.showInfo, "show-info", false, "print informational diagnostics such as #pragma once skips")
	return cmd
}

func runPreprocess(cmd *cobra.Command, opts *preprocessOptions, input, output string) error {
	stopProfiling, err := setupProfiling(cmd)
	if err != nil {
		return err
	}
	defer stopProfiling()
	cleanup, err := setupTracing(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	timer := observ.NewTimer()
	unit := project.NewUnit(input, output, opts.version, opts.defines.Defines(), opts.includeDirs)
	info := diag.NewBag(256)
	req := &buildpipeline.BuildRequest{
		Units:    []project.Unit{unit},
		Jobs:     1,
		Reporter: diag.BagReporter{Bag: info},
	}
	res, err := buildpipeline.Build(cmd.Context(), req)
	if err != nil {
		return err
	}

	if opts.showInfo && info.Len() > 0 {
		if err := renderDiagnostics(cmd, cmd.ErrOrStderr(), info, true); err != nil {
			return err
		}
	}
	if timingsEnabled(cmd) {
		if err := printStageTimings(cmd.OutOrStdout(), timer, res.Timings); err != nil {
			return err
		}
	}
	if !quiet(cmd) {
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", output)
	}
	return nil
}

func timingsEnabled(cmd *cobra.Command) bool {
	t, _ := cmd.Root().PersistentFlags().GetBool("timings")
	return t
}
