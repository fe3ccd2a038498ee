package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"shaderpp/internal/buildpipeline"
	"shaderpp/internal/cache"
	"shaderpp/internal/diag"
	"shaderpp/internal/observ"
	"shaderpp/internal/project"
)

func newBuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build [flags] [path]",
		Short: "Build every shader listed in " + project.ManifestName,
		Long: `Build every [[shader]] entry of the nearest ` + project.ManifestName + `, searching
upwards from path (or the current directory). Outputs are written only
after every shader preprocessed successfully.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runBuild,
	}
	cmd.Flags().IntP("jobs", "j", 0, "number of shaders processed in parallel (0 = number of CPUs)")
	cmd.Flags().Bool("no-cache", false, "rewrite every output without consulting the build cache")
	cmd.Flags().String("ui", "auto", "progress interface (auto|on|off)")
	cmd.Flags().Bool("show-info", false, "print informational diagnostics such as #pragma once skips")
	return cmd
}

func runBuild(cmd *cobra.Command, args []string) error {
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return err
	}
	noCache, err := cmd.Flags().GetBool("no-cache")
	if err != nil {
		return err
	}
	uiValue, err := cmd.Flags().GetString("ui")
	if err != nil {
		return err
	}
	showInfo, err := cmd.Flags().GetBool("show-info")
	if err != nil {
		return err
	}
	if jobs < 0 {
		return fmt.Errorf("%w: --jobs must not be negative", errInvalidFlag)
	}
	mode, err := readUIMode(uiValue)
	if err != nil {
		return err
	}

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
	endLoad := timer.Track("load manifest")
	manifest, units, err := loadProjectUnits(startDir(args))
	endLoad()
	if err != nil {
		return err
	}

	var disk *cache.Disk
	if !noCache {
		disk, err = cache.Open(manifest.CacheDir())
		if err != nil {
			return err
		}
	}

	display := func(input string) string { return formatPathForOutput(manifest.Root, input) }
	files := make([]string, len(units))
	for i := range units {
		files[i] = display(units[i].Input)
	}

	info := diag.NewBag(1024)
	req := &buildpipeline.BuildRequest{
		Units:    units,
		Jobs:     jobs,
		Cache:    disk,
		Reporter: diag.BagReporter{Bag: info},
		Display:  display,
	}

	var res buildpipeline.BuildResult
	if !quiet(cmd) && shouldUseTUI(mode) {
		res, err = runBuildWithUI(cmd.Context(), cmd.OutOrStdout(), "shaderpp build", files, req)
	} else {
		res, err = buildpipeline.Build(cmd.Context(), req)
	}
	if err != nil {
		return err
	}

	if showInfo && info.Len() > 0 {
		info.Dedup()
		if err := renderDiagnostics(cmd, cmd.ErrOrStderr(), info, true); err != nil {
			return err
		}
	}
	if timingsEnabled(cmd) {
		if err := printStageTimings(cmd.OutOrStdout(), timer, res.Timings); err != nil {
			return err
		}
	}
	if quiet(cmd) {
		return nil
	}
	written := 0
	for _, u := range res.Units {
		if u.Written {
			written++
		}
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "built %d shader(s), %d up to date\n", written, len(res.Units)-written)
	return err
}

func startDir(args []string) string {
	if len(args) > 0 && args[0] != "" {
		return args[0]
	}
	return "."
}

// loadProjectUnits finds the manifest above dir and expands its units.
func loadProjectUnits(dir string) (*project.Manifest, []project.Unit, error) {
	if info, err := os.Stat(dir); err != nil {
		return nil, nil, fmt.Errorf("failed to stat %q: %w", dir, err)
	} else if !info.IsDir() {
		return nil, nil, fmt.Errorf("%w: %q is not a directory", errInvalidFlag, dir)
	}
	manifest, ok, err := project.LoadManifest(dir)
	if err != nil {
		return nil, nil, err
	}
	if !ok {
		return nil, nil, fmt.Errorf("%w in %s or any parent directory (run \"shaderpp init\" to create one)", errNoManifest, dir)
	}
	units, err := manifest.Units()
	if err != nil {
		return nil, nil, err
	}
	return manifest, units, nil
}

func formatPathForOutput(root, path string) string {
	if root == "" || path == "" {
		return path
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return path
	}
	if strings.HasPrefix(rel, "..") {
		return path
	}
	return filepath.ToSlash(rel)
}
