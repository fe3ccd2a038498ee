package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"shaderpp/internal/cache"
)

func newCleanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clean [flags] [path]",
		Short: "Remove the build cache",
		Long:  "Remove the cache directory of the nearest project. With --outputs, also delete every generated shader.",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runClean,
	}
	cmd.Flags().Bool("outputs", false, "also remove generated outputs")
	return cmd
}

func runClean(cmd *cobra.Command, args []string) error {
	withOutputs, err := cmd.Flags().GetBool("outputs")
	if err != nil {
		return err
	}
	manifest, units, err := loadProjectUnits(startDir(args))
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	dir := manifest.CacheDir()
	if _, err := os.Stat(dir); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to stat %q: %w", dir, err)
		}
		if !quiet(cmd) {
			fmt.Fprintln(out, "cache directory not found")
		}
	} else {
		disk, err := cache.Open(dir)
		if err != nil {
			return err
		}
		if err := disk.DropAll(); err != nil {
			return fmt.Errorf("failed to remove %q: %w", dir, err)
		}
		if !quiet(cmd) {
			fmt.Fprintf(out, "removed %s\n", formatPathForOutput(manifest.Root, dir))
		}
	}

	if !withOutputs {
		return nil
	}
	for i := range units {
		path := units[i].Output
		if err := os.Remove(path); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to remove %q: %w", path, err)
		}
		if !quiet(cmd) {
			fmt.Fprintf(out, "removed %s\n", formatPathForOutput(manifest.Root, path))
		}
	}
	return nil
}
