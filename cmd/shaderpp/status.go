package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"shaderpp/internal/cache"
)

var errStale = errors.New("outputs are out of date")

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status [flags] [path]",
		Short: "Show which project outputs are out of date",
		Long: `Compare every [[shader]] output against the build cache. A shader is up to
date when its output and every file it included still hash as recorded by
the last build.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runStatus,
	}
	cmd.Flags().Bool("check", false, "exit with an error if any output is stale")
	return cmd
}

func runStatus(cmd *cobra.Command, args []string) error {
	check, err := cmd.Flags().GetBool("check")
	if err != nil {
		return err
	}
	manifest, units, err := loadProjectUnits(startDir(args))
	if err != nil {
		return err
	}
	disk, err := cache.Open(manifest.CacheDir())
	if err != nil {
		return err
	}

	stale := 0
	for i := range units {
		u := &units[i]
		// an unreadable record counts as stale
		fresh, _ := disk.Fresh(u.Key(), u.Output)
		state := "up to date"
		if !fresh {
			state = "stale"
			stale++
		}
		if !quiet(cmd) || !fresh {
			fmt.Fprintf(cmd.OutOrStdout(), "%-11s %s\n", state, formatPathForOutput(manifest.Root, u.Input))
		}
	}
	if check && stale > 0 {
		return fmt.Errorf("%w: %d of %d", errStale, stale, len(units))
	}
	return nil
}
