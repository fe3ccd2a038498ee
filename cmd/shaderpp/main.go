// Package main implements the shaderpp CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"shaderpp/internal/version"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "shaderpp",
		Short: "GLSL shader preprocessor",
		Long: `shaderpp expands #include directives, honours #pragma once and prepends
#version and #define lines to shader sources.`,
		Version:           version.Version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: applyGlobalFlags,
	}

	// Глобальные флаги
	root.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	root.PersistentFlags().Bool("quiet", false, "suppress non-essential output")
	root.PersistentFlags().Bool("timings", false, "show timing information")
	root.PersistentFlags().String("format", "pretty", "diagnostics format (pretty|json)")
	root.PersistentFlags().String("trace", "", "write trace events to file (- for stderr)")
	root.PersistentFlags().String("trace-level", "off", "trace level (off|error|phase|detail|debug)")
	root.PersistentFlags().String("cpu-profile", "", "write a CPU profile to file")
	root.PersistentFlags().String("mem-profile", "", "write a heap profile to file on exit")
	root.PersistentFlags().String("runtime-trace", "", "write a Go runtime trace to file")

	root.AddCommand(newPreprocessCmd())
	root.AddCommand(newBuildCmd())
	root.AddCommand(newDepsCmd())
	root.AddCommand(newStatusCmd())
	root.AddCommand(newInitCmd())
	root.AddCommand(newCleanCmd())
	root.AddCommand(newVersionCmd())
	return root
}

// main runs the root command. Failures are rendered as diagnostics on
// stderr and the process exits with status 1.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	root := newRootCmd()
	err := root.ExecuteContext(ctx)
	stop()
	if err != nil {
		reportError(root, err)
		os.Exit(1)
	}
}

func applyGlobalFlags(cmd *cobra.Command, _ []string) error {
	flags := cmd.Root().PersistentFlags()
	mode, err := flags.GetString("color")
	if err != nil {
		return fmt.Errorf("failed to get color flag: %w", err)
	}
	switch strings.ToLower(mode) {
	case "auto", "on", "off":
	default:
		return fmt.Errorf("%w: invalid --color value %q (expected auto|on|off)", errInvalidFlag, mode)
	}
	format, err := flags.GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	switch strings.ToLower(format) {
	case "pretty", "json":
	default:
		return fmt.Errorf("%w: invalid --format value %q (expected pretty|json)", errInvalidFlag, format)
	}
	color.NoColor = !colorEnabled(cmd, os.Stdout)
	return nil
}

// colorEnabled resolves --color for output written to f.
func colorEnabled(cmd *cobra.Command, f *os.File) bool {
	mode, _ := cmd.Root().PersistentFlags().GetString("color")
	switch strings.ToLower(mode) {
	case "on":
		return true
	case "off":
		return false
	}
	return os.Getenv("NO_COLOR") == "" && isTerminal(f)
}

func quiet(cmd *cobra.Command) bool {
	q, _ := cmd.Root().PersistentFlags().GetBool("quiet")
	return q
}

// isTerminal проверяет, является ли файл терминалом
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
