package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"shaderpp/internal/preproc"
)

func newDepsCmd() *cobra.Command {
	var includeDirs []string
	cmd := &cobra.Command{
		Use:   "deps [flags] INPUT",
		Short: "Print the include tree of a shader",
		Long: `Print every file INPUT pulls in, in include order. Includes elided by
#pragma once are listed and marked as skipped. With --format json the tree
is printed together with every file that declared #pragma once.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDeps(cmd, args[0], includeDirs)
		},
	}
	cmd.Flags().StringArrayVarP(&includeDirs, "include", "I", nil, "add an include search directory (repeatable)")
	return cmd
}

// depsPayload is the --format json shape of deps.
type depsPayload struct {
	Tree *preproc.Node `json:"tree"`
	Once []string      `json:"once"`
}

func runDeps(cmd *cobra.Command, input string, includeDirs []string) error {
	cleanup, err := setupTracing(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	r := preproc.NewResolver(includeDirs, nil)
	if _, err := r.Resolve(cmd.Context(), input); err != nil {
		return err
	}

	format, _ := cmd.Root().PersistentFlags().GetString("format")
	if strings.EqualFold(format, "json") {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(depsPayload{Tree: r.Tree(), Once: r.Once().Paths()})
	}
	wd, err := os.Getwd()
	if err != nil {
		wd = ""
	}
	return printTree(cmd.OutOrStdout(), r.Tree(), wd)
}

// printTree renders node and its children with box-drawing guides.
func printTree(w io.Writer, node *preproc.Node, baseDir string) error {
	if node == nil {
		return nil
	}
	if _, err := fmt.Fprintln(w, formatPathForOutput(baseDir, node.Path)); err != nil {
		return err
	}
	return printChildren(w, node.Children, "", baseDir)
}

func printChildren(w io.Writer, children []*preproc.Node, prefix, baseDir string) error {
	for i, child := range children {
		branch, next := "├── ", "│   "
		if i == len(children)-1 {
			branch, next = "└── ", "    "
		}
		label := formatPathForOutput(baseDir, child.Path)
		if child.Target != "" && child.Target != label {
			label = fmt.Sprintf("%s (%s)", child.Target, label)
		}
		if child.Skipped {
			label += " [skipped: #pragma once]"
		}
		if _, err := fmt.Fprintf(w, "%s%s%s\n", prefix, branch, label); err != nil {
			return err
		}
		if err := printChildren(w, child.Children, prefix+next, baseDir); err != nil {
			return err
		}
	}
	return nil
}
