package main

import (
	"errors"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"shaderpp/internal/buildpipeline"
	"shaderpp/internal/diag"
	"shaderpp/internal/diagfmt"
	"shaderpp/internal/preproc"
	"shaderpp/internal/project"
)

var (
	errInvalidFlag = errors.New("invalid flag")
	errNoManifest  = errors.New("no " + project.ManifestName + " found")
)

// errorDiagnostic maps a command failure onto the diagnostic code space.
func errorDiagnostic(err error) diag.Diagnostic {
	var (
		perr *preproc.Error
		werr *buildpipeline.WriteError
	)
	switch {
	case errors.As(err, &perr):
		return perr.Diagnostic()
	case errors.As(err, &werr):
		return werr.Diagnostic()
	case errors.Is(err, errNoManifest):
		return diag.New(diag.SevError, diag.PrjManifestMissing, "", err.Error())
	case errors.Is(err, project.ErrInvalidManifest):
		return diag.New(diag.SevError, diag.PrjInvalidManifest, "", err.Error())
	case errors.Is(err, project.ErrInvalidOption), errors.Is(err, errInvalidFlag):
		return diag.New(diag.SevError, diag.PrjInvalidOption, "", err.Error())
	}
	return diag.New(diag.SevError, diag.UnknownCode, "", err.Error())
}

func reportError(root *cobra.Command, err error) {
	bag := diag.NewBag(1)
	bag.Add(errorDiagnostic(err))
	_ = renderDiagnostics(root, root.ErrOrStderr(), bag, false)
}

// renderDiagnostics prints bag in the format chosen by --format.
func renderDiagnostics(cmd *cobra.Command, w io.Writer, bag *diag.Bag, showInfo bool) error {
	format, _ := cmd.Root().PersistentFlags().GetString("format")
	baseDir, err := os.Getwd()
	if err != nil {
		baseDir = ""
	}
	bag.Sort()
	if strings.EqualFold(format, "json") {
		return diagfmt.JSON(w, bag, diagfmt.JSONOpts{
			PathMode:     diagfmt.PathModeAuto,
			BaseDir:      baseDir,
			IncludeNotes: true,
		})
	}
	return diagfmt.Pretty(w, bag, diagfmt.PrettyOpts{
		Color:     colorEnabled(cmd, os.Stderr),
		PathMode:  diagfmt.PathModeAuto,
		BaseDir:   baseDir,
		ShowNotes: true,
		ShowInfo:  showInfo,
	})
}
