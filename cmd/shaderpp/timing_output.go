package main

import (
	"io"

	"shaderpp/internal/buildpipeline"
	"shaderpp/internal/observ"
)

// printStageTimings writes the per-stage totals of a build, followed by
// any phases the command measured itself.
func printStageTimings(out io.Writer, timer *observ.Timer, timings *buildpipeline.Timings) error {
	if out == nil || timer == nil {
		return nil
	}
	for _, stage := range []buildpipeline.Stage{
		buildpipeline.StageResolve,
		buildpipeline.StageAssemble,
		buildpipeline.StageWrite,
	} {
		if timings.Has(stage) {
			timer.Record(string(stage), timings.Duration(stage), "")
		}
	}
	_, err := timer.WriteTo(out)
	return err
}
