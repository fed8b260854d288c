package main

import (
	"fmt"
	"io"

	"ilsc/internal/buildpipeline"
	"ilsc/internal/observ"
)

func printStageTimings(out io.Writer, timings *buildpipeline.Timings) {
	if out == nil || timings == nil {
		return
	}
	for _, stage := range buildpipeline.Stages {
		if !timings.Has(stage) {
			continue
		}
		if _, err := fmt.Fprintf(out, "%-6s %.1f ms\n", stage, observ.Millis(timings.Duration(stage))); err != nil {
			panic(err)
		}
	}
	if _, err := fmt.Fprintf(out, "%-6s %.1f ms\n", "total", observ.Millis(timings.Sum(buildpipeline.Stages...))); err != nil {
		panic(err)
	}
}
