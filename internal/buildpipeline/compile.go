// Package buildpipeline orchestrates a build: it drives the compiler over
// every source file, reports per-file progress and writes the artifacts.
package buildpipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"ilsc/internal/driver"
)

// CompileRequest configures the shared compilation pipeline.
type CompileRequest struct {
	Files          []string
	Jobs           int
	MaxDiagnostics int
	KeepIR         bool
	VerifyIR       bool
	Cache          *driver.DiskCache
	Progress       ProgressSink
}

// CompileResult holds one driver result per requested file, in order.
type CompileResult struct {
	Results []*driver.Result
	Timings *Timings
}

// Failed counts files with errors.
func (r CompileResult) Failed() int {
	n := 0
	for _, res := range r.Results {
		if res != nil && res.Failed() {
			n++
		}
	}
	return n
}

// Compile runs every file through the compiler. Files with diagnostics do
// not stop the others; the returned error is only set when the whole run
// was aborted.
func Compile(ctx context.Context, req *CompileRequest) (CompileResult, error) {
	result := CompileResult{Timings: &Timings{}}
	if ctx == nil {
		ctx = context.Background()
	}
	if req == nil {
		return result, fmt.Errorf("missing compile request")
	}
	if len(req.Files) == 0 {
		return result, fmt.Errorf("no source files to compile")
	}

	emitQueued(req.Progress, req.Files)
	phases := &phaseObserver{
		sink:    req.Progress,
		timings: result.Timings,
		current: make(map[string]Stage, len(req.Files)),
	}
	opts := driver.Options{
		MaxDiagnostics: req.MaxDiagnostics,
		KeepIR:         req.KeepIR,
		VerifyIR:       req.VerifyIR,
		Cache:          req.Cache,
		Observer:       phases.OnPhase,
	}

	results, err := driver.CompileFiles(ctx, req.Files, req.Jobs, opts)
	result.Results = results
	if err != nil {
		emitStage(req.Progress, "", StageEmit, StatusError, err, 0)
		return result, err
	}
	for _, res := range results {
		switch {
		case res.Cached:
			emitStage(req.Progress, res.Path, StageEmit, StatusCached, nil, 0)
		case res.Failed():
			emitStage(req.Progress, res.Path, phases.stageOf(res.Path), StatusError, res.Bag.FirstError(), 0)
		}
	}
	return result, nil
}

// phaseObserver turns driver phase events into progress events and stage
// timings. The driver calls it from many goroutines.
type phaseObserver struct {
	sink    ProgressSink
	timings *Timings

	mu      sync.Mutex
	current map[string]Stage // последняя начатая стадия по файлу
}

func (p *phaseObserver) OnPhase(ev driver.PhaseEvent) {
	stage := Stage(ev.Name)
	switch ev.Status {
	case driver.PhaseStart:
		p.mu.Lock()
		p.current[ev.File] = stage
		p.mu.Unlock()
		emitStage(p.sink, ev.File, stage, StatusWorking, nil, 0)
	case driver.PhaseEnd:
		p.timings.Add(stage, ev.Elapsed)
		emitStage(p.sink, ev.File, stage, StatusDone, nil, ev.Elapsed)
	}
}

func (p *phaseObserver) stageOf(file string) Stage {
	p.mu.Lock()
	defer p.mu.Unlock()
	if s, ok := p.current[file]; ok {
		return s
	}
	// файл не прочитался, до разбора дело не дошло
	return StageParse
}

func emitQueued(sink ProgressSink, files []string) {
	if sink == nil {
		return
	}
	for _, file := range files {
		sink.OnEvent(Event{File: file, Stage: StageParse, Status: StatusQueued})
	}
}

func emitStage(sink ProgressSink, file string, stage Stage, status Status, err error, elapsed time.Duration) {
	if sink == nil {
		return
	}
	sink.OnEvent(Event{File: file, Stage: stage, Status: status, Err: err, Elapsed: elapsed})
}
