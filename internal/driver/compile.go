// Package driver runs the compiler pipeline over source files: parse,
// lower to IR, prune unreachable functions and emit assembly. It owns the
// on-disk cache and the parallel compilation of many files.
package driver

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"ilsc/internal/backend/amd64"
	"ilsc/internal/diag"
	"ilsc/internal/ir"
	"ilsc/internal/observ"
	"ilsc/internal/parser"
	"ilsc/internal/trace"
	"ilsc/internal/version"
)

// Options configures a compilation.
type Options struct {
	MaxDiagnostics int
	KeepIR         bool // fill Result.IR with the pruned IR dump
	VerifyIR       bool // run ir.Validate before emission
	Cache          *DiskCache
	Observer       PhaseObserver
}

// Result is the outcome of compiling one file. Compile errors are reported
// in Bag; Asm is empty when Bag has errors.
type Result struct {
	Path    string
	Asm     string
	IR      string
	Removed []string // functions dropped by pruning
	Bag     *diag.Bag
	Timing  *observ.Report
	Cached  bool
}

func (r *Result) Failed() bool {
	return r.Bag.HasErrors()
}

// report moves a diagnostic error into the bag. Any other error is fatal
// for the whole run and is returned as is.
func (r *Result) report(err error) error {
	var de *diag.Error
	if errors.As(err, &de) {
		r.Bag.Add(de.Diag)
		return nil
	}
	return err
}

// CompileFile reads path and compiles it. A file that cannot be read is a
// diagnostic, not an error.
func CompileFile(ctx context.Context, path string, opts Options) (*Result, error) {
	// #nosec G304 -- path comes from the command line or the manifest
	src, err := os.ReadFile(path)
	if err != nil {
		res := &Result{Path: path, Bag: diag.NewBag(opts.MaxDiagnostics)}
		res.Bag.Add(diag.Diagnostic{
			Severity: diag.SevError,
			Code:     diag.IOLoadFileError,
			Message:  "failed to load file: " + err.Error(),
			File:     path,
		})
		return res, nil
	}
	return CompileSource(ctx, path, src, opts)
}

// CompileSource compiles src, consulting opts.Cache first.
func CompileSource(ctx context.Context, path string, src []byte, opts Options) (*Result, error) {
	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopeDriver, "compile", trace.CurrentSpan(ctx))
	ctx = trace.WithSpan(ctx, span)

	res := &Result{Path: path, Bag: diag.NewBag(opts.MaxDiagnostics)}
	timer := observ.NewTimer()
	defer func() {
		report := timer.Report()
		report.File = path
		res.Timing = &report
		status := "ok"
		switch {
		case res.Cached:
			status = "cached"
		case res.Failed():
			status = "failed"
		}
		span.End(status)
	}()

	key := CacheKey(src, version.Fingerprint(), opts.KeepIR)
	if opts.Cache != nil {
		var unit CachedUnit
		ok, err := opts.Cache.Get(key, &unit)
		if err != nil {
			// битая запись, просто перекомпилируем
			trace.Point(tracer, trace.ScopeDriver, "cache read failed", err.Error(), span.ID())
		}
		if ok {
			res.Asm, res.IR, res.Removed, res.Cached = unit.Asm, unit.IR, unit.Removed, true
			return res, nil
		}
	}

	p := pipeline{ctx: ctx, path: path, timer: timer, observer: opts.Observer}
	if err := p.run(res, src, opts); err != nil {
		return res, err
	}
	if res.Failed() || opts.Cache == nil {
		return res, nil
	}
	unit := &CachedUnit{Path: path, Asm: res.Asm, IR: res.IR, Removed: res.Removed}
	if err := opts.Cache.Put(key, unit); err != nil {
		trace.Point(tracer, trace.ScopeDriver, "cache write failed", err.Error(), span.ID())
	}
	return res, nil
}

type pipeline struct {
	ctx      context.Context
	path     string
	timer    *observ.Timer
	observer PhaseObserver
}

// phase runs fn as a timed phase and notifies the observer around it.
func (p *pipeline) phase(name string, fn func() error) error {
	if err := p.ctx.Err(); err != nil {
		return err
	}
	if p.observer != nil {
		p.observer(PhaseEvent{File: p.path, Name: name, Status: PhaseStart})
	}
	start := time.Now()
	err := p.timer.Track(name, fn)
	if p.observer != nil {
		p.observer(PhaseEvent{File: p.path, Name: name, Status: PhaseEnd, Elapsed: time.Since(start)})
	}
	return err
}

func (p *pipeline) run(res *Result, src []byte, opts Options) error {
	var parsed parser.Result
	err := p.phase(PhaseParse, func() error {
		parsed = parser.ParseFile(p.path, src, parser.Options{MaxErrors: opts.MaxDiagnostics})
		for _, d := range parsed.Bag.Items() {
			res.Bag.Add(d)
		}
		return nil
	})
	if err != nil || res.Failed() {
		return err
	}

	c := ir.NewContext(p.path)
	err = p.phase(PhaseLower, func() error {
		return res.report(ir.Lower(p.ctx, c, parsed.Program))
	})
	if err != nil || res.Failed() {
		return err
	}

	var nodes []ir.Node
	err = p.phase(PhasePrune, func() error {
		var removed []*ir.Function
		nodes, removed = ir.Prune(c)
		for _, f := range removed {
			res.Removed = append(res.Removed, f.Name)
		}
		if opts.VerifyIR {
			if err := ir.Validate(c, nodes); err != nil {
				return fmt.Errorf("%s: ir verification failed: %w", p.path, err)
			}
		}
		if opts.KeepIR {
			var sb strings.Builder
			if err := ir.Dump(&sb, c, nodes); err != nil {
				return err
			}
			res.IR = sb.String()
		}
		return nil
	})
	if err != nil {
		return err
	}

	return p.phase(PhaseEmit, func() error {
		asm, err := amd64.Emit(p.ctx, c, nodes)
		if err != nil {
			return res.report(err)
		}
		res.Asm = asm
		return nil
	})
}
