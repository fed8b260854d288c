// Package trace records what the compiler is doing while it does it.
//
// A Tracer receives begin/end events for spans (driver, pass, function) and
// instant point events. The CLI picks an implementation from flags:
//
//   - Nop: tracing off, zero cost
//   - StreamTracer: writes each event immediately as text or NDJSON
//   - RingTracer: keeps the last N events in memory, dumped on failure
//   - MultiTracer: fans out to several tracers
//
// Tracers travel through the pipeline inside a context.Context:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	span := trace.Begin(trace.FromContext(ctx), trace.ScopePass, "lower", 0)
//	defer span.End("")
package trace
