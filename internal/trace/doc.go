// Package trace records what the pyjs pipeline is doing: driver commands,
// passes over a unit (load, mono, emit) and, at debug level, every generic
// instantiation the monomorphizer performs.
//
// Enable it from the CLI:
//
//	pyjs build --trace=- --trace-level=detail
//
// Tracers travel through context:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	ctx, span := trace.BeginCtx(ctx, trace.ScopePass, "mono")
//	defer span.End("")
//
// StreamTracer writes text or NDJSON as events happen, RingTracer keeps the
// last N events for a dump after a failure, MultiTracer combines both and Nop
// costs nothing.
package trace
