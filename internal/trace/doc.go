// Package trace is the structured event log of shaderpp.
//
// Tracing is off by default. Enable it from the command line:
//
//	shaderpp build --trace=- --trace-level=detail
//
// # Levels
//
//   - LevelOff: No tracing
//   - LevelError: Failures only
//   - LevelPhase: Driver and per-unit boundaries
//   - LevelDetail: Every file the resolver opens
//   - LevelDebug: Every directive the resolver consumes
//
// # Scopes
//
//   - ScopeDriver: Top-level CLI operations
//   - ScopeUnit: One top-level shader (resolve, assemble, write)
//   - ScopeFile: One file visit inside the resolver
//   - ScopeDirective: One #include or #pragma once
//
// # Context Propagation
//
//	ctx = trace.WithTracer(ctx, tracer)
//	t := trace.FromContext(ctx)
//
//	span := trace.Begin(t, trace.ScopeUnit, "unit:"+path, parentID)
//	defer span.End("")
package trace
