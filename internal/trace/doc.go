// Package trace records what the compilation driver is doing.
//
// It is the driver's logging layer: passes and source units open spans, and
// a Tracer writes the begin/end events as text or NDJSON.
//
// # Usage
//
//	unitc build --trace=- --trace-level=detail
//
// # Levels
//
//   - LevelOff: no tracing
//   - LevelPhase: the CompileAll call and pass boundaries
//   - LevelDetail: plus one event per attributed source unit
//   - LevelDebug: everything, including individual classes
//
// # Scopes
//
//   - ScopeDriver: a CompileAll call
//   - ScopePass: one production or test pass
//   - ScopeUnit: one source file inside a pass
//   - ScopeClass: one compiled class
//
// # Context propagation
//
//	ctx = trace.WithTracer(ctx, tracer)
//	t := trace.FromContext(ctx)
//
//	span := trace.Begin(t, trace.ScopePass, "pass:production", parentID)
//	defer span.End("")
package trace
