// Package trace records where the checker spends its time.
//
// Tracing is off unless requested on the command line:
//
//	aster typecheck --trace=- --trace-level=phase module.json
//	aster typecheck --trace=trace.ndjson --trace-level=debug module.json
//	aster typecheck --trace=- --trace-format=zap module.json
//
// # Scopes
//
// Events carry a scope; the level decides which scopes are written:
//
//   - driver: command boundaries (load, frontend, check, report)
//   - module: one span per checked Core IR module
//   - decl:   one span per declaration
//   - node:   individual statements (debug only)
//
// # Tracers
//
//   - Nop: the default, costs one interface call
//   - StreamTracer: writes text or NDJSON lines as events arrive
//   - ZapTracer: hands events to a zap logger as structured entries
//   - MultiTracer: fans out to several tracers
//
// A tracer travels in the context; see WithTracer and FromContext.
package trace
