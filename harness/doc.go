// Package harness orchestrates snippet verification runs.
//
// The harness owns the public entry points of the core: Run verifies a
// snippet against a sequence of test cases (size gate, safety analysis,
// normalization, sandboxed population, per-case resolution, invocation
// and deep comparison, all raced against a wall-clock timeout) and
// Analyze performs the non-executing pre-flight safety check.
//
// Failure taxonomy: run-level failures (empty input, oversized input,
// safety block, normalization error, no callables, sandbox construction
// error, timeout, internal fault) abort the run with empty results;
// per-case failures (unresolvable callable, invocation panic, rejection)
// are recorded on their TestResult and never abort the remaining cases.
// Neither entry point ever lets a panic escape.
package harness
