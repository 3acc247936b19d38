// Package sandbox provides isolated in-process evaluation of snippets.
//
// The sandbox package implements the execution engine for running
// untrusted snippet code inside the host process using the yaegi Go
// interpreter. Each run gets a fresh interpreter with only standard
// library symbols loaded and its console output redirected into a
// run-owned buffer; nothing is shared between runs.
//
// Populate evaluates the normalized snippet once, swallowing evaluation
// failures so that unrelated declarations still succeed, then probes each
// statically-extracted name and records a live callable reference or a
// not-found sentinel. Invoke calls a discovered callable with coerced
// arguments, awaits channel-valued results, and converts panics and
// error returns into classified failures.
//
// Usage:
//
//	exec := sandbox.NewExecutor(logger)
//	table, console, err := exec.Populate(ctx, code, names)
//	out, err := exec.Invoke(ctx, fn, input)
package sandbox
