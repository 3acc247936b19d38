// Package classify normalizes heterogeneous failure values into a uniform shape.
//
// Snippets can fail in many forms: Go errors, interpreter panics carrying
// arbitrary values, plain strings from recovered goroutines. Every other
// package funnels those values through Message to obtain a single printable
// message, tags the failure with a Kind from the run taxonomy, and passes
// anything user-visible through Sanitize before it leaves the core.
package classify
