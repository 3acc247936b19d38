// Package dialect converts annotated snippets into directly executable Go.
//
// Learner snippets are written in a small superset of Go: the package
// clause may be omitted, @attribute lines carry exercise metadata, and
// enum blocks declare enumerated constants. Normalize erases the
// annotations, lowers enum declarations to plain structure values, wraps
// the result in a package clause, and checks it parses. ExtractNames then
// lexically scans the normalized form for top-level callable declarations
// so the sandbox knows which identifiers to probe after evaluation.
package dialect
