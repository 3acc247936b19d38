// Package safety screens raw snippets before any execution is attempted.
//
// The analyzer runs a fixed, ordered table of pattern rules over the
// un-normalized source text. Blocking rules (dynamic code construction,
// unsafe memory access, syscalls, process spawning) make the snippet
// unsafe and short-circuit the run; advisory rules (host-state writes,
// suspicious loop shapes, very large allocations) are surfaced as
// warnings only.
//
// This is the one place in the pipeline where untrusted text is inspected
// without being parsed, so it trades precision for unconditional safety:
// a regex false negative is acceptable, a hang or escape during analysis
// is not.
package safety
