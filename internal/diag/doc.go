// Package diag defines the diagnostic model shared by the lexer, the parser
// and the monomorphization passes.
//
// Diagnostic is the central record: Severity, a numeric Code with a stable
// string ID (LEX1001, SYN2001, MONO4002, ...), a short Message, the Primary
// span and optional Notes and Fixes.
//
// Phases never print. They send findings to a Reporter; BagReporter stores
// them in a Bag, which the driver sorts, deduplicates and hands to
// internal/diagfmt for rendering.
//
// Semantic problems found by the compiler are diagnostics, not Go errors.
// Go errors are reserved for I/O failures and cancellation.
package diag
