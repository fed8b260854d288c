// Package diag defines the diagnostic model shared by every compiler phase.
//
// Diagnostic is the central record: a Severity, a compact numeric Code with a
// stable string form, a short message and the source line it points at.
// Phases that can keep going after a problem (the lexer and parser) report
// through a Reporter into a Bag. Lowering and code generation stop at the
// first problem and return it as an *Error, which wraps exactly one
// Diagnostic and can be recovered from any error chain with errors.As.
//
// Rendering lives in render.go and is the only part of the package that knows
// about terminals and colors.
package diag
