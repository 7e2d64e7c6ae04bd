// Package diag defines the diagnostic model shared by every pyjs phase.
//
// Diagnostic is the central record: severity, a stable numeric Code, a short
// message, the primary source.Span and optional notes pointing at related
// locations (for example the template declaration behind a failing
// instantiation).
//
// Phases emit through a Reporter so they stay decoupled from storage. The
// common path is ReportError(...).WithNote(...).Emit() into a BagReporter; the
// driver then sorts and dedups the Bag and hands it to a formatter
// (FormatShortDiagnostics here, or the colored renderer in internal/diagfmt).
//
// Keep the data model deterministic: diagnostics are cached by the driver and
// compared in golden tests.
package diag
