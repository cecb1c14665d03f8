// Package diag defines the diagnostic model shared by the checker, the driver
// and the output formatters.
//
// # Purpose
//
//   - Provide deterministic, serialisable records for every issue the checker
//     finds: type errors, effect violations, capability denials, PII leaks.
//   - Offer light-weight emission utilities (Reporter, ReportBuilder, Bag) so
//     producers never depend on storage or formatting.
//
// # Data model
//
// Diagnostic is the central record:
//
//   - Severity – Info, Warning or Error (severity.go).
//   - Code – numeric identifier with a stable ID ("SEM1002") and a symbolic
//     name ("UndefinedSymbol"); see codes.go.
//   - Message – short, actionable text.
//   - Primary – optional source.Span; the zero span means "no location".
//   - Help – optional hint rendered under the message.
//   - Data – optional structured payload (declared/computed effect, capability,
//     PII level and categories, ...).
//   - Notes – optional secondary spans such as "previous declaration here".
//
// # Emission
//
// Diagnostics are never thrown. Producers call ReportError / ReportWarning /
// ReportInfo, chain WithNote / WithHelp / WithData and finish with Emit. Bag
// stores them in emission order; that order is part of the contract because
// it equals IR visitation order.
//
// Rendering lives in internal/diagfmt.
package diag
