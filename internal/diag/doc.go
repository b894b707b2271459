// Package diag defines the diagnostic model shared by the compilation pipeline.
//
// # Purpose
//
//   - Provide one uniform record, Diagnostic, for every compiler failure and
//     warning regardless of the shape the front-end reported it in.
//   - Offer light-weight utilities (Sink, Bag) that let producers push
//     diagnostics without coupling to concrete storage or formatting layers.
//
// # Scope
//
// Package diag does not classify failures (internal/normalize does), render
// them (internal/diagfmt does) or decide ordering (internal/buildpipeline
// does). It never sorts: arrival order is part of the contract.
//
// # Data model
//
//   - Severity – Info, Warning, Error.
//   - Message – compiler text with location suffixes already stripped.
//   - Location – a file:// URL, a module description, or empty.
//   - Line/Column – 1-based, NoPosition (-1) when unknown.
//
// Warnings never carry a location: the front-end does not report one.
package diag
