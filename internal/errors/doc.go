// Package errors provides structured, actionable error messages for dragsort.
//
// Every error carries a code (e.g. "E203") that maps to a registered
// template with a category, a short message and a longer explanation.
// Callers decorate the error with detail and a hint before returning it:
//
//	return errors.New("E203").
//	    WithDetail("element #card-1 is not inside any of 2 containers").
//	    WithSuggestion("Pass the element's column in Containers")
//
// # Error Categories
//
//   - config: configuration file and construction-time option errors
//   - protocol: wire protocol errors (malformed frames, unknown events)
//   - runtime: errors raised while a board is live
//   - cli: command-line usage errors
//
// Format renders an error for terminals; FormatCompact and FormatJSON give
// single-line and machine-readable variants.
package errors
