// Package errors provides the structured error type used across longscribe.
//
// Every fatal condition of a run surfaces as an *AppError carrying a
// machine-readable ErrorCode, so the CLI and callers can tell a provider
// failure from a polling timeout or a bad caller input without string
// matching.
package errors
