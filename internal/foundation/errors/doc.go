// Package errors provides the classified error primitives used across clientgen.
//
// Every fatal condition surfaced by the pipeline (failed downloads, failed or timed
// out external commands, unparseable generated files, missing files, git failures)
// is reported as a ClassifiedError so the CLI can pick an exit code and print the
// failing step, command or file together with the underlying cause.
//
// Key features:
//   - ErrorCategory: Broad error classification (config, download, process, patch, git, ...)
//   - ErrorSeverity: Impact level (fatal, error, warning, info)
//   - RetryStrategy: Advisory retry hint; nothing in the core retries automatically
//   - ErrorBuilder: Fluent API for creating classified errors
//   - CLIErrorAdapter: exit code mapping and final error presentation
//
// Example usage:
//
//	err := errors.NewError(errors.CategoryProcess, "command failed").
//		WithContext("command", "npm install").
//		WithCause(originalErr).
//		Build()
package errors
