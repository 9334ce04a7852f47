// Package logging provides a simple leveled logging interface for thumbq.
//
// It supports the following log levels:
//   - DEBUG: Verbose tracing of individual scan stages
//   - INFO: Per-scan summaries
//   - WARN: Conditions an operator should see, such as paths that cannot
//     be expressed as URIs
//   - ERROR: Error conditions
//   - FATAL: Fatal errors that terminate the program
//
// Messages go to stderr; stdout is left to command output. The level is
// taken from DEBUG, then THUMBQ_LOG_LEVEL or LOG_LEVEL, and defaults to
// WARN. SetLevel overrides the environment.
package logging
