// Package sink delivers emitted lines.
//
// A Sink takes a formatted line and its severity and never reports failure
// to the caller. Implementations:
//
//   - WriterSink: writes through a slog handler in text or JSON, with the
//     severity carried as a custom slog level (Method, Notice, Critical,
//     Alert and Emergency sit between and above the standard levels)
//   - SQLiteSink: appends lines to a SQLite database using either the pure Go
//     "sqlite" driver or the cgo "sqlite3" driver
//   - Multi: fans out to several sinks
//
// Pruner and Scheduler keep the SQLite store within its retention limits.
// Build assembles a Set from configuration.
package sink
