// Package logging assembles structured slog loggers and formatting helpers used
// across topicsweep.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so sweep code automatically tags
// log lines with run IDs, experiment names, topic counts, and trial indexes.
// Each sweep can additionally tee its records into a JSON run log that old
// runs are pruned from by CleanupOldLogs. A no-op logger is provided for tests.
package logging
