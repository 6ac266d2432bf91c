// Package services defines shared utilities consumed by the sweep driver, the
// trial runner, and the CLI.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, experiment names, topic counts, and
//     trial indexes for logging.
//   - Structured error markers plus the Wrap helper so failures can be
//     classified (configuration, data invariant, trial, not found) and mapped
//     to exit codes.
//
// Use these helpers when wiring new sweep logic so error handling and
// observability stay uniform across commands.
package services
