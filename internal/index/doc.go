// Package index keeps a SQLite catalogue of sweep runs and of the aggregated
// record summaries they produced.
//
// The filesystem store stays authoritative. The index only makes runs and
// per-topic-count summaries queryable without walking the model tree, so
// callers log index failures instead of failing the sweep.
package index
