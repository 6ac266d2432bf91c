// Package experiment loads and validates experiment definitions: which data
// to read, how to filter and preprocess it, and which topic counts and
// trial counts to sweep.
//
// Definitions are JSON (the historical format), TOML, or YAML, chosen by
// file extension. Unknown keys are rejected in every format.
package experiment
